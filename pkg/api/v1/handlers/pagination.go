package handlers

import (
	"errors"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/talentpad/presale/internal/db/models"
	"github.com/talentpad/presale/internal/types"
)

const (
	// MinPageSize is the minimum allowed page size
	MinPageSize = 1
	// MaxPageSize is the maximum allowed page size
	MaxPageSize = 1000
)

// getListOptions reads limit, offset and page from the query string.
// page, when given, takes precedence over offset.
func getListOptions(c *fiber.Ctx) (*models.ListOptions, error) {
	limit := c.QueryInt("limit", models.DefaultLimit)
	if limit < MinPageSize || limit > MaxPageSize {
		return nil, errors.New(ErrMsgInvalidLimit)
	}
	offset := c.QueryInt("offset", 0)
	if page := c.QueryInt("page", 0); page > 0 {
		offset = (page - 1) * limit
	}
	if offset < 0 {
		return nil, errors.New(ErrMsgNegativeOffset)
	}
	return &models.ListOptions{Limit: limit, Offset: offset}, nil
}

func paginationFor(opts *models.ListOptions, total int64) types.PaginationResponse {
	return types.PaginationResponse{
		Total:  int(total),
		Page:   opts.Offset/opts.Limit + 1,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	}
}
