package handlers

import (
	"errors"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/talentpad/presale/internal/services"
	"github.com/talentpad/presale/internal/types"
)

// PositionHandler handles HTTP requests for wallet positions
type PositionHandler struct {
	*APIHandler
}

// NewPositionHandler creates a new position handler instance
func NewPositionHandler(api *APIHandler) *PositionHandler {
	return &PositionHandler{APIHandler: api}
}

// ListPositions returns a page of positions in a presale, largest first
func (h *PositionHandler) ListPositions(c *fiber.Ctx) error {
	opts, err := getListOptions(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(err.Error()))
	}
	rows, total, err := h.position.List(c.UserContext(), c.Params("id"), opts)
	if err != nil {
		return presaleError(c, err, ErrMsgPositionListFailed)
	}
	return c.JSON(types.Success(types.ListResponse[types.PositionResponse]{
		Rows:       rows,
		Pagination: paginationFor(opts, total),
	}))
}

// GetPosition returns the position of one wallet in a presale
func (h *PositionHandler) GetPosition(c *fiber.Ctx) error {
	wallet := c.Params("wallet")
	if wallet == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgWalletRequired))
	}
	pos, err := h.position.Get(c.UserContext(), c.Params("id"), wallet)
	if errors.Is(err, services.ErrPositionNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(types.ErrNotFound(ErrMsgPositionNotFound))
	}
	if err != nil {
		return presaleError(c, err, ErrMsgPositionGetFailed)
	}
	return c.JSON(types.Success(pos))
}
