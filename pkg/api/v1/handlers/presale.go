package handlers

import (
	"errors"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/talentpad/presale/internal/db/models"
	"github.com/talentpad/presale/internal/logger"
	"github.com/talentpad/presale/internal/services"
	"github.com/talentpad/presale/internal/types"
)

// PresaleHandler handles HTTP requests for presale operations
type PresaleHandler struct {
	*APIHandler
}

// NewPresaleHandler creates a new presale handler instance
func NewPresaleHandler(api *APIHandler) *PresaleHandler {
	return &PresaleHandler{APIHandler: api}
}

// ListPresales returns a page of presales
func (h *PresaleHandler) ListPresales(c *fiber.Ctx) error {
	opts, err := getListOptions(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(err.Error()))
	}
	presales, total, err := h.presale.List(c.UserContext(), opts)
	if err != nil {
		logger.Errorf("%s: %v", ErrMsgPresaleListFailed, err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgPresaleListFailed))
	}
	return c.JSON(types.Success(types.ListResponse[models.Presale]{
		Rows:       presales,
		Pagination: paginationFor(opts, total),
	}))
}

// GetPresale returns a presale by ID
func (h *PresaleHandler) GetPresale(c *fiber.Ctx) error {
	presale, err := h.presale.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return presaleError(c, err, ErrMsgPresaleGetFailed)
	}
	return c.JSON(types.Success(presale))
}

// GetPresaleSummary returns the derived progress of a presale
func (h *PresaleHandler) GetPresaleSummary(c *fiber.Ctx) error {
	summary, err := h.presale.Summary(c.UserContext(), c.Params("id"))
	if err != nil {
		return presaleError(c, err, ErrMsgPresaleGetFailed)
	}
	return c.JSON(types.Success(summary))
}

// CreatePresale opens a presale for a talent
func (h *PresaleHandler) CreatePresale(c *fiber.Ctx) error {
	var req types.CreatePresaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgInvalidReqBody))
	}

	presale, err := h.presale.Create(c.UserContext(), req)
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(err.Error()))
	case errors.Is(err, services.ErrTalentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(types.ErrNotFound(ErrMsgTalentNotFound))
	case errors.Is(err, services.ErrTalentHasPresale):
		return c.Status(fiber.StatusConflict).JSON(types.ErrInvalidInput(ErrMsgPresaleOpen))
	case err != nil:
		logger.Errorf("%s: %v", ErrMsgPresaleCreateFailed, err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgPresaleCreateFailed))
	}
	return c.Status(fiber.StatusCreated).JSON(types.Success(presale))
}

// FinalizePresale settles an ended presale
func (h *PresaleHandler) FinalizePresale(c *fiber.Ctx) error {
	presale, err := h.presale.Finalize(c.UserContext(), c.Params("id"))
	switch {
	case errors.Is(err, services.ErrPresaleNotEnded):
		return c.Status(fiber.StatusConflict).JSON(types.ErrInvalidInput(ErrMsgPresaleNotEnded))
	case errors.Is(err, services.ErrAlreadyFinalized):
		return c.Status(fiber.StatusConflict).JSON(types.ErrInvalidInput(ErrMsgPresaleFinalized))
	case err != nil:
		return presaleError(c, err, ErrMsgPresaleFinalizeFailed)
	}
	return c.JSON(types.Success(presale))
}

// ListPresaleTransactions returns the transactions credited to a presale
func (h *PresaleHandler) ListPresaleTransactions(c *fiber.Ctx) error {
	opts, err := getListOptions(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(err.Error()))
	}
	txns, total, err := h.presale.ListTransactions(c.UserContext(), c.Params("id"), opts)
	if err != nil {
		return presaleError(c, err, ErrMsgTransactionListFailed)
	}
	return c.JSON(types.Success(types.ListResponse[models.ProcessedTransaction]{
		Rows:       txns,
		Pagination: paginationFor(opts, total),
	}))
}

// presaleError answers 404 for a missing presale and 500 with failMsg otherwise
func presaleError(c *fiber.Ctx, err error, failMsg string) error {
	if errors.Is(err, services.ErrPresaleNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(types.ErrNotFound(ErrMsgPresaleNotFound))
	}
	logger.Errorf("%s: %v", failMsg, err)
	return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(failMsg))
}
