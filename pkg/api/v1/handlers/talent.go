package handlers

import (
	"errors"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/talentpad/presale/internal/db/models"
	"github.com/talentpad/presale/internal/logger"
	"github.com/talentpad/presale/internal/services"
	"github.com/talentpad/presale/internal/types"
)

// TalentHandler handles HTTP requests for talent operations
type TalentHandler struct {
	*APIHandler
}

// NewTalentHandler creates a new talent handler instance
func NewTalentHandler(api *APIHandler) *TalentHandler {
	return &TalentHandler{APIHandler: api}
}

// ListTalents returns a page of talents
func (h *TalentHandler) ListTalents(c *fiber.Ctx) error {
	opts, err := getListOptions(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(err.Error()))
	}
	talents, total, err := h.talent.List(c.UserContext(), opts)
	if err != nil {
		logger.Errorf("%s: %v", ErrMsgTalentListFailed, err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgTalentListFailed))
	}
	return c.JSON(types.Success(types.ListResponse[models.Talent]{
		Rows:       talents,
		Pagination: paginationFor(opts, total),
	}))
}

// GetTalent returns a talent by ID
func (h *TalentHandler) GetTalent(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgTalentIDRequired))
	}
	talent, err := h.talent.Get(c.UserContext(), id)
	return h.respondTalent(c, talent, err)
}

// GetTalentByHandle returns a talent by its handle
func (h *TalentHandler) GetTalentByHandle(c *fiber.Ctx) error {
	handle := c.Params("handle")
	if handle == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgTalentHandleRequired))
	}
	talent, err := h.talent.GetByHandle(c.UserContext(), handle)
	return h.respondTalent(c, talent, err)
}

// CreateTalent registers a new talent
func (h *TalentHandler) CreateTalent(c *fiber.Ctx) error {
	var req types.CreateTalentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgInvalidReqBody))
	}

	talent, err := h.talent.Create(c.UserContext(), req)
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(err.Error()))
	case errors.Is(err, services.ErrHandleTaken):
		return c.Status(fiber.StatusConflict).JSON(types.ErrInvalidInput(ErrMsgTalentHandleTaken))
	case err != nil:
		logger.Errorf("%s: %v", ErrMsgTalentCreateFailed, err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgTalentCreateFailed))
	}
	return c.Status(fiber.StatusCreated).JSON(types.Success(talent))
}

// UpdateTalentWallet sets the wallet that receives the talent's deposits
func (h *TalentHandler) UpdateTalentWallet(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgTalentIDRequired))
	}
	var req types.UpdateWalletRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgInvalidReqBody))
	}

	talent, err := h.talent.UpdateWallet(c.UserContext(), id, req)
	if errors.Is(err, services.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(err.Error()))
	}
	return h.respondTalent(c, talent, err)
}

func (h *TalentHandler) respondTalent(c *fiber.Ctx, talent *models.Talent, err error) error {
	switch {
	case errors.Is(err, services.ErrTalentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(types.ErrNotFound(ErrMsgTalentNotFound))
	case err != nil:
		logger.Errorf("%s: %v", ErrMsgTalentGetFailed, err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgTalentGetFailed))
	}
	return c.JSON(types.Success(talent))
}
