package handlers

import (
	"errors"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/talentpad/presale/internal/logger"
	"github.com/talentpad/presale/internal/services"
	"github.com/talentpad/presale/internal/types"
)

// DepositHandler handles deposit submissions
type DepositHandler struct {
	*APIHandler
}

// NewDepositHandler creates a new deposit handler instance
func NewDepositHandler(api *APIHandler) *DepositHandler {
	return &DepositHandler{APIHandler: api}
}

// RecordDeposit verifies a deposit transaction and credits it.
// Rejections answer with {"error": ...}; an amount mismatch also carries
// "actual" and "claimed".
func (h *DepositHandler) RecordDeposit(c *fiber.Ctx) error {
	var req types.DepositRequest
	if err := c.App().Config().JSONDecoder(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.DepositErrorResponse{Error: ErrMsgInvalidReqBody})
	}

	res, err := h.deposit.Record(c.UserContext(), req)
	if err != nil {
		var derr *services.DepositError
		if errors.As(err, &derr) {
			return c.Status(derr.Status).JSON(types.DepositErrorResponse{
				Error:   derr.Message,
				Actual:  derr.Actual,
				Claimed: derr.Claimed,
			})
		}
		logger.Errorf("Unexpected deposit error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.DepositErrorResponse{Error: ErrMsgInternal})
	}

	return c.JSON(types.DepositSuccessResponse{
		Success:     true,
		Message:     services.MsgDepositRecorded,
		TxSignature: res.Signature,
	})
}

// CheckDeposit reports whether a planned deposit satisfies the presale rules
func (h *DepositHandler) CheckDeposit(c *fiber.Ctx) error {
	var req types.DepositCheckRequest
	if err := c.App().Config().JSONDecoder(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgInvalidReqBody))
	}

	resp, err := h.deposit.Check(c.UserContext(), req)
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(err.Error()))
	case errors.Is(err, services.ErrPresaleNotFound):
		return c.Status(fiber.StatusNotFound).JSON(types.ErrNotFound(ErrMsgPresaleNotFound))
	case err != nil:
		logger.Errorf("Deposit check failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgDepositCheckFailed))
	}
	return c.JSON(types.Success(resp))
}
