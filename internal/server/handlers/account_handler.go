package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/landregistry/internal/domain/models"
	"github.com/mamadbah2/landregistry/internal/settlement"
)

// AccountBook is the subset of the in-process settlement book exposed over HTTP.
type AccountBook interface {
	Deposit(ctx context.Context, id models.Identity, amount decimal.Decimal) (models.Account, error)
	Balance(ctx context.Context, id models.Identity) models.Account
}

type depositRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required"`
}

// AccountHandler funds and inspects settlement accounts.
type AccountHandler struct {
	book   AccountBook
	logger *zap.Logger
}

// NewAccountHandler constructs the account handler.
func NewAccountHandler(book AccountBook, logger *zap.Logger) *AccountHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountHandler{book: book, logger: logger}
}

// Deposit credits the account named in the path.
func (h *AccountHandler) Deposit(c *gin.Context) {
	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid deposit payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload", "reason": "invalid request body"})
		return
	}

	account, err := h.book.Deposit(c.Request.Context(), models.Identity(c.Param("id")), *req.Amount)
	switch {
	case errors.Is(err, settlement.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_amount", "reason": err.Error()})
		return
	case errors.Is(err, settlement.ErrAccountClosed):
		c.JSON(http.StatusConflict, gin.H{"error": "account_closed", "reason": err.Error()})
		return
	case err != nil:
		h.logger.Error("deposit failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "reason": "internal error"})
		return
	}

	c.JSON(http.StatusOK, account)
}

// Balance reports the account named in the path.
func (h *AccountHandler) Balance(c *gin.Context) {
	c.JSON(http.StatusOK, h.book.Balance(c.Request.Context(), models.Identity(c.Param("id"))))
}
