package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/landregistry/internal/domain/models"
	"github.com/mamadbah2/landregistry/internal/service/ledger"
)

// CallerHeader carries the identity of the authenticated caller. Authentication
// happens upstream; the ledger only compares identities.
const CallerHeader = "X-Caller-Identity"

var errMissingCaller = errors.New("missing caller identity")

type registerRequest struct {
	Location      string           `json:"location"`
	ParcelID      string           `json:"parcel_id" binding:"required"`
	DeclaredValue *decimal.Decimal `json:"declared_value" binding:"required"`
}

type transferRequest struct {
	NewOwner string `json:"new_owner" binding:"required"`
}

type sellRequest struct {
	Buyer   string           `json:"buyer" binding:"required"`
	Payment *decimal.Decimal `json:"payment" binding:"required"`
}

// LedgerHandler exposes the land registry operations over HTTP.
type LedgerHandler struct {
	svc    ledger.Registry
	logger *zap.Logger
}

// NewLedgerHandler constructs the HTTP handler adapter.
func NewLedgerHandler(svc ledger.Registry, logger *zap.Logger) *LedgerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerHandler{svc: svc, logger: logger}
}

// Register creates a parcel owned by the caller.
func (h *LedgerHandler) Register(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload", "reason": "invalid request body"})
		return
	}

	record, err := h.svc.Register(c.Request.Context(), caller, req.Location, req.ParcelID, *req.DeclaredValue)
	if err != nil {
		h.fail(c, "register", err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// Verify returns the current record of a parcel.
func (h *LedgerHandler) Verify(c *gin.Context) {
	record, err := h.svc.Verify(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "verify", err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// List returns all parcels, or only those of ?owner=.
func (h *LedgerHandler) List(c *gin.Context) {
	records, err := h.svc.List(c.Request.Context(), models.Identity(c.Query("owner")))
	if err != nil {
		h.fail(c, "list", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"parcels": records})
}

// Transfer hands a parcel to a new owner for free.
func (h *LedgerHandler) Transfer(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid transfer payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload", "reason": "invalid request body"})
		return
	}

	record, err := h.svc.Transfer(c.Request.Context(), caller, models.Identity(req.NewOwner), c.Param("id"))
	if err != nil {
		h.fail(c, "transfer", err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// Sell hands a parcel to a buyer against the exact declared value.
func (h *LedgerHandler) Sell(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req sellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid sell payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload", "reason": "invalid request body"})
		return
	}

	record, err := h.svc.Sell(c.Request.Context(), caller, models.Identity(req.Buyer), c.Param("id"), *req.Payment)
	if err != nil {
		h.fail(c, "sell", err)
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *LedgerHandler) caller(c *gin.Context) (models.Identity, bool) {
	caller := strings.TrimSpace(c.GetHeader(CallerHeader))
	if caller == "" {
		h.logger.Warn("request without caller identity", zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "reason": errMissingCaller.Error()})
		return "", false
	}
	return models.Identity(caller), true
}

func (h *LedgerHandler) fail(c *gin.Context, op string, err error) {
	kind := ledger.KindOf(err)
	status := statusFor(kind)

	if status == http.StatusInternalServerError {
		h.logger.Error("ledger operation failed", zap.String("op", op), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal", "reason": "internal error"})
		return
	}

	h.logger.Info("ledger operation rejected", zap.String("op", op), zap.String("kind", kind.String()), zap.Error(err))
	c.JSON(status, gin.H{"error": kind.String(), "reason": kind.Reason()})
}

func statusFor(kind ledger.Kind) int {
	switch kind {
	case ledger.KindInvalidRequest:
		return http.StatusBadRequest
	case ledger.KindUnauthorized:
		return http.StatusForbidden
	case ledger.KindNotRegistered:
		return http.StatusNotFound
	case ledger.KindAlreadyRegistered:
		return http.StatusConflict
	case ledger.KindWrongPayment:
		return http.StatusUnprocessableEntity
	case ledger.KindSettlementFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
