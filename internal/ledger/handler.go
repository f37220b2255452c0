package ledger

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/meridian-shop/meridian/internal/authz"
	"github.com/meridian-shop/meridian/internal/platform/db"
	"github.com/meridian-shop/meridian/internal/platform/httpx"
)

// Handler exposes the availability query and back-office stock endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	authz    authz.Middleware
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service, az authz.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		authz:    az,
	}
}

// MountRoutes attaches ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/availability/{productID}/{officeID}", h.availability)
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireOrderManager)
		r.Post("/stock/intake", h.intake)
		r.Post("/stock/issue", h.issue)
	})
}

type adjustmentRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	OfficeID  int64           `json:"office_id" validate:"required,gt=0"`
	Quantity  decimal.Decimal `json:"quantity"`
}

func (h *Handler) availability(w http.ResponseWriter, r *http.Request) {
	productID, err1 := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	officeID, err2 := strconv.ParseInt(chi.URLParam(r, "officeID"), 10, 64)
	if err1 != nil || err2 != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "product and office ids must be numeric")
		return
	}

	av, err := h.service.Availability(r.Context(), productID, officeID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, av)
}

func (h *Handler) intake(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.service.Intake)
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.service.Issue)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request, op func(context.Context, AdjustmentInput) (Availability, error)) {
	var req adjustmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if !req.Quantity.IsPositive() {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "quantity must be positive")
		return
	}

	av, err := op(r.Context(), AdjustmentInput{
		ProductID: req.ProductID,
		OfficeID:  req.OfficeID,
		Qty:       req.Quantity,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, av)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var insufficient *InsufficientStockError
	switch {
	case errors.Is(err, ErrRowNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidQuantity):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.As(err, &insufficient):
		httpx.Problem(w, http.StatusConflict, "Insufficient Stock", insufficient.Error())
	case errors.Is(err, ErrCorrupt):
		h.logger.Error("ledger corruption detected", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	case errors.Is(err, db.ErrTxConflict):
		httpx.Problem(w, http.StatusConflict, "Transaction Conflict", "operation timed out waiting for a lock, retry")
	default:
		h.logger.Error("ledger request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
