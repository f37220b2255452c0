package orders

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/meridian-shop/meridian/internal/authz"
	"github.com/meridian-shop/meridian/internal/ledger"
	"github.com/meridian-shop/meridian/internal/platform/db"
	"github.com/meridian-shop/meridian/internal/platform/httpx"
)

// Handler exposes the order HTTP surface.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

type listResponse struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	order, err := h.service.Create(r.Context(), authz.ActorFromContext(r.Context()), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Get(r.Context(), authz.ActorFromContext(r.Context()), ParseRef(chi.URLParam(r, "ref")))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListMine(r.Context(), authz.ActorFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Orders: orders, Total: len(orders)})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	orders, total, err := h.service.List(r.Context(), authz.ActorFromContext(r.Context()), filter)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Orders: orders, Total: total})
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	var req ChangeStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	order, err := h.service.ChangeStatus(r.Context(), authz.ActorFromContext(r.Context()),
		ParseRef(chi.URLParam(r, "ref")), req.Status)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Cancel(r.Context(), authz.ActorFromContext(r.Context()), ParseRef(chi.URLParam(r, "ref")))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// editItems always rejects: line items are immutable once the order exists.
func (h *Handler) editItems(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, ErrItemsImmutable)
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	var filter ListFilter
	q := r.URL.Query()

	if v := q.Get("status"); v != "" {
		status := Status(v)
		if !status.IsValid() {
			return filter, errors.New("unknown status filter")
		}
		filter.Status = &status
	}
	if v := q.Get("delivery_method"); v != "" {
		method := DeliveryMethod(v)
		if !method.IsValid() {
			return filter, errors.New("unknown delivery_method filter")
		}
		filter.DeliveryMethod = &method
	}
	if v := q.Get("payment_method"); v != "" {
		method := PaymentMethod(v)
		if !method.IsValid() {
			return filter, errors.New("unknown payment_method filter")
		}
		filter.PaymentMethod = &method
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errors.New("from must be RFC3339")
		}
		filter.DateFrom = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errors.New("to must be RFC3339")
		}
		filter.DateTo = &t
	}
	if v := q.Get("min_total"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return filter, errors.New("min_total must be a decimal")
		}
		filter.AmountMin = &d
	}
	if v := q.Get("max_total"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return filter, errors.New("max_total must be a decimal")
		}
		filter.AmountMax = &d
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, errors.New("limit must be a non-negative integer")
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, errors.New("offset must be a non-negative integer")
		}
		filter.Offset = n
	}
	return filter, nil
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var insufficient *ledger.InsufficientStockError
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrForbidden):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
	case errors.As(err, &insufficient):
		httpx.Problem(w, http.StatusConflict, "Insufficient Stock", insufficient.Error())
	case errors.Is(err, ErrValidationFailed),
		errors.Is(err, ErrEmptyItems),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrMissingPriceLine),
		errors.Is(err, ErrMissingAddress),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrAlreadyCancelled),
		errors.Is(err, ErrOrderCompleted),
		errors.Is(err, ErrItemsImmutable):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, db.ErrTxConflict):
		httpx.Problem(w, http.StatusConflict, "Transaction Conflict", "operation timed out waiting for a lock, retry")
	default:
		h.logger.Error("order request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
