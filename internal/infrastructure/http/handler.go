// Package httptransport is the thin HTTP binding over the order
// lifecycle. It maps JSON bodies and headers to service calls and the
// error taxonomy to status codes; it holds no invariants of its own.
package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	appOrder "github.com/Zhima-Mochi/minishop-orders/internal/application/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/actor"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/errs"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"
)

const (
	headerActorID   = "X-Actor-ID"
	headerActorRole = "X-Actor-Role"
)

type Handler struct {
	orders *appOrder.Service
	tel    observability.Observability
}

func NewHandler(orders *appOrder.Service, tel observability.Observability) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Handler{orders: orders, tel: tel}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(observe(h.tel))

	r.Post("/orders", h.handleCreate)
	r.Get("/orders/{id}", h.handleGet)
	r.Post("/orders/{id}/pay", h.handlePay)
	r.Post("/orders/{id}/cancel", h.handleCancel)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

type createOrderRequest struct {
	Items []struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
}

type lineItemResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type orderResponse struct {
	OrderID   string             `json:"order_id"`
	OwnerID   string             `json:"owner_id"`
	Items     []lineItemResponse `json:"items"`
	Total     decimal.Decimal    `json:"total"`
	Status    string             `json:"status"`
	Outcome   string             `json:"outcome"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func toOrderResponse(res *appOrder.Result) orderResponse {
	o := res.Order
	items := make([]lineItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, lineItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return orderResponse{
		OrderID:   o.ID,
		OwnerID:   o.OwnerID,
		Items:     items,
		Total:     o.Total,
		Status:    string(o.Status),
		Outcome:   string(res.Outcome),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	act, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	items := make([]appOrder.Item, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, appOrder.Item{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	res, err := h.orders.Create(r.Context(), act, items)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(res))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	act, ok := actorFrom(w, r)
	if !ok {
		return
	}
	res, err := h.orders.Get(r.Context(), act, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(res))
}

func (h *Handler) handlePay(w http.ResponseWriter, r *http.Request) {
	act, ok := actorFrom(w, r)
	if !ok {
		return
	}
	res, err := h.orders.Pay(r.Context(), act, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(res))
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	act, ok := actorFrom(w, r)
	if !ok {
		return
	}
	res, err := h.orders.Cancel(r.Context(), act, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(res))
}

// actorFrom reads the already-verified identity the edge layer put on
// the request. Verification is out of scope here; an empty identity is
// still rejected.
func actorFrom(w http.ResponseWriter, r *http.Request) (actor.Actor, bool) {
	id := r.Header.Get(headerActorID)
	if id == "" {
		writeError(w, http.StatusUnauthorized, errors.New("missing "+headerActorID+" header"))
		return actor.Actor{}, false
	}
	role := actor.RoleStandard
	if r.Header.Get(headerActorRole) == string(actor.RoleAdmin) {
		role = actor.RoleAdmin
	}
	return actor.Actor{ID: id, Role: role}, true
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

type validationErrorBody struct {
	Error     string   `json:"error"`
	ItemIDs   []string `json:"item_ids,omitempty"`
	Available int      `json:"available,omitempty"`
	Requested int      `json:"requested,omitempty"`
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *errs.ValidationError
		nf *errs.NotFoundError
		ae *errs.AuthorizationError
		ce *errs.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, validationErrorBody{
			Error:     ve.Error(),
			ItemIDs:   ve.ItemIDs,
			Available: ve.Available,
			Requested: ve.Requested,
		})
	case errors.As(err, &nf):
		writeError(w, http.StatusNotFound, err)
	case errors.As(err, &ae):
		writeError(w, http.StatusForbidden, err)
	case errors.As(err, &ce):
		writeError(w, http.StatusConflict, err)
	default:
		// Internal detail stays in the log; clients get the status only.
		logctx.FromOr(r.Context(), h.tel.Logger()).Error("internal_error",
			observability.F("path", r.URL.Path),
			observability.F("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
