package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/btechtrader/checkout-service/internal/order/application"
	"github.com/btechtrader/checkout-service/internal/order/domain"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var ordersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "checkout_orders_created_total",
	Help: "Gateway orders successfully created.",
})

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("order-http"),
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/create-order", h.createOrder)
}

type createOrderReq struct {
	Amount int64 `json:"amount"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	order, err := h.service.CreateOrder(ctx, req.Amount)
	if err != nil {
		if errors.Is(err, application.ErrInvalidAmount) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		var gwErr *domain.GatewayError
		details := err.Error()
		if errors.As(err, &gwErr) {
			details = gwErr.Message
		}
		h.log.Error("create order failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Failed to create order",
			"details": details,
		})
		return
	}

	ordersCreatedTotal.Inc()
	h.log.Info("order created", "order_id", order.ID, "amount_paise", order.AmountPaise)
	writeJSON(w, http.StatusOK, map[string]string{"orderId": order.ID})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
