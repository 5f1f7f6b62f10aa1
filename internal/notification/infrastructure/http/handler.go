package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/btechtrader/checkout-service/internal/notification/application"
	"github.com/btechtrader/checkout-service/internal/notification/domain"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	log        *slog.Logger
	dispatcher *application.Dispatcher
	tracer     trace.Tracer
}

func NewHandler(log *slog.Logger, dispatcher *application.Dispatcher) *Handler {
	return &Handler{
		log:        log,
		dispatcher: dispatcher,
		tracer:     otel.Tracer("notification-http"),
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/notify-purchase", h.notifyPurchase)
}

type notifyPurchaseReq struct {
	UserID      string `json:"userId"`
	UserEmail   string `json:"userEmail"`
	UserName    string `json:"userName"`
	CourseTitle string `json:"courseTitle"`
	CoursePrice int64  `json:"coursePrice"`
	Token       string `json:"token"`
}

func (h *Handler) notifyPurchase(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "NotifyPurchase")
	defer span.End()

	var req notifyPurchaseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}

	notice := domain.PurchaseNotice{
		UserID:      req.UserID,
		UserEmail:   req.UserEmail,
		UserName:    req.UserName,
		CourseTitle: req.CourseTitle,
		PricePaise:  req.CoursePrice,
		Token:       req.Token,
	}

	report, err := h.dispatcher.DispatchPurchase(ctx, notice)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Missing required fields"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to send emails", "error": err.Error()})
		return
	}

	if report.Failed() {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Failed to send emails",
			"error":   report.Err().Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Emails sent successfully"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
