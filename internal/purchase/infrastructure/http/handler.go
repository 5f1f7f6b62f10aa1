package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/btechtrader/checkout-service/internal/purchase/application"
	"github.com/btechtrader/checkout-service/internal/purchase/domain"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	log      *slog.Logger
	recorder *application.Recorder
}

func NewHandler(log *slog.Logger, recorder *application.Recorder) *Handler {
	return &Handler{log: log, recorder: recorder}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/purchases/{userID}", h.listPurchases)
	r.Get("/purchases/{userID}/{orderID}", h.getPurchase)
}

type purchaseResp struct {
	OrderID     string `json:"orderId"`
	CourseID    string `json:"courseId,omitempty"`
	CourseTitle string `json:"courseTitle"`
	PricePaise  int64  `json:"pricePaise"`
	Token       string `json:"token"`
	PurchasedAt int64  `json:"purchasedAt"`
}

func toResp(p domain.Purchase) purchaseResp {
	return purchaseResp{
		OrderID:     p.OrderID,
		CourseID:    p.CourseID,
		CourseTitle: p.CourseTitle,
		PricePaise:  p.PricePaise,
		Token:       p.Token,
		PurchasedAt: p.PurchasedAt.UnixMilli(),
	}
}

func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	purchases, err := h.recorder.ListByUser(r.Context(), userID)
	if err != nil {
		h.log.Error("list purchases failed", "user_id", userID, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list purchases"})
		return
	}

	out := make([]purchaseResp, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, toResp(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getPurchase(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	orderID := chi.URLParam(r, "orderID")

	p, err := h.recorder.Get(r.Context(), userID, orderID)
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "purchase not found"})
		return
	}
	if err != nil {
		h.log.Error("get purchase failed", "user_id", userID, "order_id", orderID, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load purchase"})
		return
	}
	writeJSON(w, http.StatusOK, toResp(p))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
