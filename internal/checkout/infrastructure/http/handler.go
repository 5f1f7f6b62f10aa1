package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/btechtrader/checkout-service/internal/checkout/application"
	"github.com/btechtrader/checkout-service/internal/checkout/bridge"
	orderapp "github.com/btechtrader/checkout-service/internal/order/application"
	orderdomain "github.com/btechtrader/checkout-service/internal/order/domain"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	log      *slog.Logger
	workflow *application.Workflow
	bridges  *bridge.Registry
	tracer   trace.Tracer
	upgrader websocket.Upgrader
}

func NewHandler(log *slog.Logger, workflow *application.Workflow, bridges *bridge.Registry) *Handler {
	return &Handler{
		log:      log,
		workflow: workflow,
		bridges:  bridges,
		tracer:   otel.Tracer("checkout-http"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The page is served by this same host with a one-time session id.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/checkout/sessions", h.createSession)
	r.Get("/checkout/sessions/{id}", h.serveCheckoutPage)
	r.Get("/checkout/sessions/{id}/ws", h.outcomeSocket)
	r.Get("/checkout/sessions/{id}/result", h.sessionResult)
}

type createSessionReq struct {
	UserID      string `json:"userId"`
	UserEmail   string `json:"userEmail"`
	UserName    string `json:"userName"`
	Contact     string `json:"contact"`
	CourseID    string `json:"courseId"`
	CourseTitle string `json:"courseTitle"`
	Amount      int64  `json:"amount"`
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateCheckoutSession")
	defer span.End()

	var req createSessionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if req.UserID == "" || req.UserEmail == "" || req.CourseTitle == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "userId, userEmail and courseTitle are required"})
		return
	}

	attempt := application.Attempt{
		UserID:      req.UserID,
		UserEmail:   req.UserEmail,
		UserName:    req.UserName,
		Contact:     req.Contact,
		CourseID:    req.CourseID,
		CourseTitle: req.CourseTitle,
		AmountPaise: req.Amount,
	}

	session, order, err := h.workflow.Begin(ctx, attempt)
	if err != nil {
		if errors.Is(err, orderapp.ErrInvalidAmount) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		var gwErr *orderdomain.GatewayError
		details := err.Error()
		if errors.As(err, &gwErr) {
			details = gwErr.Message
		}
		h.log.Error("checkout session create failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Failed to create order",
			"details": details,
		})
		return
	}

	// The attempt continues past this request: the workflow waits for the
	// session's one outcome and finishes the branch in the background.
	go func() {
		h.workflow.Await(context.WithoutCancel(ctx), attempt, session)
		h.bridges.Remove(session.ID)
	}()

	writeJSON(w, http.StatusCreated, map[string]string{
		"sessionId":   session.ID,
		"orderId":     order.ID,
		"checkoutUrl": fmt.Sprintf("/checkout/sessions/%s", session.ID),
	})
}

func (h *Handler) serveCheckoutPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, ok := h.bridges.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if session.Resolved() {
		// Sessions are single use; reopening needs a fresh order.
		writeJSON(w, http.StatusGone, map[string]string{"error": "checkout session already completed"})
		return
	}

	page, err := session.Config.Page(fmt.Sprintf("/checkout/sessions/%s/ws", id))
	if err != nil {
		h.log.Error("checkout page render failed", "session_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to render checkout"})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// outcomeSocket receives the page's single terminal message. Whatever
// arrives first resolves the session; anything after is dropped.
func (h *Handler) outcomeSocket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, ok := h.bridges.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "session_id", id, "err", err)
		return
	}
	defer conn.Close()

	_, payload, err := conn.ReadMessage()
	if err != nil {
		// The page went away without reporting; the session will time out.
		h.log.Warn("outcome socket closed without message", "session_id", id, "err", err)
		return
	}
	session.Resolve(payload)
	_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"ack":true}`))
}

func (h *Handler) sessionResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, ok := h.workflow.ResultFor(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	out := map[string]string{
		"state":   string(res.State),
		"message": res.Message,
	}
	if res.Token != "" {
		out["token"] = res.Token
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
