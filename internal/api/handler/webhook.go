package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/nexocrm/nexo/internal/whatsapp"
)

// Webhook serves the Meta webhook endpoint. Both methods are public: GET is
// the subscription handshake, POST carries message and status notifications.
type Webhook struct {
	svc *whatsapp.Service
}

func NewWebhook(svc *whatsapp.Service) *Webhook {
	return &Webhook{svc: svc}
}

// Verify handles GET /api/v1/webhooks/whatsapp. Meta sends hub.mode,
// hub.verify_token, and hub.challenge; on a subscribe request with a known
// verify token the challenge is echoed back verbatim, otherwise 403.
func (h *Webhook) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	ok, err := h.svc.VerifyWebhook(r.Context(), mode, token)
	if err != nil {
		slog.Error("webhook verification failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(challenge))
}

// Receive handles POST /api/v1/webhooks/whatsapp. Meta retries on non-2xx,
// so ingestion problems are logged and acknowledged rather than surfaced.
func (h *Webhook) Receive(w http.ResponseWriter, r *http.Request) {
	var payload whatsapp.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.svc.ProcessWebhook(r.Context(), &payload); err != nil {
		slog.Error("webhook processing failed", "error", err)
	}
	w.WriteHeader(http.StatusOK)
}
