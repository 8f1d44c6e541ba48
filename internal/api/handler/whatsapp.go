package handler

import (
	"errors"
	"net/http"

	mw "github.com/nexocrm/nexo/internal/api/middleware"
	"github.com/nexocrm/nexo/internal/api/response"
	"github.com/nexocrm/nexo/internal/store"
	"github.com/nexocrm/nexo/internal/whatsapp"
)

// WhatsApp serves per-team WhatsApp settings, outbound sends, and the
// message history.
type WhatsApp struct {
	svc *whatsapp.Service
}

func NewWhatsApp(svc *whatsapp.Service) *WhatsApp {
	return &WhatsApp{svc: svc}
}

// SaveSettings handles PUT /api/v1/whatsapp/settings. Team managers only.
func (h *WhatsApp) SaveSettings(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)

	var req struct {
		PhoneNumberID      string `json:"phone_number_id"`
		BusinessAccountID  string `json:"business_account_id"`
		AccessToken        string `json:"access_token"`
		VerifyToken        string `json:"verify_token"`
		APIVersion         string `json:"api_version"`
		AutoReply          bool   `json:"auto_reply"`
		AutoReplyMessage   string `json:"auto_reply_message"`
		BusinessHours      bool   `json:"business_hours"`
		BusinessHoursStart string `json:"business_hours_start"`
		BusinessHoursEnd   string `json:"business_hours_end"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	settings, err := h.svc.SaveSettings(r.Context(), teamID, whatsapp.SettingsInput{
		PhoneNumberID:      req.PhoneNumberID,
		BusinessAccountID:  req.BusinessAccountID,
		AccessToken:        req.AccessToken,
		VerifyToken:        req.VerifyToken,
		APIVersion:         req.APIVersion,
		AutoReply:          req.AutoReply,
		AutoReplyMessage:   req.AutoReplyMessage,
		BusinessHours:      req.BusinessHours,
		BusinessHoursStart: req.BusinessHoursStart,
		BusinessHoursEnd:   req.BusinessHoursEnd,
	})
	if err != nil {
		h.whatsappError(w, err)
		return
	}
	response.JSON(w, settings)
}

// GetSettings handles GET /api/v1/whatsapp/settings.
func (h *WhatsApp) GetSettings(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)

	settings, err := h.svc.Settings(r.Context(), teamID)
	if err != nil {
		h.whatsappError(w, err)
		return
	}
	response.JSON(w, settings)
}

// Send handles POST /api/v1/whatsapp/messages: an outbound text message.
func (h *WhatsApp) Send(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)

	var req struct {
		To   string `json:"to"`
		Body string `json:"body"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.To == "" || req.Body == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"to and body are required", nil)
		return
	}

	msg, err := h.svc.SendText(r.Context(), teamID, req.To, req.Body)
	if err != nil {
		h.whatsappError(w, err)
		return
	}
	response.Created(w, msg)
}

// ListMessages handles GET /api/v1/whatsapp/messages.
func (h *WhatsApp) ListMessages(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)

	filter := store.MessageFilter{
		TeamID: teamID,
		LeadID: queryUUID(r, "lead_id"),
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
	}

	messages, total, err := h.svc.ListMessages(r.Context(), filter)
	if err != nil {
		h.whatsappError(w, err)
		return
	}
	response.Collection(w, messages, paginationMeta(filter.Page, filter.Limit, total))
}

func (h *WhatsApp) whatsappError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, whatsapp.ErrValidation):
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, whatsapp.ErrNotConfigured):
		response.Error(w, http.StatusNotFound, "WHATSAPP_NOT_CONFIGURED",
			"WhatsApp is not configured for this team", nil)
	case errors.Is(err, whatsapp.ErrProviderUnavailable):
		response.Error(w, http.StatusBadGateway, "PROVIDER_UNAVAILABLE",
			"The WhatsApp provider is not available", nil)
	default:
		storeError(w, err)
	}
}
