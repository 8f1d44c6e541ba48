package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/nexocrm/nexo/internal/store"
	"github.com/nexocrm/nexo/pkg/models"
)

var (
	ErrNotConfigured = errors.New("whatsapp is not configured for this team")
	ErrValidation    = errors.New("validation failed")
)

// Sender sends messages through the Cloud API. Satisfied by *Client.
type Sender interface {
	SendText(ctx context.Context, settings *models.WhatsAppSettings, to, body string) (*SendResponse, error)
	SendTemplate(ctx context.Context, settings *models.WhatsAppSettings, to, name, langCode string) (*SendResponse, error)
}

// Service owns WhatsApp settings per team, outbound sends, and inbound
// webhook processing.
type Service struct {
	store  store.Store
	sender Sender
}

func NewService(s store.Store, sender Sender) *Service {
	return &Service{store: s, sender: sender}
}

// SettingsInput holds a team's WhatsApp configuration as supplied by the
// caller.
type SettingsInput struct {
	PhoneNumberID      string
	BusinessAccountID  string
	AccessToken        string
	VerifyToken        string
	APIVersion         string
	AutoReply          bool
	AutoReplyMessage   string
	BusinessHours      bool
	BusinessHoursStart string
	BusinessHoursEnd   string
}

// SaveSettings writes the team's configuration, one row per team.
func (s *Service) SaveSettings(ctx context.Context, teamID uuid.UUID, in SettingsInput) (*models.WhatsAppSettings, error) {
	if in.PhoneNumberID == "" {
		return nil, fmt.Errorf("%w: phone_number_id is required", ErrValidation)
	}
	if in.AccessToken == "" {
		return nil, fmt.Errorf("%w: access_token is required", ErrValidation)
	}
	if in.APIVersion == "" {
		in.APIVersion = "v18.0"
	}
	for _, hhmm := range []string{in.BusinessHoursStart, in.BusinessHoursEnd} {
		if hhmm == "" {
			continue
		}
		if _, err := time.Parse("15:04", hhmm); err != nil {
			return nil, fmt.Errorf("%w: business hours must be HH:MM", ErrValidation)
		}
	}

	now := time.Now().UTC()
	return s.store.UpsertWhatsAppSettings(ctx, &models.WhatsAppSettings{
		ID:                 uuid.New(),
		TeamID:             teamID,
		PhoneNumberID:      in.PhoneNumberID,
		BusinessAccountID:  in.BusinessAccountID,
		AccessToken:        in.AccessToken,
		VerifyToken:        in.VerifyToken,
		APIVersion:         in.APIVersion,
		AutoReply:          in.AutoReply,
		AutoReplyMessage:   in.AutoReplyMessage,
		BusinessHours:      in.BusinessHours,
		BusinessHoursStart: in.BusinessHoursStart,
		BusinessHoursEnd:   in.BusinessHoursEnd,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
}

// Settings returns the team's configuration, or ErrNotConfigured.
func (s *Service) Settings(ctx context.Context, teamID uuid.UUID) (*models.WhatsAppSettings, error) {
	settings, err := s.store.GetWhatsAppSettings(ctx, teamID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotConfigured
	}
	return settings, err
}

// VerifyWebhook implements the provider's GET handshake: the challenge is
// echoed only when the mode is "subscribe" and the token matches a team's
// configured verify token.
func (s *Service) VerifyWebhook(ctx context.Context, mode, token string) (bool, error) {
	if mode != "subscribe" || token == "" {
		return false, nil
	}
	settings, err := s.store.GetWhatsAppSettingsByVerifyToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return settings != nil, nil
}

// SendText sends a text message to a phone number scoped by team settings and
// records the outbound message row. A matching lead is linked by phone.
func (s *Service) SendText(ctx context.Context, teamID uuid.UUID, to, body string) (*models.WhatsAppMessage, error) {
	if to == "" || body == "" {
		return nil, fmt.Errorf("%w: to and body are required", ErrValidation)
	}
	settings, err := s.Settings(ctx, teamID)
	if err != nil {
		return nil, err
	}

	resp, err := s.sender.SendText(ctx, settings, to, body)
	if err != nil {
		return nil, err
	}

	msg := s.recordMessage(ctx, settings, models.DirectionOutbound, resp.Messages[0].ID,
		settings.PhoneNumberID, to, "text", body, time.Now().UTC())
	return msg, nil
}

// ProcessWebhook ingests an inbound delivery: message events become message
// rows (linked to leads by phone number), status events update prior sends.
// Unroutable entries are logged and skipped, never failed, so the provider
// does not retry the whole batch.
func (s *Service) ProcessWebhook(ctx context.Context, payload *WebhookPayload) error {
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}

			settings, err := s.store.GetWhatsAppSettingsByPhoneNumberID(ctx, change.Value.Metadata.PhoneNumberID)
			if errors.Is(err, store.ErrNotFound) {
				slog.Warn("webhook for unknown phone number",
					"phone_number_id", change.Value.Metadata.PhoneNumberID)
				continue
			}
			if err != nil {
				return fmt.Errorf("resolve webhook team: %w", err)
			}

			for _, m := range change.Value.Messages {
				s.ingestInbound(ctx, settings, m)
			}
			for _, st := range change.Value.Statuses {
				if err := s.store.UpdateWhatsAppMessageStatus(ctx, st.ID, st.Status); err != nil &&
					!errors.Is(err, store.ErrNotFound) {
					slog.Error("update message status failed", "wa_message_id", st.ID, "error", err)
				}
			}
		}
	}
	return nil
}

func (s *Service) ingestInbound(ctx context.Context, settings *models.WhatsAppSettings, m InboundMessage) {
	body := ""
	if m.Text != nil {
		body = m.Text.Body
	}

	sentAt := time.Now().UTC()
	if secs, err := strconv.ParseInt(m.Timestamp, 10, 64); err == nil {
		sentAt = time.Unix(secs, 0).UTC()
	}

	s.recordMessage(ctx, settings, models.DirectionInbound, m.ID,
		m.From, settings.PhoneNumberID, m.Type, body, sentAt)

	if settings.AutoReply && s.withinBusinessHours(settings, time.Now()) {
		if _, err := s.sender.SendText(ctx, settings, m.From, settings.AutoReplyMessage); err != nil {
			slog.Error("auto reply failed", "to", m.From, "error", err)
		}
	}
}

func (s *Service) recordMessage(ctx context.Context, settings *models.WhatsAppSettings,
	direction models.MessageDirection, waMessageID, from, to, msgType, body string, sentAt time.Time) *models.WhatsAppMessage {

	var leadID *uuid.UUID
	contact := from
	if direction == models.DirectionOutbound {
		contact = to
	}
	if lead, err := s.store.GetLeadByPhone(ctx, settings.TeamID, contact); err == nil {
		leadID = &lead.ID
	} else if !errors.Is(err, store.ErrNotFound) {
		slog.Error("lead lookup by phone failed", "phone", contact, "error", err)
	}

	msg := &models.WhatsAppMessage{
		ID:          uuid.New(),
		TeamID:      settings.TeamID,
		LeadID:      leadID,
		WAMessageID: waMessageID,
		Direction:   direction,
		FromNumber:  from,
		ToNumber:    to,
		Type:        msgType,
		Body:        body,
		SentAt:      sentAt,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateWhatsAppMessage(ctx, msg); err != nil {
		slog.Error("record whatsapp message failed", "wa_message_id", waMessageID, "error", err)
	}
	return msg
}

// withinBusinessHours reports whether now falls inside the configured window.
// With business hours disabled the window is always open.
func (s *Service) withinBusinessHours(settings *models.WhatsAppSettings, now time.Time) bool {
	if !settings.BusinessHours {
		return true
	}
	start, err1 := time.Parse("15:04", settings.BusinessHoursStart)
	end, err2 := time.Parse("15:04", settings.BusinessHoursEnd)
	if err1 != nil || err2 != nil {
		return true
	}
	minutes := now.Hour()*60 + now.Minute()
	startMin := start.Hour()*60 + start.Minute()
	endMin := end.Hour()*60 + end.Minute()
	return minutes >= startMin && minutes < endMin
}

// ListMessages returns the team's message history.
func (s *Service) ListMessages(ctx context.Context, filter store.MessageFilter) ([]*models.WhatsAppMessage, int, error) {
	return s.store.ListWhatsAppMessages(ctx, filter)
}
