package models

import (
	"time"

	"github.com/google/uuid"
)

// WhatsAppSettings holds a team's WhatsApp Business Cloud API configuration.
// The access token authorizes outbound sends; the verify token guards the
// inbound webhook handshake.
type WhatsAppSettings struct {
	ID                 uuid.UUID `db:"id"                   json:"id"`
	TeamID             uuid.UUID `db:"team_id"              json:"team_id"`
	PhoneNumberID      string    `db:"phone_number_id"      json:"phone_number_id"`
	BusinessAccountID  string    `db:"business_account_id"  json:"business_account_id"`
	AccessToken        string    `db:"access_token"         json:"-"`
	VerifyToken        string    `db:"verify_token"         json:"-"`
	APIVersion         string    `db:"api_version"          json:"api_version"`
	AutoReply          bool      `db:"auto_reply"           json:"auto_reply"`
	AutoReplyMessage   string    `db:"auto_reply_message"   json:"auto_reply_message"`
	BusinessHours      bool      `db:"business_hours"       json:"business_hours"`
	BusinessHoursStart string    `db:"business_hours_start" json:"business_hours_start"`
	BusinessHoursEnd   string    `db:"business_hours_end"   json:"business_hours_end"`
	CreatedAt          time.Time `db:"created_at"           json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"           json:"updated_at"`
}

// MessageDirection distinguishes inbound webhook messages from outbound sends.
type MessageDirection string

const (
	DirectionInbound  MessageDirection = "inbound"
	DirectionOutbound MessageDirection = "outbound"
)

// WhatsAppMessage is one message exchanged with a contact, linked to a lead
// when the phone number matches.
type WhatsAppMessage struct {
	ID          uuid.UUID        `db:"id"            json:"id"`
	TeamID      uuid.UUID        `db:"team_id"       json:"team_id"`
	LeadID      *uuid.UUID       `db:"lead_id"       json:"lead_id,omitempty"`
	WAMessageID string           `db:"wa_message_id" json:"wa_message_id"`
	Direction   MessageDirection `db:"direction"     json:"direction"`
	FromNumber  string           `db:"from_number"   json:"from_number"`
	ToNumber    string           `db:"to_number"     json:"to_number"`
	Type        string           `db:"type"          json:"type"`
	Body        string           `db:"body"          json:"body,omitempty"`
	Status      string           `db:"status"        json:"status,omitempty"`
	SentAt      time.Time        `db:"sent_at"       json:"sent_at"`
	CreatedAt   time.Time        `db:"created_at"    json:"created_at"`
}
