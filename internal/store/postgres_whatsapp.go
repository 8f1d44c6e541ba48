package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nexocrm/nexo/pkg/models"
)

const whatsappSettingsColumns = `id, team_id, phone_number_id, business_account_id, access_token, verify_token, api_version,
	auto_reply, auto_reply_message, business_hours, business_hours_start, business_hours_end, created_at, updated_at`

func scanWhatsAppSettings(row pgx.Row) (*models.WhatsAppSettings, error) {
	var ws models.WhatsAppSettings
	err := row.Scan(&ws.ID, &ws.TeamID, &ws.PhoneNumberID, &ws.BusinessAccountID,
		&ws.AccessToken, &ws.VerifyToken, &ws.APIVersion,
		&ws.AutoReply, &ws.AutoReplyMessage, &ws.BusinessHours,
		&ws.BusinessHoursStart, &ws.BusinessHoursEnd, &ws.CreatedAt, &ws.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

// UpsertWhatsAppSettings writes a team's WhatsApp configuration. One row per
// team; a second write replaces the first.
func (s *PostgresStore) UpsertWhatsAppSettings(ctx context.Context, ws *models.WhatsAppSettings) (*models.WhatsAppSettings, error) {
	out, err := scanWhatsAppSettings(s.pool.QueryRow(ctx,
		`INSERT INTO whatsapp_settings (id, team_id, phone_number_id, business_account_id, access_token, verify_token, api_version,
		   auto_reply, auto_reply_message, business_hours, business_hours_start, business_hours_end, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 ON CONFLICT (team_id) DO UPDATE SET
		   phone_number_id = EXCLUDED.phone_number_id,
		   business_account_id = EXCLUDED.business_account_id,
		   access_token = EXCLUDED.access_token,
		   verify_token = EXCLUDED.verify_token,
		   api_version = EXCLUDED.api_version,
		   auto_reply = EXCLUDED.auto_reply,
		   auto_reply_message = EXCLUDED.auto_reply_message,
		   business_hours = EXCLUDED.business_hours,
		   business_hours_start = EXCLUDED.business_hours_start,
		   business_hours_end = EXCLUDED.business_hours_end,
		   updated_at = NOW()
		 RETURNING `+whatsappSettingsColumns,
		ws.ID, ws.TeamID, ws.PhoneNumberID, ws.BusinessAccountID, ws.AccessToken,
		ws.VerifyToken, ws.APIVersion, ws.AutoReply, ws.AutoReplyMessage,
		ws.BusinessHours, ws.BusinessHoursStart, ws.BusinessHoursEnd,
		ws.CreatedAt, ws.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("upsert whatsapp settings: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) GetWhatsAppSettings(ctx context.Context, teamID uuid.UUID) (*models.WhatsAppSettings, error) {
	ws, err := scanWhatsAppSettings(s.pool.QueryRow(ctx,
		`SELECT `+whatsappSettingsColumns+` FROM whatsapp_settings WHERE team_id = $1`, teamID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get whatsapp settings: %w", err)
	}
	return ws, err
}

// GetWhatsAppSettingsByPhoneNumberID resolves the owning team for an inbound
// webhook delivery.
func (s *PostgresStore) GetWhatsAppSettingsByPhoneNumberID(ctx context.Context, phoneNumberID string) (*models.WhatsAppSettings, error) {
	ws, err := scanWhatsAppSettings(s.pool.QueryRow(ctx,
		`SELECT `+whatsappSettingsColumns+` FROM whatsapp_settings WHERE phone_number_id = $1`, phoneNumberID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get whatsapp settings by phone number id: %w", err)
	}
	return ws, err
}

// GetWhatsAppSettingsByVerifyToken matches the webhook handshake's verify
// token against team configurations.
func (s *PostgresStore) GetWhatsAppSettingsByVerifyToken(ctx context.Context, verifyToken string) (*models.WhatsAppSettings, error) {
	ws, err := scanWhatsAppSettings(s.pool.QueryRow(ctx,
		`SELECT `+whatsappSettingsColumns+` FROM whatsapp_settings WHERE verify_token = $1 AND verify_token <> ''`, verifyToken))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get whatsapp settings by verify token: %w", err)
	}
	return ws, err
}

func (s *PostgresStore) CreateWhatsAppMessage(ctx context.Context, m *models.WhatsAppMessage) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO whatsapp_messages (id, team_id, lead_id, wa_message_id, direction, from_number, to_number, type, body, status, sent_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (wa_message_id) DO NOTHING`,
		m.ID, m.TeamID, m.LeadID, m.WAMessageID, m.Direction, m.FromNumber,
		m.ToNumber, m.Type, m.Body, m.Status, m.SentAt, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("create whatsapp message: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateWhatsAppMessageStatus(ctx context.Context, waMessageID, status string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE whatsapp_messages SET status = $2 WHERE wa_message_id = $1`, waMessageID, status)
	if err != nil {
		return fmt.Errorf("update whatsapp message status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListWhatsAppMessages(ctx context.Context, filter MessageFilter) ([]*models.WhatsAppMessage, int, error) {
	conditions := []string{"team_id = $1"}
	args := []any{filter.TeamID}
	argIdx := 2

	if filter.LeadID != uuid.Nil {
		conditions = append(conditions, fmt.Sprintf("lead_id = $%d", argIdx))
		args = append(args, filter.LeadID)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM whatsapp_messages WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count whatsapp messages: %w", err)
	}

	limit, offset := normalizePage(filter.Limit, filter.Page)
	dataQuery := fmt.Sprintf(
		`SELECT id, team_id, lead_id, wa_message_id, direction, from_number, to_number, type, body, status, sent_at, created_at
		 FROM whatsapp_messages WHERE %s ORDER BY sent_at DESC LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list whatsapp messages: %w", err)
	}
	defer rows.Close()

	var msgs []*models.WhatsAppMessage
	for rows.Next() {
		var m models.WhatsAppMessage
		if err := rows.Scan(&m.ID, &m.TeamID, &m.LeadID, &m.WAMessageID, &m.Direction,
			&m.FromNumber, &m.ToNumber, &m.Type, &m.Body, &m.Status, &m.SentAt, &m.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan whatsapp message: %w", err)
		}
		msgs = append(msgs, &m)
	}
	return msgs, total, rows.Err()
}
