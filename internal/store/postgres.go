package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nexocrm/nexo/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Users ---

const userColumns = `id, email, name, password_hash, is_super_admin, email_verified_at, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsSuperAdmin,
		&u.EmailVerifiedAt, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, name, password_hash, is_super_admin, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Email, user.Name, user.PasswordHash, user.IsSuperAdmin,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, err
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, err
}

func (s *PostgresStore) UpdateUser(ctx context.Context, id uuid.UUID, name string) (*models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		`UPDATE users SET name = $2, updated_at = NOW() WHERE id = $1 RETURNING `+userColumns, id, name))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, err
}

func (s *PostgresStore) UpdateUserPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Teams ---

const teamColumns = `id, name, slug, description, logo_url, created_by, created_at, updated_at`

func scanTeam(row pgx.Row) (*models.Team, error) {
	var t models.Team
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Description, &t.LogoURL,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTeamWithOwner inserts the team and its first owner membership in one
// transaction. Either both rows exist afterward or neither does.
func (s *PostgresStore) CreateTeamWithOwner(ctx context.Context, team *models.Team, ownerID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create team: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO teams (id, name, slug, description, logo_url, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		team.ID, team.Name, team.Slug, team.Description, team.LogoURL,
		team.CreatedBy, team.CreatedAt, team.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create team: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO team_members (id, team_id, user_id, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New(), team.ID, ownerID, models.RoleOwner, team.CreatedAt, team.CreatedAt)
	if err != nil {
		return fmt.Errorf("create owner membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create team: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	t, err := scanTeam(s.pool.QueryRow(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE id = $1`, id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get team: %w", err)
	}
	return t, err
}

func (s *PostgresStore) GetTeamBySlug(ctx context.Context, slug string) (*models.Team, error) {
	t, err := scanTeam(s.pool.QueryRow(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE slug = $1`, slug))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get team by slug: %w", err)
	}
	return t, err
}

func (s *PostgresStore) ListTeamsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Team, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT t.id, t.name, t.slug, t.description, t.logo_url, t.created_by, t.created_at, t.updated_at
		 FROM teams t
		 JOIN team_members m ON m.team_id = t.id
		 WHERE m.user_id = $1
		 ORDER BY t.created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list teams for user: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (s *PostgresStore) ListAllTeams(ctx context.Context) ([]*models.Team, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+teamColumns+` FROM teams ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list all teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (s *PostgresStore) UpdateTeam(ctx context.Context, id uuid.UUID, patch TeamPatch) (*models.Team, error) {
	t, err := scanTeam(s.pool.QueryRow(ctx,
		`UPDATE teams SET
		   name = COALESCE($2, name),
		   description = COALESCE($3, description),
		   logo_url = COALESCE($4, logo_url),
		   updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+teamColumns,
		id, patch.Name, patch.Description, patch.LogoURL))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("update team: %w", err)
	}
	return t, err
}

// DeleteTeam removes the team; memberships, invitations, and all tenant-scoped
// CRM records cascade via foreign keys.
func (s *PostgresStore) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Memberships ---

func (s *PostgresStore) GetTeamMember(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMember, error) {
	var m models.TeamMember
	err := s.pool.QueryRow(ctx,
		`SELECT id, team_id, user_id, role, created_at, updated_at
		 FROM team_members WHERE team_id = $1 AND user_id = $2`, teamID, userID,
	).Scan(&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get team member: %w", err)
	}
	return &m, nil
}

func (s *PostgresStore) GetMember(ctx context.Context, memberID uuid.UUID) (*models.TeamMember, error) {
	var m models.TeamMember
	err := s.pool.QueryRow(ctx,
		`SELECT id, team_id, user_id, role, created_at, updated_at
		 FROM team_members WHERE id = $1`, memberID,
	).Scan(&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return &m, nil
}

func (s *PostgresStore) ListTeamMembers(ctx context.Context, teamID uuid.UUID) ([]*models.TeamMember, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT m.id, m.team_id, m.user_id, m.role, m.created_at, m.updated_at, u.name, u.email
		 FROM team_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.team_id = $1
		 ORDER BY m.created_at`, teamID)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	defer rows.Close()

	var members []*models.TeamMember
	for rows.Next() {
		var m models.TeamMember
		if err := rows.Scan(&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt,
			&m.UserName, &m.UserEmail); err != nil {
			return nil, fmt.Errorf("scan team member: %w", err)
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}

func (s *PostgresStore) CountOwners(ctx context.Context, teamID uuid.UUID) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM team_members WHERE team_id = $1 AND role = $2`,
		teamID, models.RoleOwner).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count owners: %w", err)
	}
	return n, nil
}

// UpdateMemberRole changes a member's role. Demoting the last owner fails with
// ErrLastOwner; the check and the update run in one transaction so the
// invariant holds under concurrent demotions.
func (s *PostgresStore) UpdateMemberRole(ctx context.Context, memberID uuid.UUID, role models.Role) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update member role: %w", err)
	}
	defer tx.Rollback(ctx)

	var teamID uuid.UUID
	var current models.Role
	err = tx.QueryRow(ctx,
		`SELECT team_id, role FROM team_members WHERE id = $1 FOR UPDATE`, memberID,
	).Scan(&teamID, &current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get member for role update: %w", err)
	}

	if current == models.RoleOwner && role != models.RoleOwner {
		var owners int
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM team_members WHERE team_id = $1 AND role = $2`,
			teamID, models.RoleOwner).Scan(&owners); err != nil {
			return fmt.Errorf("count owners: %w", err)
		}
		if owners <= 1 {
			return ErrLastOwner
		}
	}

	_, err = tx.Exec(ctx,
		`UPDATE team_members SET role = $2, updated_at = NOW() WHERE id = $1`, memberID, role)
	if err != nil {
		return fmt.Errorf("update member role: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit update member role: %w", err)
	}
	return nil
}

// RemoveMember deletes a membership. Removing the last owner fails with
// ErrLastOwner.
func (s *PostgresStore) RemoveMember(ctx context.Context, memberID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin remove member: %w", err)
	}
	defer tx.Rollback(ctx)

	var teamID uuid.UUID
	var role models.Role
	err = tx.QueryRow(ctx,
		`SELECT team_id, role FROM team_members WHERE id = $1 FOR UPDATE`, memberID,
	).Scan(&teamID, &role)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get member for removal: %w", err)
	}

	if role == models.RoleOwner {
		var owners int
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM team_members WHERE team_id = $1 AND role = $2`,
			teamID, models.RoleOwner).Scan(&owners); err != nil {
			return fmt.Errorf("count owners: %w", err)
		}
		if owners <= 1 {
			return ErrLastOwner
		}
	}

	_, err = tx.Exec(ctx, `DELETE FROM team_members WHERE id = $1`, memberID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit remove member: %w", err)
	}
	return nil
}

// --- Invitations ---

const invitationColumns = `id, team_id, email, role, invited_by, token_hash, token_prefix, expires_at, created_at, updated_at`

func (s *PostgresStore) CreateInvitation(ctx context.Context, inv *models.TeamInvitation) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO team_invitations (id, team_id, email, role, invited_by, token_hash, token_prefix, expires_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		inv.ID, inv.TeamID, inv.Email, inv.Role, inv.InvitedBy,
		inv.TokenHash, inv.TokenPrefix, inv.ExpiresAt, inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetInvitationsByPrefix(ctx context.Context, prefix string) ([]*models.TeamInvitation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+invitationColumns+` FROM team_invitations WHERE token_prefix = $1`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get invitations by prefix: %w", err)
	}
	defer rows.Close()

	var invs []*models.TeamInvitation
	for rows.Next() {
		var i models.TeamInvitation
		if err := rows.Scan(&i.ID, &i.TeamID, &i.Email, &i.Role, &i.InvitedBy,
			&i.TokenHash, &i.TokenPrefix, &i.ExpiresAt, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		invs = append(invs, &i)
	}
	return invs, rows.Err()
}

func (s *PostgresStore) ListInvitations(ctx context.Context, teamID uuid.UUID) ([]*models.TeamInvitation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+invitationColumns+` FROM team_invitations WHERE team_id = $1 ORDER BY created_at DESC`, teamID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	var invs []*models.TeamInvitation
	for rows.Next() {
		var i models.TeamInvitation
		if err := rows.Scan(&i.ID, &i.TeamID, &i.Email, &i.Role, &i.InvitedBy,
			&i.TokenHash, &i.TokenPrefix, &i.ExpiresAt, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		invs = append(invs, &i)
	}
	return invs, rows.Err()
}

func (s *PostgresStore) DeleteInvitation(ctx context.Context, id, teamID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM team_invitations WHERE id = $1 AND team_id = $2`, id, teamID)
	if err != nil {
		return fmt.Errorf("delete invitation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AcceptInvitation converts the invitation into a membership and consumes it,
// atomically. The delete runs first so a concurrent acceptance of the same
// token observes zero rows and fails with ErrNotFound.
func (s *PostgresStore) AcceptInvitation(ctx context.Context, inv *models.TeamInvitation, userID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin accept invitation: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM team_invitations WHERE id = $1`, inv.ID)
	if err != nil {
		return fmt.Errorf("consume invitation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO team_members (id, team_id, user_id, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NOW(), NOW())`,
		uuid.New(), inv.TeamID, userID, inv.Role)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit accept invitation: %w", err)
	}
	return nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
