package team

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nexocrm/nexo/internal/cache"
	"github.com/nexocrm/nexo/internal/store"
	"github.com/nexocrm/nexo/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotAMember         = errors.New("not a member of this team")
	ErrSlugTaken          = errors.New("slug already taken")
	ErrValidation         = errors.New("validation failed")
	ErrForbidden          = errors.New("operation not permitted")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrInvitationExpired  = errors.New("invitation expired")
	ErrEmailMismatch      = errors.New("invitation addressed to a different email")
	ErrAlreadyMember      = errors.New("already a member of this team")
	ErrLastOwner          = store.ErrLastOwner
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

const tokenPrefixLen = 8

// Service owns team membership state: which teams a user belongs to, which
// one is active, and the invitation lifecycle. Every tenant-scoped query in
// the API is gated on the active team this service validates.
type Service struct {
	store         store.Store
	cache         cache.Cache
	invitationTTL time.Duration
}

func NewService(s store.Store, c cache.Cache, invitationTTL time.Duration) *Service {
	return &Service{store: s, cache: c, invitationTTL: invitationTTL}
}

// FetchTeams lists the teams the user is a member of. Super admins see their
// own memberships here like everyone else; cross-tenant access goes through
// the explicit admin surface.
func (s *Service) FetchTeams(ctx context.Context, userID uuid.UUID) ([]*models.Team, error) {
	return s.store.ListTeamsForUser(ctx, userID)
}

// SetCurrentTeam switches the user's active team after validating membership.
// On ErrNotAMember the previously active team is left untouched.
func (s *Service) SetCurrentTeam(ctx context.Context, userID, teamID uuid.UUID) error {
	_, err := s.store.GetTeamMember(ctx, teamID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotAMember
	}
	if err != nil {
		return fmt.Errorf("validate membership: %w", err)
	}
	if err := s.cache.SetActiveTeam(ctx, userID, teamID); err != nil {
		return fmt.Errorf("persist active team: %w", err)
	}
	return nil
}

// ActiveTeam returns the user's persisted active team, if any.
func (s *Service) ActiveTeam(ctx context.Context, userID uuid.UUID) (uuid.UUID, bool, error) {
	return s.cache.GetActiveTeam(ctx, userID)
}

// CreateTeam creates a team with the caller as its first owner. The team and
// the owner membership are committed together. The new team becomes the
// caller's active team.
func (s *Service) CreateTeam(ctx context.Context, userID uuid.UUID, name, slug, description string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if slug == "" {
		slug = Slugify(name)
	}
	if !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("%w: slug must be lowercase letters, digits, and hyphens", ErrValidation)
	}

	now := time.Now().UTC()
	team := &models.Team{
		ID:          uuid.New(),
		Name:        name,
		Slug:        slug,
		Description: description,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateTeamWithOwner(ctx, team, userID); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("create team: %w", err)
	}

	if err := s.cache.SetActiveTeam(ctx, userID, team.ID); err != nil {
		return nil, fmt.Errorf("persist active team: %w", err)
	}
	return team, nil
}

// UpdateTeam patches team metadata. Only owners and admins may update. The
// slug is immutable once claimed.
func (s *Service) UpdateTeam(ctx context.Context, userID, teamID uuid.UUID, patch store.TeamPatch) (*models.Team, error) {
	if err := s.requireManager(ctx, teamID, userID); err != nil {
		return nil, err
	}
	return s.store.UpdateTeam(ctx, teamID, patch)
}

// DeleteTeam removes a team and everything scoped to it. Platform super
// admins only.
func (s *Service) DeleteTeam(ctx context.Context, actor *models.User, teamID uuid.UUID) error {
	if !s.IsSuperAdmin(actor) {
		return ErrForbidden
	}
	return s.store.DeleteTeam(ctx, teamID)
}

// ListMembers lists a team's members with profile fields. Callers must be
// members themselves.
func (s *Service) ListMembers(ctx context.Context, userID, teamID uuid.UUID) ([]*models.TeamMember, error) {
	if _, err := s.membership(ctx, teamID, userID); err != nil {
		return nil, err
	}
	return s.store.ListTeamMembers(ctx, teamID)
}

// InviteMember creates an invitation and returns it with the raw token. The
// raw token is shown once and never stored; only its bcrypt hash persists.
func (s *Service) InviteMember(ctx context.Context, userID, teamID uuid.UUID, email string, role models.Role) (*models.TeamInvitation, string, error) {
	if err := s.requireManager(ctx, teamID, userID); err != nil {
		return nil, "", err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if !role.Valid() || role == models.RoleOwner {
		return nil, "", fmt.Errorf("%w: role must be admin, member, or guest", ErrValidation)
	}

	rawToken, err := generateToken()
	if err != nil {
		return nil, "", fmt.Errorf("generate invitation token: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(rawToken), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash invitation token: %w", err)
	}

	now := time.Now().UTC()
	inv := &models.TeamInvitation{
		ID:          uuid.New(),
		TeamID:      teamID,
		Email:       email,
		Role:        role,
		InvitedBy:   userID,
		TokenHash:   string(hash),
		TokenPrefix: rawToken[:tokenPrefixLen],
		ExpiresAt:   now.Add(s.invitationTTL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateInvitation(ctx, inv); err != nil {
		return nil, "", fmt.Errorf("create invitation: %w", err)
	}
	return inv, rawToken, nil
}

// AcceptInvitation consumes an invitation token and joins the caller to the
// team with the invited role. The token is single use: a second acceptance of
// the same token fails with ErrInvitationNotFound.
func (s *Service) AcceptInvitation(ctx context.Context, user *models.User, rawToken string) (*models.TeamMember, error) {
	if len(rawToken) < tokenPrefixLen {
		return nil, ErrInvitationNotFound
	}

	candidates, err := s.store.GetInvitationsByPrefix(ctx, rawToken[:tokenPrefixLen])
	if err != nil {
		return nil, fmt.Errorf("lookup invitation: %w", err)
	}

	var inv *models.TeamInvitation
	for _, c := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(c.TokenHash), []byte(rawToken)) == nil {
			inv = c
			break
		}
	}
	if inv == nil {
		return nil, ErrInvitationNotFound
	}

	if inv.Expired(time.Now().UTC()) {
		return nil, ErrInvitationExpired
	}
	if !strings.EqualFold(inv.Email, user.Email) {
		return nil, ErrEmailMismatch
	}

	if err := s.store.AcceptInvitation(ctx, inv, user.ID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			// Consumed by a concurrent acceptance.
			return nil, ErrInvitationNotFound
		case errors.Is(err, store.ErrDuplicateKey):
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("accept invitation: %w", err)
	}

	return s.store.GetTeamMember(ctx, inv.TeamID, user.ID)
}

// ListInvitations lists pending invitations for the team. Owners and admins
// only.
func (s *Service) ListInvitations(ctx context.Context, userID, teamID uuid.UUID) ([]*models.TeamInvitation, error) {
	if err := s.requireManager(ctx, teamID, userID); err != nil {
		return nil, err
	}
	return s.store.ListInvitations(ctx, teamID)
}

// DeleteInvitation withdraws a pending invitation.
func (s *Service) DeleteInvitation(ctx context.Context, userID, teamID, invitationID uuid.UUID) error {
	if err := s.requireManager(ctx, teamID, userID); err != nil {
		return err
	}
	return s.store.DeleteInvitation(ctx, invitationID, teamID)
}

// UpdateMemberRole re-roles a member. Only owners may grant or revoke the
// owner role; demoting the last owner fails with ErrLastOwner.
func (s *Service) UpdateMemberRole(ctx context.Context, userID, teamID, memberID uuid.UUID, role models.Role) error {
	actor, err := s.membership(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if !actor.Role.CanManageTeam() {
		return ErrForbidden
	}
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	target, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return err
	}
	if target.TeamID != teamID {
		return store.ErrNotFound
	}
	if (role == models.RoleOwner || target.Role == models.RoleOwner) && actor.Role != models.RoleOwner {
		return ErrForbidden
	}

	return s.store.UpdateMemberRole(ctx, memberID, role)
}

// RemoveMember removes a member from the team. Admins cannot remove owners,
// and the last owner can never be removed.
func (s *Service) RemoveMember(ctx context.Context, userID, teamID, memberID uuid.UUID) error {
	actor, err := s.membership(ctx, teamID, userID)
	if err != nil {
		return err
	}

	target, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return err
	}
	if target.TeamID != teamID {
		return store.ErrNotFound
	}

	// Members may leave on their own; removing anyone else takes a manager.
	if target.UserID != userID {
		if !actor.Role.CanManageTeam() {
			return ErrForbidden
		}
		if target.Role == models.RoleOwner && actor.Role != models.RoleOwner {
			return ErrForbidden
		}
	}

	if err := s.store.RemoveMember(ctx, memberID); err != nil {
		return err
	}

	// Clear a now-dangling active-team selection.
	if active, ok, err := s.cache.GetActiveTeam(ctx, target.UserID); err == nil && ok && active == teamID {
		_ = s.cache.DeleteActiveTeam(ctx, target.UserID)
	}
	return nil
}

// IsSuperAdmin reports the platform-wide admin flag, independent of any team
// membership.
func (s *Service) IsSuperAdmin(user *models.User) bool {
	return user.IsSuperAdmin
}

// ListAllTeams is the explicit cross-tenant admin surface.
func (s *Service) ListAllTeams(ctx context.Context, actor *models.User) ([]*models.Team, error) {
	if !s.IsSuperAdmin(actor) {
		return nil, ErrForbidden
	}
	return s.store.ListAllTeams(ctx)
}

func (s *Service) membership(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMember, error) {
	m, err := s.store.GetTeamMember(ctx, teamID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotAMember
	}
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return m, nil
}

func (s *Service) requireManager(ctx context.Context, teamID, userID uuid.UUID) error {
	m, err := s.membership(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if !m.Role.CanManageTeam() {
		return ErrForbidden
	}
	return nil
}

// Slugify derives a URL-safe slug from a team name.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// generateToken returns a random invitation token. The first tokenPrefixLen
// characters are stored in clear for lookup; the full value is only ever
// bcrypt-compared.
func generateToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "nxi_" + hex.EncodeToString(buf), nil
}
