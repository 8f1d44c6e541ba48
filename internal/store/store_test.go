package store_test

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/nexocrm/nexo/internal/store"
	"github.com/nexocrm/nexo/pkg/models"
)

// migrationsDir returns the absolute path to the migrations directory.
func migrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "migrations")
}

// setupTestDB spins up a Postgres container, runs migrations, and returns a pool + cleanup.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("nexo_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	err = store.RunMigrations(connStr, migrationsDir())
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	return pool
}

func createUser(t *testing.T, s store.Store, email string) *models.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Test User",
		PasswordHash: "bcrypt-hash-here",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func createTeam(t *testing.T, s store.Store, owner *models.User, slug string) *models.Team {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	team := &models.Team{
		ID:        uuid.New(),
		Name:      "Team " + slug,
		Slug:      slug,
		CreatedBy: owner.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateTeamWithOwner(context.Background(), team, owner.ID))
	return team
}

// --- Team Tests ---

func TestCreateTeamWithOwner(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	owner := createUser(t, s, "owner@example.com")
	team := createTeam(t, s, owner, "acme")

	// Team and owner membership must land together.
	got, err := s.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme", got.Slug)

	member, err := s.GetTeamMember(ctx, team.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, member.Role)

	count, err := s.CountOwners(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreateTeam_DuplicateSlug(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	owner := createUser(t, s, "owner@example.com")
	createTeam(t, s, owner, "acme")

	now := time.Now().UTC()
	err := s.CreateTeamWithOwner(ctx, &models.Team{
		ID: uuid.New(), Name: "Acme Again", Slug: "acme",
		CreatedBy: owner.ID, CreatedAt: now, UpdatedAt: now,
	}, owner.ID)
	assert.ErrorIs(t, err, store.ErrDuplicateKey)

	// The failed attempt must not leave a dangling membership.
	teams, err := s.ListTeamsForUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, teams, 1)
}

func TestListTeamsForUser(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	alice := createUser(t, s, "alice@example.com")
	bob := createUser(t, s, "bob@example.com")
	createTeam(t, s, alice, "alpha")
	createTeam(t, s, alice, "beta")
	createTeam(t, s, bob, "gamma")

	teams, err := s.ListTeamsForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, teams, 2)
}

// --- Membership Tests ---

func TestUpdateMemberRole_LastOwner(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	owner := createUser(t, s, "owner@example.com")
	team := createTeam(t, s, owner, "acme")

	member, err := s.GetTeamMember(ctx, team.ID, owner.ID)
	require.NoError(t, err)

	err = s.UpdateMemberRole(ctx, member.ID, models.RoleAdmin)
	assert.ErrorIs(t, err, store.ErrLastOwner)

	// Role must be untouched.
	member, err = s.GetTeamMember(ctx, team.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, member.Role)
}

func TestUpdateMemberRole_SecondOwnerAllows(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	owner := createUser(t, s, "owner@example.com")
	second := createUser(t, s, "second@example.com")
	team := createTeam(t, s, owner, "acme")
	acceptAs(t, s, team, owner, second, models.RoleAdmin)

	// Promote the second member to owner, then the original owner may step
	// down.
	promoted, err := s.GetTeamMember(ctx, team.ID, second.ID)
	require.NoError(t, err)
	require.NoError(t, s.UpdateMemberRole(ctx, promoted.ID, models.RoleOwner))

	member, err := s.GetTeamMember(ctx, team.ID, owner.ID)
	require.NoError(t, err)
	require.NoError(t, s.UpdateMemberRole(ctx, member.ID, models.RoleMember))

	count, err := s.CountOwners(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRemoveMember_LastOwner(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	owner := createUser(t, s, "owner@example.com")
	team := createTeam(t, s, owner, "acme")

	member, err := s.GetTeamMember(ctx, team.ID, owner.ID)
	require.NoError(t, err)

	err = s.RemoveMember(ctx, member.ID)
	assert.ErrorIs(t, err, store.ErrLastOwner)
}

// --- Invitation Tests ---

func newInvitation(team *models.Team, inviter *models.User, email, prefix string) *models.TeamInvitation {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.TeamInvitation{
		ID:          uuid.New(),
		TeamID:      team.ID,
		Email:       email,
		Role:        models.RoleMember,
		InvitedBy:   inviter.ID,
		TokenHash:   "bcrypt-hash-" + prefix,
		TokenPrefix: prefix,
		ExpiresAt:   now.Add(7 * 24 * time.Hour),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// acceptAs joins a user to a team through the invitation path.
func acceptAs(t *testing.T, s store.Store, team *models.Team, inviter, user *models.User, role models.Role) {
	t.Helper()
	ctx := context.Background()
	inv := newInvitation(team, inviter, user.Email, "nxi_"+uuid.NewString()[:4])
	inv.Role = role
	require.NoError(t, s.CreateInvitation(ctx, inv))
	require.NoError(t, s.AcceptInvitation(ctx, inv, user.ID))
}

func TestInvitation_PrefixLookup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	owner := createUser(t, s, "owner@example.com")
	team := createTeam(t, s, owner, "acme")

	inv := newInvitation(team, owner, "new@example.com", "nxi_abcd")
	require.NoError(t, s.CreateInvitation(ctx, inv))
	require.NoError(t, s.CreateInvitation(ctx, newInvitation(team, owner, "other@example.com", "nxi_zzzz")))

	got, err := s.GetInvitationsByPrefix(ctx, "nxi_abcd")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, inv.ID, got[0].ID)
}

func TestAcceptInvitation_SingleUse(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	owner := createUser(t, s, "owner@example.com")
	invited := createUser(t, s, "invited@example.com")
	team := createTeam(t, s, owner, "acme")

	inv := newInvitation(team, owner, invited.Email, "nxi_once")
	require.NoError(t, s.CreateInvitation(ctx, inv))

	require.NoError(t, s.AcceptInvitation(ctx, inv, invited.ID))

	member, err := s.GetTeamMember(ctx, team.ID, invited.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, member.Role)

	// The invitation row is consumed; a second acceptance sees nothing.
	err = s.AcceptInvitation(ctx, inv, invited.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.GetInvitationsByPrefix(ctx, "nxi_once")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAcceptInvitation_AlreadyMember(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	owner := createUser(t, s, "owner@example.com")
	invited := createUser(t, s, "invited@example.com")
	team := createTeam(t, s, owner, "acme")
	acceptAs(t, s, team, owner, invited, models.RoleMember)

	inv := newInvitation(team, owner, invited.Email, "nxi_dup1")
	require.NoError(t, s.CreateInvitation(ctx, inv))

	err := s.AcceptInvitation(ctx, inv, invited.ID)
	assert.ErrorIs(t, err, store.ErrDuplicateKey)
}

// --- Tenant Scoping Tests ---

func TestLead_TenantScoping(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	alice := createUser(t, s, "alice@example.com")
	bob := createUser(t, s, "bob@example.com")
	teamA := createTeam(t, s, alice, "team-a")
	teamB := createTeam(t, s, bob, "team-b")

	now := time.Now().UTC().Truncate(time.Microsecond)
	lead := &models.Lead{
		ID:        uuid.New(),
		TeamID:    teamA.ID,
		Name:      "Prospect",
		Phone:     "15550001111",
		CreatedBy: alice.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateLead(ctx, lead))

	// Visible inside the owning team.
	got, err := s.GetLead(ctx, lead.ID, teamA.ID)
	require.NoError(t, err)
	assert.Equal(t, "Prospect", got.Name)

	// Invisible from any other team, even with the right ID.
	_, err = s.GetLead(ctx, lead.ID, teamB.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.DeleteLead(ctx, lead.ID, teamB.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetLeadByPhone(ctx, teamB.ID, "15550001111")
	assert.ErrorIs(t, err, store.ErrNotFound)

	leads, total, err := s.ListLeads(ctx, store.LeadFilter{TeamID: teamB.ID, Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, leads)
}

func TestListLeads_SearchAndPagination(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	alice := createUser(t, s, "alice@example.com")
	team := createTeam(t, s, alice, "acme")
	now := time.Now().UTC().Truncate(time.Microsecond)

	names := []string{"Ada Lovelace", "Alan Turing", "Grace Hopper", "Adam West", "Linus T"}
	for _, name := range names {
		require.NoError(t, s.CreateLead(ctx, &models.Lead{
			ID: uuid.New(), TeamID: team.ID, Name: name,
			CreatedBy: alice.ID, CreatedAt: now, UpdatedAt: now,
		}))
	}

	leads, total, err := s.ListLeads(ctx, store.LeadFilter{TeamID: team.ID, Page: 1, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, leads, 3)

	leads, total, err = s.ListLeads(ctx, store.LeadFilter{TeamID: team.ID, Search: "ada", Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, leads, 2)
}

func createCompany(t *testing.T, s store.Store, team *models.Team, owner *models.User, name string) *models.Company {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	company := &models.Company{
		ID: uuid.New(), TeamID: team.ID, Name: name,
		CreatedBy: owner.ID, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.CreateCompany(context.Background(), company))
	return company
}

func createPipelineWithStage(t *testing.T, s store.Store, team *models.Team) (*models.Pipeline, *models.PipelineStage) {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	pipeline := &models.Pipeline{
		ID: uuid.New(), TeamID: team.ID, Name: "Sales",
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.CreatePipeline(context.Background(), pipeline))
	stage := &models.PipelineStage{
		ID: uuid.New(), TeamID: team.ID, PipelineID: pipeline.ID,
		Name: "New", Position: 0, Color: "#808080",
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.CreateStage(context.Background(), stage))
	return pipeline, stage
}

func TestDeleteCompany_DetachesLeads(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	alice := createUser(t, s, "alice@example.com")
	team := createTeam(t, s, alice, "acme")
	company := createCompany(t, s, team, alice, "Initech")
	now := time.Now().UTC().Truncate(time.Microsecond)

	lead := &models.Lead{
		ID: uuid.New(), TeamID: team.ID, Name: "Prospect",
		CompanyID: &company.ID,
		CreatedBy: alice.ID, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.CreateLead(ctx, lead))

	require.NoError(t, s.DeleteCompany(ctx, company.ID, team.ID))

	got, err := s.GetLead(ctx, lead.ID, team.ID)
	require.NoError(t, err, "lead must survive its company's deletion")
	assert.Nil(t, got.CompanyID)
	assert.Equal(t, team.ID, got.TeamID)
}

func TestDeletePipeline_DetachesLeads(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	alice := createUser(t, s, "alice@example.com")
	team := createTeam(t, s, alice, "acme")
	pipeline, stage := createPipelineWithStage(t, s, team)
	now := time.Now().UTC().Truncate(time.Microsecond)

	lead := &models.Lead{
		ID: uuid.New(), TeamID: team.ID, Name: "Prospect",
		StageID:   &stage.ID,
		CreatedBy: alice.ID, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.CreateLead(ctx, lead))

	// Deleting the pipeline cascades to its stages, which must only clear
	// the stage reference on leads.
	require.NoError(t, s.DeletePipeline(ctx, pipeline.ID, team.ID))

	got, err := s.GetLead(ctx, lead.ID, team.ID)
	require.NoError(t, err)
	assert.Nil(t, got.StageID)
	assert.Equal(t, team.ID, got.TeamID)
}

func TestDeleteTeam_CascadesRecords(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	alice := createUser(t, s, "alice@example.com")
	team := createTeam(t, s, alice, "acme")
	company := createCompany(t, s, team, alice, "Initech")
	_, stage := createPipelineWithStage(t, s, team)
	now := time.Now().UTC().Truncate(time.Microsecond)

	lead := &models.Lead{
		ID: uuid.New(), TeamID: team.ID, Name: "Prospect",
		CompanyID: &company.ID, StageID: &stage.ID,
		CreatedBy: alice.ID, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.CreateLead(ctx, lead))

	require.NoError(t, s.DeleteTeam(ctx, team.ID))

	_, err := s.GetTeam(ctx, team.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetLead(ctx, lead.ID, team.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetCompany(ctx, company.ID, team.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteLabel_ScrubsLeadLabelIDs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	alice := createUser(t, s, "alice@example.com")
	team := createTeam(t, s, alice, "acme")
	now := time.Now().UTC().Truncate(time.Microsecond)

	vip := &models.Label{ID: uuid.New(), TeamID: team.ID, Name: "vip", Color: "#ff0000", CreatedAt: now, UpdatedAt: now}
	cold := &models.Label{ID: uuid.New(), TeamID: team.ID, Name: "cold", Color: "#0000ff", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.CreateLabel(ctx, vip))
	require.NoError(t, s.CreateLabel(ctx, cold))

	lead := &models.Lead{
		ID: uuid.New(), TeamID: team.ID, Name: "Prospect",
		LabelIDs:  []uuid.UUID{vip.ID, cold.ID},
		CreatedBy: alice.ID, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.CreateLead(ctx, lead))

	require.NoError(t, s.DeleteLabel(ctx, vip.ID, team.ID))

	got, err := s.GetLead(ctx, lead.ID, team.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{cold.ID}, got.LabelIDs, "only the deleted label leaves the lead")

	labels, err := s.ListLabels(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, labels, 1)
	assert.Equal(t, cold.ID, labels[0].ID)
}

// --- WhatsApp Tests ---

func testSettings(teamID uuid.UUID, phoneNumberID string) *models.WhatsAppSettings {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.WhatsAppSettings{
		ID:            uuid.New(),
		TeamID:        teamID,
		PhoneNumberID: phoneNumberID,
		AccessToken:   "EAAG-token",
		VerifyToken:   "verify-" + phoneNumberID,
		APIVersion:    "v18.0",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestWhatsAppSettings_UpsertReplacesRow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	alice := createUser(t, s, "alice@example.com")
	team := createTeam(t, s, alice, "acme")

	first, err := s.UpsertWhatsAppSettings(ctx, testSettings(team.ID, "745001"))
	require.NoError(t, err)

	updated := testSettings(team.ID, "745002")
	second, err := s.UpsertWhatsAppSettings(ctx, updated)
	require.NoError(t, err)

	// One row per team: the second upsert replaces the first.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "745002", second.PhoneNumberID)

	got, err := s.GetWhatsAppSettings(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, "745002", got.PhoneNumberID)

	byPhone, err := s.GetWhatsAppSettingsByPhoneNumberID(ctx, "745002")
	require.NoError(t, err)
	assert.Equal(t, team.ID, byPhone.TeamID)

	byToken, err := s.GetWhatsAppSettingsByVerifyToken(ctx, "verify-745002")
	require.NoError(t, err)
	assert.Equal(t, team.ID, byToken.TeamID)

	_, err = s.GetWhatsAppSettingsByPhoneNumberID(ctx, "745001")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestWhatsAppMessage_DedupByProviderID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	alice := createUser(t, s, "alice@example.com")
	team := createTeam(t, s, alice, "acme")
	now := time.Now().UTC().Truncate(time.Microsecond)

	msg := &models.WhatsAppMessage{
		ID:          uuid.New(),
		TeamID:      team.ID,
		WAMessageID: "wamid.dedup",
		Direction:   models.DirectionInbound,
		FromNumber:  "15559876543",
		ToNumber:    "15550001111",
		Type:        "text",
		Body:        "hello",
		SentAt:      now,
		CreatedAt:   now,
	}
	require.NoError(t, s.CreateWhatsAppMessage(ctx, msg))

	// A webhook redelivery inserts the same provider ID again; only one row
	// survives.
	dup := *msg
	dup.ID = uuid.New()
	require.NoError(t, s.CreateWhatsAppMessage(ctx, &dup))

	msgs, total, err := s.ListWhatsAppMessages(ctx, store.MessageFilter{TeamID: team.ID, Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, msgs, 1)

	require.NoError(t, s.UpdateWhatsAppMessageStatus(ctx, "wamid.dedup", "delivered"))
	msgs, _, err = s.ListWhatsAppMessages(ctx, store.MessageFilter{TeamID: team.ID, Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, "delivered", msgs[0].Status)
}

// --- Ping Test ---

func TestPing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	err := s.Ping(context.Background())
	assert.NoError(t, err)
}
