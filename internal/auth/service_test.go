package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nexocrm/nexo/internal/auth"
	"github.com/nexocrm/nexo/internal/store"
	"github.com/nexocrm/nexo/pkg/models"
)

// mockStore implements the user slice of store.Store; the embedded interface
// panics if an unimplemented method is hit.
type mockStore struct {
	store.Store
	users map[string]*models.User // keyed by email
}

func newMockStore() *mockStore {
	return &mockStore{users: make(map[string]*models.User)}
}

func (m *mockStore) CreateUser(_ context.Context, u *models.User) error {
	if _, exists := m.users[u.Email]; exists {
		return store.ErrDuplicateKey
	}
	m.users[u.Email] = u
	return nil
}

func (m *mockStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (m *mockStore) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) UpdateUserPassword(_ context.Context, id uuid.UUID, hash string) error {
	for _, u := range m.users {
		if u.ID == id {
			u.PasswordHash = hash
			return nil
		}
	}
	return store.ErrNotFound
}

// mockCache is an in-memory Cache.
type mockCache struct {
	sessions    map[uuid.UUID]uuid.UUID
	activeTeams map[uuid.UUID]uuid.UUID
	failDelete  bool
}

func newMockCache() *mockCache {
	return &mockCache{
		sessions:    make(map[uuid.UUID]uuid.UUID),
		activeTeams: make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *mockCache) Ping(_ context.Context) error { return nil }

func (m *mockCache) SetSession(_ context.Context, sessionID, userID uuid.UUID, _ time.Duration) error {
	m.sessions[sessionID] = userID
	return nil
}

func (m *mockCache) GetSession(_ context.Context, sessionID uuid.UUID) (uuid.UUID, bool, error) {
	userID, ok := m.sessions[sessionID]
	return userID, ok, nil
}

func (m *mockCache) DeleteSession(_ context.Context, sessionID uuid.UUID) error {
	if m.failDelete {
		return assert.AnError
	}
	delete(m.sessions, sessionID)
	return nil
}

func (m *mockCache) SetActiveTeam(_ context.Context, userID, teamID uuid.UUID) error {
	m.activeTeams[userID] = teamID
	return nil
}

func (m *mockCache) GetActiveTeam(_ context.Context, userID uuid.UUID) (uuid.UUID, bool, error) {
	teamID, ok := m.activeTeams[userID]
	return teamID, ok, nil
}

func (m *mockCache) DeleteActiveTeam(_ context.Context, userID uuid.UUID) error {
	delete(m.activeTeams, userID)
	return nil
}

func (m *mockCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 1, nil
}

func newService(s store.Store, c *mockCache) *auth.Service {
	return auth.NewService(s, c, testSecret, 15*time.Minute, 24*time.Hour)
}

func seedUser(t *testing.T, s *mockStore, email, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{ID: uuid.New(), Email: email, Name: "Test User", PasswordHash: string(hash)}
	s.users[email] = u
	return u
}

func TestRegister(t *testing.T) {
	s := newMockStore()
	svc := newService(s, newMockCache())

	user, err := svc.Register(context.Background(), "Ada", "Ada@Example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email, "email should be normalized")
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s := newMockStore()
	seedUser(t, s, "ada@example.com", "whatever1")
	svc := newService(s, newMockCache())

	_, err := svc.Register(context.Background(), "Ada", "ada@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, auth.ErrEmailTaken)
}

func TestRegister_Validation(t *testing.T) {
	svc := newService(newMockStore(), newMockCache())

	_, err := svc.Register(context.Background(), "Ada", "not-an-email", "s3cret-pass")
	assert.ErrorIs(t, err, auth.ErrValidation)

	_, err = svc.Register(context.Background(), "", "ada@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, auth.ErrValidation)

	_, err = svc.Register(context.Background(), "Ada", "ada@example.com", "short")
	assert.ErrorIs(t, err, auth.ErrValidation)
}

func TestLogin(t *testing.T) {
	s := newMockStore()
	c := newMockCache()
	user := seedUser(t, s, "ada@example.com", "s3cret-pass")
	svc := newService(s, c)

	result, err := svc.Login(context.Background(), "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.NotEmpty(t, result.AccessToken)

	// The token should reference a live session owned by the user.
	gotUser, sessionID, err := auth.ParseToken(result.AccessToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, gotUser)
	assert.Equal(t, user.ID, c.sessions[sessionID])
}

func TestLogin_BadCredentialsIndistinguishable(t *testing.T) {
	s := newMockStore()
	seedUser(t, s, "ada@example.com", "s3cret-pass")
	svc := newService(s, newMockCache())

	_, errUnknown := svc.Login(context.Background(), "nobody@example.com", "s3cret-pass")
	_, errWrongPw := svc.Login(context.Background(), "ada@example.com", "wrong-pass")

	assert.ErrorIs(t, errUnknown, auth.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPw, auth.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
}

func TestLogout_RevokesSession(t *testing.T) {
	s := newMockStore()
	c := newMockCache()
	seedUser(t, s, "ada@example.com", "s3cret-pass")
	svc := newService(s, c)

	result, err := svc.Login(context.Background(), "ada@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, sessionID, err := auth.ParseToken(result.AccessToken, testSecret)
	require.NoError(t, err)

	svc.Logout(context.Background(), sessionID)
	_, ok := c.sessions[sessionID]
	assert.False(t, ok, "session should be revoked")
}

func TestLogout_CacheFailureDoesNotPanic(t *testing.T) {
	c := newMockCache()
	c.failDelete = true
	svc := newService(newMockStore(), c)

	// Must not panic or surface the error; the session expires by TTL.
	svc.Logout(context.Background(), uuid.New())
}

func TestChangePassword(t *testing.T) {
	s := newMockStore()
	user := seedUser(t, s, "ada@example.com", "s3cret-pass")
	svc := newService(s, newMockCache())

	err := svc.ChangePassword(context.Background(), user.ID, "new-s3cret-pass")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "ada@example.com", "new-s3cret-pass")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "ada@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestChangePassword_TooShort(t *testing.T) {
	svc := newService(newMockStore(), newMockCache())

	err := svc.ChangePassword(context.Background(), uuid.New(), "short")
	assert.ErrorIs(t, err, auth.ErrValidation)
}
