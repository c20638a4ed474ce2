package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/fleetdesk_api/internal/models"
	"github.com/GTDGit/fleetdesk_api/internal/utils"
)

type memAdminStore struct {
	users      map[string]*models.AdminUser
	lastLogins []int
}

func (m *memAdminStore) GetByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, utils.ErrNotFound
}

func (m *memAdminStore) Create(_ context.Context, user *models.AdminUser) error {
	user.ID = len(m.users) + 1
	m.users[user.Email] = user
	return nil
}

func (m *memAdminStore) UpdateLastLogin(_ context.Context, id int) error {
	m.lastLogins = append(m.lastLogins, id)
	return nil
}

func newAuthFixture(t *testing.T) (*AdminAuthService, *memAdminStore) {
	t.Helper()
	utils.InitJWT("test-secret", time.Hour)
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	store := &memAdminStore{users: map[string]*models.AdminUser{
		"ops@example.com":     {ID: 1, Email: "ops@example.com", PasswordHash: string(hash), IsActive: true},
		"retired@example.com": {ID: 2, Email: "retired@example.com", PasswordHash: string(hash), IsActive: false},
	}}
	return NewAdminAuthService(store), store
}

func TestAdminAuthService_Login(t *testing.T) {
	svc, store := newAuthFixture(t)

	res, err := svc.Login(context.Background(), " OPS@example.com ", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, []int{1}, store.lastLogins)

	claims, err := utils.ValidateJWT(res.Token)
	require.NoError(t, err)
	assert.Equal(t, 1, claims.UserID)
}

func TestAdminAuthService_LoginFailures(t *testing.T) {
	svc, store := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "ops@example.com", "wrong")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "retired@example.com", "correct-horse")
	assert.ErrorIs(t, err, utils.ErrInactiveUser)

	assert.Empty(t, store.lastLogins)
}

func TestAdminAuthService_EnsureAdminIsIdempotent(t *testing.T) {
	svc, store := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "new@example.com", "long-enough", "New"))
	require.NoError(t, svc.EnsureAdmin(ctx, "new@example.com", "long-enough", "New"))
	assert.Len(t, store.users, 3)

	_, err := svc.Login(ctx, "new@example.com", "long-enough")
	assert.NoError(t, err)
}
