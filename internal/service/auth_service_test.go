package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/narengee/c4c-api/internal/models"
	appErrors "github.com/narengee/c4c-api/pkg/errors"
)

type mockUserRepo struct {
	usersByID    map[string]*models.User
	usersByEmail map[string]*models.User
	tokens       map[string]*models.RefreshToken
	audits       []models.AuditLog
	nextID       int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]*models.User),
		usersByEmail: make(map[string]*models.User),
		tokens:       make(map[string]*models.RefreshToken),
	}
}

func (m *mockUserRepo) addUser(user *models.User) {
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := m.usersByEmail[email]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.usersByID[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		m.nextID++
		user.ID = fmt.Sprintf("user-%d", m.nextID)
	}
	clone := *user
	m.addUser(&clone)
	return nil
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	if user, ok := m.usersByID[id]; ok {
		user.LastLogin = &ts
	}
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if user, ok := m.usersByID[id]; ok {
		user.PasswordHash = passwordHash
		user.UpdatedAt = updatedAt
	}
	return nil
}

func (m *mockUserRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	for _, token := range m.tokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
	return nil
}

func (m *mockUserRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		m.nextID++
		token.ID = fmt.Sprintf("token-%d", m.nextID)
	}
	clone := *token
	m.tokens[token.Token] = &clone
	return nil
}

func (m *mockUserRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if stored, ok := m.tokens[token]; ok {
		clone := *stored
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.tokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockUserRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.audits = append(m.audits, *log)
	return nil
}

type mockProfileUpserter struct {
	upserts []string
	err     error
}

func (m *mockProfileUpserter) Upsert(ctx context.Context, profile *models.StudentProfile) error {
	if m.err != nil {
		return m.err
	}
	m.upserts = append(m.upserts, profile.StudentID)
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 30 * 24 * time.Hour,
		Issuer:             "c4c-api",
		Audience:           []string{"c4c-clients"},
	}
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestSignupStudentCreatesProfile(t *testing.T) {
	repo := newMockUserRepo()
	profiles := &mockProfileUpserter{}
	svc := NewAuthService(repo, profiles, nil, validator.New(), zap.NewNop(), testAuthConfig())

	resp, err := svc.Signup(context.Background(), models.SignupRequest{
		Email:    "student@example.com",
		Password: "secret123",
		FullName: "Maya Patel",
		Role:     models.RoleStudent,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, models.RoleStudent, resp.User.Role)
	assert.Len(t, profiles.upserts, 1)
	assert.NotEmpty(t, repo.audits)
}

func TestSignupCoachSkipsProfile(t *testing.T) {
	repo := newMockUserRepo()
	profiles := &mockProfileUpserter{}
	svc := NewAuthService(repo, profiles, nil, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Signup(context.Background(), models.SignupRequest{
		Email:    "coach@example.com",
		Password: "secret123",
		FullName: "Jordan Lee",
		Role:     models.RoleCoach,
	})
	require.NoError(t, err)
	assert.Empty(t, profiles.upserts)
}

func TestSignupDuplicateEmail(t *testing.T) {
	repo := newMockUserRepo()
	repo.addUser(&models.User{ID: "u1", Email: "taken@example.com", Active: true})
	svc := NewAuthService(repo, &mockProfileUpserter{}, nil, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Signup(context.Background(), models.SignupRequest{
		Email:    "taken@example.com",
		Password: "secret123",
		FullName: "Someone Else",
		Role:     models.RoleStudent,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestLoginAndValidateToken(t *testing.T) {
	repo := newMockUserRepo()
	repo.addUser(&models.User{
		ID:           "u1",
		Email:        "student@example.com",
		PasswordHash: hashPassword(t, "secret123"),
		FullName:     "Maya Patel",
		Role:         models.RoleStudent,
		Active:       true,
	})
	svc := NewAuthService(repo, &mockProfileUpserter{}, nil, validator.New(), zap.NewNop(), testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "student@example.com", Password: "secret123"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newMockUserRepo()
	repo.addUser(&models.User{
		ID:           "u1",
		Email:        "student@example.com",
		PasswordHash: hashPassword(t, "secret123"),
		Role:         models.RoleStudent,
		Active:       true,
	})
	svc := NewAuthService(repo, &mockProfileUpserter{}, nil, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "student@example.com", Password: "wrong-pass"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	repo := newMockUserRepo()
	repo.addUser(&models.User{
		ID:           "u1",
		Email:        "gone@example.com",
		PasswordHash: hashPassword(t, "secret123"),
		Role:         models.RoleStudent,
		Active:       false,
	})
	svc := NewAuthService(repo, &mockProfileUpserter{}, nil, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "gone@example.com", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestRefreshTokenRotates(t *testing.T) {
	repo := newMockUserRepo()
	repo.addUser(&models.User{
		ID:           "u1",
		Email:        "student@example.com",
		PasswordHash: hashPassword(t, "secret123"),
		Role:         models.RoleStudent,
		Active:       true,
	})
	svc := NewAuthService(repo, &mockProfileUpserter{}, nil, validator.New(), zap.NewNop(), testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "student@example.com", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The consumed token no longer works.
	assert.True(t, repo.tokens[login.RefreshToken].Revoked)
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestChangePasswordWrongOldPassword(t *testing.T) {
	repo := newMockUserRepo()
	repo.addUser(&models.User{
		ID:           "u1",
		Email:        "student@example.com",
		PasswordHash: hashPassword(t, "secret123"),
		Role:         models.RoleStudent,
		Active:       true,
	})
	svc := NewAuthService(repo, &mockProfileUpserter{}, nil, validator.New(), zap.NewNop(), testAuthConfig())

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		OldPassword: "nope",
		NewPassword: "newsecret",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
