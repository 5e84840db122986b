package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lockin-app/lockin-api/internal/models"
	"github.com/lockin-app/lockin-api/internal/service"
)

type fakeUserRepo struct {
	usersByEmail map[string]*models.User
	tokens       map[string]*models.RefreshToken
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		usersByEmail: make(map[string]*models.User),
		tokens:       make(map[string]*models.RefreshToken),
	}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "generated"
	}
	f.usersByEmail[user.Email] = user
	return nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.usersByEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	for _, user := range f.usersByEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, hash string, _ time.Time) error {
	for _, user := range f.usersByEmail {
		if user.ID == id {
			user.PasswordHash = hash
		}
	}
	return nil
}

func (f *fakeUserRepo) RevokeUserRefreshTokens(context.Context, string) error { return nil }

func (f *fakeUserRepo) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	f.tokens[token.Token] = token
	return nil
}

func (f *fakeUserRepo) FindRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := f.tokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (f *fakeUserRepo) RevokeRefreshToken(_ context.Context, id string, revokedAt time.Time) error {
	for _, token := range f.tokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func authHandlerFixture() (*AuthHandler, *fakeUserRepo) {
	repo := newFakeUserRepo()
	svc := service.NewAuthService(repo, nil, nil, service.AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: time.Hour * 24,
		Issuer:             "lockin-api",
	})
	return NewAuthHandler(svc), repo
}

func postJSON(rec *httptest.ResponseRecorder, target string, body interface{}) *gin.Context {
	c, _ := gin.CreateTestContext(rec)
	raw, _ := json.Marshal(body)
	c.Request = httptest.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestAuthHandlerRegister(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := authHandlerFixture()

	rec := httptest.NewRecorder()
	c := postJSON(rec, "/auth/register", map[string]string{
		"email":      "user@example.com",
		"password":   "password",
		"first_name": "Ada",
		"last_name":  "Lovelace",
	})

	handler.Register(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, repo.usersByEmail, "user@example.com")
}

func TestAuthHandlerRegisterInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := authHandlerFixture()

	rec := httptest.NewRecorder()
	c := postJSON(rec, "/auth/register", map[string]string{"email": "not-an-email"})

	handler.Register(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandlerLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := authHandlerFixture()

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo.usersByEmail["user@example.com"] = &models.User{ID: "u1", Email: "user@example.com", PasswordHash: string(hash)}

	rec := httptest.NewRecorder()
	c := postJSON(rec, "/auth/login", map[string]string{"email": "user@example.com", "password": "password"})

	handler.Login(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data["access_token"])
	assert.NotEmpty(t, envelope.Data["refresh_token"])
}

func TestAuthHandlerLoginWrongPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := authHandlerFixture()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo.usersByEmail["user@example.com"] = &models.User{ID: "u1", Email: "user@example.com", PasswordHash: string(hash)}

	rec := httptest.NewRecorder()
	c := postJSON(rec, "/auth/login", map[string]string{"email": "user@example.com", "password": "wrong"})

	handler.Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
