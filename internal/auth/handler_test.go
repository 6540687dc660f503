package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/emotisense/emotisense/backend/internal/errs"
	"github.com/emotisense/emotisense/backend/internal/models"
)

type fakeUserStore struct {
	byEmail map[string]*models.User
	nextID  int
	err     error // returned by every lookup when set
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: map[string]*models.User{}}
}

func (f *fakeUserStore) CreateUser(ctx context.Context, name, email, hashedPw string) (*models.User, error) {
	if _, ok := f.byEmail[email]; ok {
		return nil, errs.ErrDuplicateEmail
	}
	f.nextID++
	u := &models.User{ID: "user-" + strconv.Itoa(f.nextID), Name: name, Email: email, Password: hashedPw}
	f.byEmail[email] = u
	return u, nil
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errs.ErrNotFound
}

func newTestHandler(users UserStore) *Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(users, "test-secret", 7*24*time.Hour, log)
}

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestRegister_Success(t *testing.T) {
	h := newTestHandler(newFakeUserStore())

	rr := postJSON(t, h.Register, "/api/auth/register",
		`{"name":"Dana","email":"dana@example.com","password":"hunter22"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp models.RegisterResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.UserID)
	assert.Equal(t, "Dana", resp.Name)

	claims, err := ParseToken(resp.Token, []byte("test-secret"))
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, claims.UserID)
	assert.Equal(t, "dana@example.com", claims.Email)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	h := newTestHandler(store)

	body := `{"name":"Dana","email":"dana@example.com","password":"hunter22"}`
	rr := postJSON(t, h.Register, "/api/auth/register", body)
	require.Equal(t, http.StatusCreated, rr.Code)

	// both repeat attempts fail the same way, and no second user appears
	for i := 0; i < 2; i++ {
		rr = postJSON(t, h.Register, "/api/auth/register", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "email already exists")
	}
	assert.Len(t, store.byEmail, 1)
}

func TestRegister_MissingFields(t *testing.T) {
	h := newTestHandler(newFakeUserStore())

	rr := postJSON(t, h.Register, "/api/auth/register", `{"email":"dana@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLogin_Success(t *testing.T) {
	store := newFakeUserStore()
	hashed, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	store.byEmail["dana@example.com"] = &models.User{
		ID: "user-1", Name: "Dana", Email: "dana@example.com", Password: string(hashed),
	}
	h := newTestHandler(store)

	rr := postJSON(t, h.Login, "/api/auth/login",
		`{"email":"dana@example.com","password":"hunter22"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "user-1", resp.User.ID)
	assert.Equal(t, "dana@example.com", resp.User.Email)

	claims, err := ParseToken(resp.Token, []byte("test-secret"))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "Dana", claims.Name)
}

func TestLogin_SameMessageForUnknownEmailAndWrongPassword(t *testing.T) {
	store := newFakeUserStore()
	hashed, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	store.byEmail["dana@example.com"] = &models.User{
		ID: "user-1", Email: "dana@example.com", Password: string(hashed),
	}
	h := newTestHandler(store)

	wrongPw := postJSON(t, h.Login, "/api/auth/login",
		`{"email":"dana@example.com","password":"nope"}`)
	unknown := postJSON(t, h.Login, "/api/auth/login",
		`{"email":"nobody@example.com","password":"hunter22"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrongPw.Body.String(), unknown.Body.String())
}

func TestLogin_UnknownEmailDoesBcryptWork(t *testing.T) {
	// the hash compared for unknown emails must stay a parseable bcrypt
	// hash at a realistic cost, or the comparison becomes a cheap no-op
	cost, err := bcrypt.Cost(dummyHash)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cost, bcrypt.DefaultCost)
}

func TestLogin_StoreUnavailable(t *testing.T) {
	store := newFakeUserStore()
	store.err = errors.New("connection refused")
	h := newTestHandler(store)

	rr := postJSON(t, h.Login, "/api/auth/login",
		`{"email":"dana@example.com","password":"hunter22"}`)

	// a store outage is not a credentials problem
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "invalid credentials")
}

func TestMe(t *testing.T) {
	store := newFakeUserStore()
	store.byEmail["dana@example.com"] = &models.User{ID: "user-1", Name: "Dana", Email: "dana@example.com"}
	h := newTestHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = req.WithContext(context.WithValue(req.Context(), "user_id", "user-1"))
	rr := httptest.NewRecorder()
	h.Me(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var u models.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &u))
	assert.Equal(t, "Dana", u.Name)
}

func TestMe_StoreUnavailable(t *testing.T) {
	store := newFakeUserStore()
	store.err = errors.New("connection refused")
	h := newTestHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = req.WithContext(context.WithValue(req.Context(), "user_id", "user-1"))
	rr := httptest.NewRecorder()
	h.Me(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "user not found")
}

func TestMe_Unauthenticated(t *testing.T) {
	h := newTestHandler(newFakeUserStore())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rr := httptest.NewRecorder()
	h.Me(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
