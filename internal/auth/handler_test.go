package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackreg/registration-api/internal/logging"
)

func newTestRouter(t *testing.T) (*chi.Mux, *serviceFixture) {
	t.Helper()

	f := newServiceFixture(t)
	h := NewHandler(f.service, logging.NewLogger(true))
	m := NewMiddleware(f.tokens, f.store)

	r := chi.NewRouter()
	r.Route("/api/u", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Get("/verify/{token}", h.VerifyEmail)
		r.Get("/resetpw/{email}", h.ForgotPassword)
		r.Post("/resetpw/{token}", h.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(m.RequireAuth)
			r.Get("/", h.Current)
			r.Get("/reverify", h.Reverify)
			r.Post("/changepw", h.ChangePassword)
		})
	})
	return r, f
}

func doJSON(t *testing.T, router http.Handler, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterEndpoint_PayloadShape(t *testing.T) {
	t.Parallel()
	router, f := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/u/register", `{"email":"a@x.com","password":"Secret123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, strings.HasPrefix(resp.Token, "Bearer "), "token %q must carry the Bearer prefix", resp.Token)

	acct, err := f.store.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.False(t, acct.Verified)
	assert.NotEmpty(t, acct.VerificationToken)
}

func TestRegisterEndpoint_DuplicateEmail(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/u/register", `{"email":"a@x.com","password":"Secret123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/u/register", `{"email":"a@x.com","password":"Secret123"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"email":"Email already exists"}`, rec.Body.String())
}

func TestLoginEndpoint_DistinctFailureShapes(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/u/register", `{"email":"a@x.com","password":"Secret123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/u/login", `{"email":"nobody@x.com","password":"Secret123"}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"email":"User not found"}`, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/u/login", `{"email":"a@x.com","password":"Wrong"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"password":"Password incorrect"}`, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/u/login", `{"email":"a@x.com","password":"Secret123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestVerifyEndpoint(t *testing.T) {
	t.Parallel()
	router, f := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/u/register", `{"email":"a@x.com","password":"Secret123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	acct, err := f.store.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)

	rec = doJSON(t, router, http.MethodGet, "/api/u/verify/definitely-wrong", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `"Invalid token"`, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/u/verify/"+acct.VerificationToken, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	verified, err := f.store.FindByID(context.Background(), acct.ID)
	require.NoError(t, err)
	assert.True(t, verified.Verified)
	assert.Empty(t, verified.VerificationToken)

	// The cleared token stops working.
	rec = doJSON(t, router, http.MethodGet, "/api/u/verify/"+acct.VerificationToken, "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForgotPasswordEndpoint_NoEnumeration(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/u/register", `{"email":"a@x.com","password":"Secret123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	known := doJSON(t, router, http.MethodGet, "/api/u/resetpw/a@x.com", "", "")
	unknown := doJSON(t, router, http.MethodGet, "/api/u/resetpw/nobody@x.com", "", "")

	// Identical status and identical body shape for both.
	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.JSONEq(t, `"email sent to a@x.com"`, known.Body.String())
	assert.JSONEq(t, `"email sent to nobody@x.com"`, unknown.Body.String())
}

func TestResetPasswordEndpoint(t *testing.T) {
	t.Parallel()
	router, f := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/u/register", `{"email":"a@x.com","password":"Secret123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, router, http.MethodGet, "/api/u/resetpw/a@x.com", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	acct, err := f.store.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, acct.PasswordResetToken)

	rec = doJSON(t, router, http.MethodPost, "/api/u/resetpw/bogus-token", `{"password":"NewSecret456"}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Token is not valid"}`, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/u/resetpw/"+acct.PasswordResetToken, `{"password":"NewSecret456"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	// Old credential dead, new credential live.
	rec = doJSON(t, router, http.MethodPost, "/api/u/login", `{"email":"a@x.com","password":"Secret123"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/u/login", `{"email":"a@x.com","password":"NewSecret456"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCurrentEndpoint(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/u/", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/u/register", `{"email":"a@x.com","password":"Secret123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = doJSON(t, router, http.MethodGet, "/api/u/", "", resp.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	var current AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &current))
	assert.Equal(t, "a@x.com", current.Email)
	assert.False(t, current.IsVerified)
	assert.Equal(t, "hacker", current.Role)
}

func TestReverifyEndpoint(t *testing.T) {
	t.Parallel()
	router, f := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/u/register", `{"email":"a@x.com","password":"Secret123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = doJSON(t, router, http.MethodGet, "/api/u/reverify", "", resp.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	acct, err := f.store.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.NoError(t, f.service.Verify(context.Background(), acct.VerificationToken))

	rec = doJSON(t, router, http.MethodGet, "/api/u/reverify", "", resp.Token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `"user already verified"`, rec.Body.String())
}

func TestChangePasswordEndpoint(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/u/changepw", `{"newpw":"NewSecret456"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/u/register", `{"email":"a@x.com","password":"Secret123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = doJSON(t, router, http.MethodPost, "/api/u/changepw", `{"newpw":"NewSecret456"}`, resp.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/u/login", `{"email":"a@x.com","password":"NewSecret456"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
