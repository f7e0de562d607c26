package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hackreg/registration-api/internal/account"
	"github.com/hackreg/registration-api/internal/httputil"
	"github.com/hackreg/registration-api/internal/logging"
)

// Handler contains the HTTP handlers for the account endpoints
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest represents the password change request body
type ChangePasswordRequest struct {
	NewPassword string `json:"newpw"`
}

// ResetPasswordRequest represents the reset redemption request body
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// SessionResponse is returned by Register and Login. The token already
// carries the "Bearer " prefix; clients send it back verbatim.
type SessionResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// SuccessResponse is the bare success acknowledgment
type SuccessResponse struct {
	Success bool `json:"success"`
}

// AccountResponse is the authenticated "current user" payload
type AccountResponse struct {
	Email      string    `json:"email"`
	IsVerified bool      `json:"isVerified"`
	Role       string    `json:"role"`
	Date       time.Time `json:"date"`
}

// Register handles account registration
// @Summary      Register a new account
// @Description  Create an unverified account, send a verification email and return a session token.
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration credentials"
// @Success      200 {object} SessionResponse
// @Failure      400 {object} map[string]string "Email already exists"
// @Failure      500 {object} httputil.ErrorResponse "Internal or notifier error"
// @Router       /api/u/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	acct, token, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, account.ErrDuplicateEmail) {
			logger.Warn("registration failed: email already exists")
			respondJSON(w, map[string]string{"email": "Email already exists"}, http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrNotifierFailure) {
			// The account exists at this point; a retry will see
			// "Email already exists".
			logger.Error("registration failed: verification email not sent")
			respondError(w, "error", httputil.CodeNotifierFailure, http.StatusInternalServerError)
			return
		}
		logger.Error("registration failed: internal error", "error", err.Error())
		respondError(w, "failed to register", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("account registered", "account_id", acct.ID)

	respondJSON(w, SessionResponse{Success: true, Token: "Bearer " + token}, http.StatusOK)
}

// Login handles credential verification
// @Summary      Log in
// @Description  Verify credentials and return a session token. Unverified accounts may log in.
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} SessionResponse
// @Failure      400 {object} map[string]string "Password incorrect"
// @Failure      404 {object} map[string]string "User not found"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/u/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// Unknown email and wrong password are reported distinctly.
		if errors.Is(err, account.ErrNotFound) {
			logger.Warn("login failed: account not found")
			respondJSON(w, map[string]string{"email": "User not found"}, http.StatusNotFound)
			return
		}
		if errors.Is(err, ErrBadCredential) {
			logger.Warn("login failed: wrong password")
			respondJSON(w, map[string]string{"password": "Password incorrect"}, http.StatusBadRequest)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		respondError(w, "failed to login", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("account logged in")

	respondJSON(w, SessionResponse{Success: true, Token: "Bearer " + token}, http.StatusOK)
}

// Current returns the authenticated account
// @Summary      Current account
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} AccountResponse
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /api/u/ [get]
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	accountID, ok := GetAccountIDFromContext(r.Context())
	if !ok {
		respondError(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	acct, err := h.service.CurrentAccount(r.Context(), accountID)
	if err != nil {
		logger.Error("current account lookup failed", "error", err.Error())
		respondError(w, "failed to load account", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	respondJSON(w, AccountResponse{
		Email:      acct.Email,
		IsVerified: acct.Verified,
		Role:       acct.Role,
		Date:       acct.CreatedAt,
	}, http.StatusOK)
}

// Reverify resends the verification email
// @Summary      Resend verification email
// @Description  Resend the stored verification token to the authenticated account. Waits for the notifier.
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} SuccessResponse
// @Failure      400 {string} string "user already verified"
// @Failure      500 {string} string "error"
// @Router       /api/u/reverify [get]
func (h *Handler) Reverify(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	accountID, ok := GetAccountIDFromContext(r.Context())
	if !ok {
		respondError(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	if err := h.service.Reverify(r.Context(), accountID); err != nil {
		if errors.Is(err, ErrAlreadyVerified) {
			logger.Warn("reverify rejected: already verified")
			respondJSON(w, "user already verified", http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrNotifierFailure) {
			logger.Error("reverify failed: notifier error")
			respondJSON(w, "error", http.StatusInternalServerError)
			return
		}
		logger.Error("reverify failed: internal error", "error", err.Error())
		respondError(w, "failed to resend verification", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("verification email resent")

	respondJSON(w, SuccessResponse{Success: true}, http.StatusOK)
}

// VerifyEmail redeems a verification token
// @Summary      Verify email address
// @Description  Flip the account to verified and clear the token. Subscribes the registrant to the mailing list in the background.
// @Tags         account
// @Produce      json
// @Param        token path string true "Verification token"
// @Success      200 {object} SuccessResponse
// @Failure      400 {string} string "Invalid token"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/u/verify/{token} [get]
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	token := chi.URLParam(r, "token")

	if err := h.service.Verify(r.Context(), token); err != nil {
		if errors.Is(err, ErrInvalidToken) {
			logger.Warn("verification failed: invalid token")
			respondJSON(w, "Invalid token", http.StatusBadRequest)
			return
		}
		logger.Error("verification failed: internal error", "error", err.Error())
		respondError(w, "failed to verify email", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("email verified")

	respondJSON(w, SuccessResponse{Success: true}, http.StatusOK)
}

// ChangePassword replaces the password of the authenticated account
// @Summary      Change password
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ChangePasswordRequest true "New password"
// @Success      200 {object} account.Account
// @Failure      412 {object} map[string]string "Same password"
// @Failure      500 {object} map[string]string "Account not found"
// @Router       /api/u/changepw [post]
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	accountID, ok := GetAccountIDFromContext(r.Context())
	if !ok {
		respondError(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid change password request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	acct, err := h.service.ChangePassword(r.Context(), accountID, req.NewPassword)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			// A valid token whose subject vanished is a server-side
			// inconsistency, hence the 500.
			logger.Error("change password failed: account not found")
			respondJSON(w, map[string]string{"nouser": "user not found"}, http.StatusInternalServerError)
			return
		}
		if errors.Is(err, ErrSamePassword) {
			logger.Warn("change password rejected: same password")
			respondJSON(w, map[string]string{"samepassword": "The password needs to be different than your current"}, http.StatusPreconditionFailed)
			return
		}
		logger.Error("change password failed: internal error", "error", err.Error())
		respondError(w, "failed to change password", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("password changed")

	respondJSON(w, acct, http.StatusOK)
}

// ForgotPassword issues a password reset token
// @Summary      Request password reset
// @Description  Store a reset token and mail a reset link. The acknowledgment is identical whether or not the email is registered.
// @Tags         account
// @Produce      json
// @Param        email path string true "Account email"
// @Success      200 {string} string "email sent to <email>"
// @Failure      500 {string} string "error"
// @Router       /api/u/resetpw/{email} [get]
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	email := chi.URLParam(r, "email")

	if err := h.service.RequestPasswordReset(r.Context(), email); err != nil {
		if errors.Is(err, ErrNotifierFailure) {
			logger.Error("password reset request failed: notifier error")
			respondJSON(w, "error", http.StatusInternalServerError)
			return
		}
		logger.Error("password reset request failed: internal error", "error", err.Error())
		respondError(w, "failed to request password reset", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	// Same acknowledgment for known and unknown emails.
	respondJSON(w, "email sent to "+email, http.StatusOK)
}

// ResetPassword redeems a reset token
// @Summary      Reset password
// @Description  Replace the password of the account holding the reset token.
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        token path string true "Reset token"
// @Param        request body ResetPasswordRequest true "New password"
// @Success      200 {object} SuccessResponse
// @Failure      404 {object} map[string]string "Token not valid"
// @Router       /api/u/resetpw/{token} [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	token := chi.URLParam(r, "token")

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid reset password request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if err := h.service.RedeemPasswordReset(r.Context(), token, req.Password); err != nil {
		// Every failure here, internal errors included, surfaces as a
		// 404 with the error text.
		switch {
		case errors.Is(err, ErrInvalidToken):
			logger.Warn("password reset failed: invalid token")
			respondJSON(w, map[string]string{"error": "Token is not valid"}, http.StatusNotFound)
		case errors.Is(err, ErrSamePassword):
			logger.Warn("password reset rejected: same password")
			respondJSON(w, map[string]string{"error": "The password needs to be different than your current"}, http.StatusNotFound)
		default:
			logger.Error("password reset failed: internal error", "error", err.Error())
			respondJSON(w, map[string]string{"error": err.Error()}, http.StatusNotFound)
		}
		return
	}

	logger.Info("password reset")

	respondJSON(w, SuccessResponse{Success: true}, http.StatusOK)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, data any, statusCode int) {
	httputil.RespondJSON(w, data, statusCode)
}

// respondError sends an error response with a machine-readable code
func respondError(w http.ResponseWriter, message string, code string, statusCode int) {
	httputil.RespondErrorWithCode(w, message, code, statusCode)
}
