// internal/app/features/login/login.go
package login

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The human-readable string users type to log in

import (
	"fmt"
	"net/http"
	"time"

	errorsfeature "github.com/Anaastro/landing-demo/internal/app/features/errors"
	"github.com/Anaastro/landing-demo/internal/app/store/passwordreset"
	"github.com/Anaastro/landing-demo/internal/app/store/ratelimit"
	"github.com/Anaastro/landing-demo/internal/app/store/sessions"
	userstore "github.com/Anaastro/landing-demo/internal/app/store/users"
	"github.com/Anaastro/landing-demo/internal/app/system/auditlog"
	"github.com/Anaastro/landing-demo/internal/app/system/auth"
	"github.com/Anaastro/landing-demo/internal/app/system/authutil"
	"github.com/Anaastro/landing-demo/internal/app/system/mailer"
	"github.com/Anaastro/landing-demo/internal/app/system/network"
	"github.com/Anaastro/landing-demo/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler provides login handlers.
type Handler struct {
	userStore          *userstore.Store
	passwordResetStore *passwordreset.Store
	sessionsStore      *sessions.Store
	rateLimitStore     *ratelimit.Store // nil if rate limiting disabled
	sessionMgr         *auth.SessionManager
	errLog             *errorsfeature.ErrorLogger
	mailer             *mailer.Mailer
	auditLogger        *auditlog.Logger
	baseURL            string
	resetExpiry        time.Duration
	logger             *zap.Logger
}

// NewHandler creates a new login Handler.
// rateLimitStore can be nil to disable rate limiting.
func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	errLog *errorsfeature.ErrorLogger,
	m *mailer.Mailer,
	auditLogger *auditlog.Logger,
	sessionsStore *sessions.Store,
	rateLimitStore *ratelimit.Store,
	baseURL string,
	resetExpiry time.Duration,
	logger *zap.Logger,
) *Handler {
	if resetExpiry == 0 {
		resetExpiry = 10 * time.Minute
	}

	return &Handler{
		userStore:          userstore.New(db),
		passwordResetStore: passwordreset.New(db, resetExpiry),
		sessionsStore:      sessionsStore,
		rateLimitStore:     rateLimitStore,
		sessionMgr:         sessionMgr,
		errLog:             errLog,
		mailer:             m,
		auditLogger:        auditLogger,
		baseURL:            baseURL,
		resetExpiry:        resetExpiry,
		logger:             logger,
	}
}

// LoginVM is the view model for the login page.
type LoginVM struct {
	viewdata.BaseVM
	Error     string
	LoginID   string
	ReturnURL string
}

// Routes returns a chi.Router with login routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.showLogin)
	r.Post("/", h.handleLogin)

	// Password auth
	r.Get("/password", h.showPasswordLogin)
	r.Post("/password", h.handlePasswordLogin)

	// Password reset
	r.Get("/forgot-password", h.showForgotPassword)
	r.Post("/forgot-password", h.handleForgotPassword)
	r.Get("/reset-password", h.showResetPassword)
	r.Post("/reset-password", h.handleResetPassword)

	return r
}

// showLogin displays the login page with login_id field.
func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	// Map error codes to user-friendly messages
	errorCode := r.URL.Query().Get("error")
	errorMsg := ""
	switch errorCode {
	case "invalid_token":
		errorMsg = "Enlace inválido o vencido. Inténtalo de nuevo."
	case "account_disabled":
		errorMsg = "La cuenta está deshabilitada."
	case "service_unavailable":
		errorMsg = "Servicio no disponible. Inténtalo de nuevo."
	case "":
		// No error
	default:
		// Show the error code as-is for unknown codes
		errorMsg = errorCode
	}

	vm := LoginVM{
		BaseVM:    viewdata.New(r),
		ReturnURL: query.Get(r, "return"),
		Error:     errorMsg,
	}
	vm.Title = "Iniciar sesión"

	templates.Render(w, r, "login/index", vm)
}

// handleLogin looks up the user by login_id and redirects to the appropriate auth method.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	loginID := r.FormValue("login_id")
	returnURL := r.FormValue("return")

	renderError := func(msg string) {
		vm := LoginVM{
			BaseVM:    viewdata.New(r),
			Error:     msg,
			LoginID:   loginID,
			ReturnURL: returnURL,
		}
		vm.Title = "Iniciar sesión"
		templates.Render(w, r, "login/index", vm)
	}

	if loginID == "" {
		renderError("Ingresa tu usuario")
		return
	}

	// Look up user by login_id
	user, err := h.userStore.GetByLoginID(r.Context(), loginID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.auditLogger.LoginFailedUserNotFound(r.Context(), r, loginID)
			renderError("Usuario no encontrado")
			return
		}
		// Database error (timeout, connection failure, etc.)
		h.errLog.Log(r, "database error during login lookup", err)
		renderError("Servicio no disponible. Inténtalo de nuevo.")
		return
	}

	if user.Status != "active" {
		h.auditLogger.LoginFailedUserDisabled(r.Context(), r, user.ID, loginID)
		renderError("La cuenta está deshabilitada")
		return
	}

	// Redirect based on user's auth method
	returnParam := ""
	if returnURL != "" {
		returnParam = "?return=" + returnURL
	}

	switch user.AuthMethod {
	case "google":
		http.Redirect(w, r, "/auth/google"+returnParam, http.StatusSeeOther)
	default:
		// Password is the default auth method
		http.Redirect(w, r, "/login/password?login_id="+loginID+returnParam, http.StatusSeeOther)
	}
}

// PasswordLoginVM is the view model for password login.
type PasswordLoginVM struct {
	viewdata.BaseVM
	Error     string
	LoginID   string
	ReturnURL string
}

// showPasswordLogin displays the password login form.
func (h *Handler) showPasswordLogin(w http.ResponseWriter, r *http.Request) {
	vm := PasswordLoginVM{
		BaseVM:    viewdata.New(r),
		LoginID:   r.URL.Query().Get("login_id"),
		ReturnURL: query.Get(r, "return"),
	}
	vm.Title = "Contraseña"

	templates.Render(w, r, "login/password", vm)
}

// handlePasswordLogin processes password login.
func (h *Handler) handlePasswordLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	loginID := r.FormValue("login_id")
	password := r.FormValue("password")
	returnURL := r.FormValue("return")

	renderError := func(msg string) {
		vm := PasswordLoginVM{
			BaseVM:    viewdata.New(r),
			Error:     msg,
			LoginID:   loginID,
			ReturnURL: returnURL,
		}
		templates.Render(w, r, "login/password", vm)
	}

	// Check rate limit before processing
	if h.rateLimitStore != nil {
		allowed, _, lockedUntil := h.rateLimitStore.CheckAllowed(r.Context(), loginID)
		if !allowed {
			h.auditLogger.LogAuthEvent(r, nil, "login_rate_limited", false, "rate limit exceeded for "+loginID)
			renderError(lockoutMessage(lockedUntil))
			return
		}
	}

	user, err := h.userStore.GetByLoginID(r.Context(), loginID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// Record failure for rate limiting (even though user doesn't exist)
			if h.rateLimitStore != nil {
				h.rateLimitStore.RecordFailure(r.Context(), loginID)
			}
			h.auditLogger.LoginFailedUserNotFound(r.Context(), r, loginID)
			renderError("Credenciales inválidas")
			return
		}
		h.errLog.Log(r, "database error during password login lookup", err)
		renderError("Servicio no disponible. Inténtalo de nuevo.")
		return
	}

	if user.Status != "active" {
		if h.rateLimitStore != nil {
			h.rateLimitStore.RecordFailure(r.Context(), loginID)
		}
		h.auditLogger.LoginFailedUserDisabled(r.Context(), r, user.ID, loginID)
		renderError("La cuenta está deshabilitada")
		return
	}

	if user.PasswordHash == nil || !authutil.CheckPassword(password, *user.PasswordHash) {
		if h.rateLimitStore != nil {
			lockedOut, lockedUntil := h.rateLimitStore.RecordFailure(r.Context(), loginID)
			if lockedOut {
				h.auditLogger.LogAuthEvent(r, &user.ID, "login_locked_out", false, "too many failed attempts")
				renderError(lockoutMessage(lockedUntil))
				return
			}
		}
		h.auditLogger.LoginFailedWrongPassword(r.Context(), r, user.ID, loginID)
		renderError("Credenciales inválidas")
		return
	}

	// Clear rate limit on successful login
	if h.rateLimitStore != nil {
		h.rateLimitStore.ClearOnSuccess(r.Context(), loginID)
	}

	// Create session
	if err := h.createTrackedSession(w, r, user.ID, user.Role); err != nil {
		h.errLog.Log(r, "failed to create session", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.auditLogger.LoginSuccess(r.Context(), r, user.ID, "password", loginID)

	http.Redirect(w, r, urlutil.SafeReturn(returnURL, "", "/admin"), http.StatusSeeOther)
}

// lockoutMessage builds the error shown when login attempts are rate limited.
func lockoutMessage(lockedUntil *time.Time) string {
	if lockedUntil == nil {
		return "Demasiados intentos fallidos. Inténtalo más tarde."
	}
	remaining := time.Until(*lockedUntil)
	if remaining > time.Minute {
		return fmt.Sprintf("Demasiados intentos fallidos. Inténtalo en %d minuto(s).", int(remaining.Minutes())+1)
	}
	return fmt.Sprintf("Demasiados intentos fallidos. Inténtalo en %d segundo(s).", int(remaining.Seconds())+1)
}

// ForgotPasswordVM is the view model for forgot password.
type ForgotPasswordVM struct {
	viewdata.BaseVM
	Error   string
	Success string
	LoginID string
}

// showForgotPassword displays the forgot password form.
func (h *Handler) showForgotPassword(w http.ResponseWriter, r *http.Request) {
	vm := ForgotPasswordVM{
		BaseVM: viewdata.New(r),
	}
	vm.Title = "Recuperar contraseña"

	templates.Render(w, r, "login/forgot_password", vm)
}

// handleForgotPassword sends a password reset email.
func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	loginID := r.FormValue("login_id")

	// Success message shown when we send a reset link
	successVM := ForgotPasswordVM{
		BaseVM:  viewdata.New(r),
		Success: "Si tu cuenta tiene un correo registrado, recibirás un enlace para restablecer la contraseña.",
	}
	successVM.Title = "Recuperar contraseña"

	if loginID == "" {
		vm := ForgotPasswordVM{
			BaseVM: viewdata.New(r),
			Error:  "Ingresa tu usuario",
		}
		vm.Title = "Recuperar contraseña"
		templates.Render(w, r, "login/forgot_password", vm)
		return
	}

	user, err := h.userStore.GetByLoginID(r.Context(), loginID)
	if err != nil {
		// User not found - still show success to avoid enumeration
		h.auditLogger.LogAuthEvent(r, nil, "password_reset_requested", true, "user not found")
		templates.Render(w, r, "login/forgot_password", successVM)
		return
	}

	if user.Status != "active" {
		h.auditLogger.LogAuthEvent(r, &user.ID, "password_reset_requested", false, "user disabled")
		templates.Render(w, r, "login/forgot_password", successVM)
		return
	}

	// Only allow password reset for password auth users
	if user.AuthMethod != "password" && user.AuthMethod != "" {
		h.auditLogger.LogAuthEvent(r, &user.ID, "password_reset_requested", false, "not password auth")
		templates.Render(w, r, "login/forgot_password", successVM)
		return
	}

	// Check if user has an email address
	if user.Email == nil || *user.Email == "" {
		h.auditLogger.LogAuthEvent(r, &user.ID, "password_reset_requested", false, "no email address")
		vm := ForgotPasswordVM{
			BaseVM:  viewdata.New(r),
			LoginID: loginID,
			Error:   "Tu cuenta no tiene un correo registrado. Contacta a un administrador para restablecer tu contraseña.",
		}
		vm.Title = "Recuperar contraseña"
		templates.Render(w, r, "login/forgot_password", vm)
		return
	}

	// Create password reset token
	reset, err := h.passwordResetStore.Create(r.Context(), user.ID, *user.Email)
	if err != nil {
		h.errLog.Log(r, "failed to create password reset", err)
		templates.Render(w, r, "login/forgot_password", successVM)
		return
	}

	// Send email with reset link
	if h.mailer != nil {
		resetURL := h.baseURL + "/login/reset-password?token=" + reset.Token
		expiryMin := int(h.resetExpiry.Minutes())
		if expiryMin < 1 {
			expiryMin = 10
		}
		textBody, htmlBody := mailer.PasswordResetEmail(mailer.PasswordResetEmailData{
			AppName:   h.mailer.FromName(),
			ResetURL:  resetURL,
			ExpiryMin: expiryMin,
		})
		err = h.mailer.Send(mailer.Email{
			To:       *user.Email,
			Subject:  "Restablecimiento de contraseña",
			TextBody: textBody,
			HTMLBody: htmlBody,
		})
		if err != nil {
			h.errLog.Log(r, "failed to send password reset email", err)
		}
	}

	h.auditLogger.LogAuthEvent(r, &user.ID, "password_reset_requested", true, "")

	templates.Render(w, r, "login/forgot_password", successVM)
}

// ResetPasswordVM is the view model for reset password.
type ResetPasswordVM struct {
	viewdata.BaseVM
	Error   string
	Success string
	Token   string
}

// showResetPassword displays the reset password form.
func (h *Handler) showResetPassword(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	// Verify token is valid before showing form
	_, err := h.passwordResetStore.VerifyToken(r.Context(), token)
	if err != nil {
		vm := ResetPasswordVM{
			BaseVM: viewdata.New(r),
			Error:  "Enlace de restablecimiento inválido o vencido. Solicita uno nuevo.",
		}
		vm.Title = "Restablecer contraseña"
		templates.Render(w, r, "login/reset_password", vm)
		return
	}

	vm := ResetPasswordVM{
		BaseVM: viewdata.New(r),
		Token:  token,
	}
	vm.Title = "Restablecer contraseña"

	templates.Render(w, r, "login/reset_password", vm)
}

// handleResetPassword processes the password reset.
func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	token := r.FormValue("token")
	password := r.FormValue("password")
	confirmPassword := r.FormValue("confirm_password")

	renderError := func(tok, msg string) {
		vm := ResetPasswordVM{
			BaseVM: viewdata.New(r),
			Token:  tok,
			Error:  msg,
		}
		vm.Title = "Restablecer contraseña"
		templates.Render(w, r, "login/reset_password", vm)
	}

	// Verify token
	reset, err := h.passwordResetStore.VerifyToken(r.Context(), token)
	if err != nil {
		h.auditLogger.LogAuthEvent(r, nil, "password_reset_failed", false, "invalid token")
		renderError("", "Enlace de restablecimiento inválido o vencido. Solicita uno nuevo.")
		return
	}

	// Validate passwords
	if password == "" {
		renderError(token, "La contraseña es obligatoria")
		return
	}
	if len(password) < 8 {
		renderError(token, "La contraseña debe tener al menos 8 caracteres")
		return
	}
	if password != confirmPassword {
		renderError(token, "Las contraseñas no coinciden")
		return
	}

	// Hash new password
	hash, err := authutil.HashPassword(password)
	if err != nil {
		h.errLog.Log(r, "failed to hash password", err)
		renderError(token, "No se pudo restablecer la contraseña. Inténtalo de nuevo.")
		return
	}

	// Update user password
	if err := h.userStore.UpdatePassword(r.Context(), reset.UserID, hash); err != nil {
		h.errLog.Log(r, "failed to update password", err)
		renderError(token, "No se pudo restablecer la contraseña. Inténtalo de nuevo.")
		return
	}

	// Mark reset token as used
	h.passwordResetStore.MarkUsed(r.Context(), reset.ID)

	h.auditLogger.LogAuthEvent(r, &reset.UserID, "password_reset_completed", true, "")

	// Send password changed confirmation email
	if h.mailer != nil {
		loginURL := h.baseURL + "/login"
		textBody, htmlBody := mailer.PasswordChangedEmail(mailer.PasswordChangedEmailData{
			AppName:  h.mailer.FromName(),
			LoginURL: loginURL,
		})
		err = h.mailer.Send(mailer.Email{
			To:       reset.Email,
			Subject:  "Tu contraseña ha sido cambiada",
			TextBody: textBody,
			HTMLBody: htmlBody,
		})
		if err != nil {
			h.errLog.Log(r, "failed to send password changed confirmation email", err)
		}
	}

	// Show success and redirect to login
	vm := ResetPasswordVM{
		BaseVM:  viewdata.New(r),
		Success: "Tu contraseña ha sido restablecida. Ya puedes iniciar sesión con la nueva contraseña.",
	}
	vm.Title = "Restablecer contraseña"
	templates.Render(w, r, "login/reset_password", vm)
}

// createTrackedSession creates a session in both the cookie and MongoDB for tracking.
func (h *Handler) createTrackedSession(w http.ResponseWriter, r *http.Request, userID primitive.ObjectID, role string) error {
	// Generate token first so we can use it for both cookie and MongoDB tracking
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return err
	}

	// Create the cookie session with the generated token
	if err := h.sessionMgr.CreateSession(w, r, userID, role, token); err != nil {
		return err
	}

	// Store session in MongoDB for tracking
	now := time.Now()
	session := sessions.Session{
		Token:        token,
		UserID:       userID,
		IPAddress:    network.GetClientIP(r),
		UserAgent:    r.UserAgent(),
		LoginAt:      now,
		LastActivity: now,
		ExpiresAt:    now.Add(24 * 30 * time.Hour), // 30 days
	}

	// Best effort - don't fail login if tracking fails
	if err := h.sessionsStore.Create(r.Context(), session); err != nil {
		h.logger.Warn("failed to track session", zap.Error(err))
	}

	return nil
}
