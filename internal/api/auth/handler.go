package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"kidcanvas/config"
	"kidcanvas/internal/api/respond"
	"kidcanvas/internal/app/http/middleware"
	"kidcanvas/internal/authn"
	"kidcanvas/internal/domain/users"
	"kidcanvas/internal/infra/mailer"
	"kidcanvas/pkg/logger"
	"kidcanvas/pkg/securetoken"
)

const resetTokenTTL = time.Hour

type (
	Mailer interface {
		Send(to, subject, body string) error
	}

	TaskRunner interface {
		Submit(name string, fn func(ctx context.Context) error) bool
	}
)

type Handler struct {
	db     *gorm.DB
	tokens *authn.Tokens
	auth   config.Auth
	google config.Google
	web    config.HTTP
	mailer Mailer
	tasks  TaskRunner
	logger logger.Interface
}

func New(db *gorm.DB, tokens *authn.Tokens, cfg *config.Config, m Mailer, tasks TaskRunner, l logger.Interface) *Handler {
	return &Handler{
		db:     db,
		tokens: tokens,
		auth:   cfg.Auth,
		google: cfg.Google,
		web:    cfg.HTTP,
		mailer: m,
		tasks:  tasks,
		logger: l,
	}
}

func isPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter := false
	hasDigit := false
	for _, c := range password {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
			hasLetter = true
		case '0' <= c && c <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

func isEmailValid(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@"):], ".")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (h *Handler) sendLater(name, to, subject, body string) {
	ok := h.tasks.Submit(name, func(context.Context) error {
		return h.mailer.Send(to, subject, body)
	})
	if !ok {
		h.logger.Warn("AuthHandler - email %s to %s dropped", name, to)
	}
}

// setSession issues the web session cookie and returns a bearer token for
// API clients.
func (h *Handler) setSession(c *gin.Context, u users.User) (string, bool) {
	session, err := h.tokens.Issue(u, authn.KindSession)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create session"})
		return "", false
	}
	token, err := h.tokens.Issue(u, authn.KindAccess)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return "", false
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.auth.CookieName, session, int(h.auth.SessionTTL.Seconds()), "/", "", h.auth.CookieSecure, true)
	return token, true
}

func (h *Handler) newToken(userID, kind string, ttl time.Duration) (*users.VerificationToken, error) {
	raw, err := securetoken.New(16)
	if err != nil {
		return nil, err
	}
	t := &users.VerificationToken{UserID: userID, Token: raw, Type: kind}
	if ttl > 0 {
		t.ExpiresAt = time.Now().Add(ttl)
	}
	return t, nil
}

func (h *Handler) verifyLink(token string) string {
	return fmt.Sprintf("%s/verify?token=%s", strings.TrimRight(h.web.APIURL, "/"), token)
}

// POST /register
func (h *Handler) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := normalizeEmail(input.Email)
	if !isEmailValid(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
		return
	}
	if !isPasswordStrong(input.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters long and contain both letters and numbers"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}
	hashed := string(hashedPassword)

	now := time.Now()
	trialEnd := now.AddDate(0, 0, h.auth.TrialDays)

	user := users.User{
		Name:         input.Name,
		Email:        email,
		Password:     &hashed,
		AuthProvider: users.ProviderLocal,
		Role:         users.RoleUser,
		TrialStartAt: &now,
		TrialEndAt:   &trialEnd,
	}

	var verif *users.VerificationToken
	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		t, err := h.newToken(user.ID, users.TokenEmailVerification, 0)
		if err != nil {
			return err
		}
		verif = t
		return tx.Create(verif).Error
	})
	if err != nil {
		h.logger.Error(err, "AuthHandler - Register - email=%s", email)
		c.JSON(http.StatusConflict, gin.H{"error": "Email may already exist"})
		return
	}

	subject, body := mailer.VerificationEmail(h.verifyLink(verif.Token))
	h.sendLater("email:verify:"+user.ID, user.Email, subject, body)

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully. Please check your email to verify your account."})
}

// GET /verify?token=
func (h *Handler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing token"})
		return
	}

	var t users.VerificationToken
	if err := h.db.WithContext(c.Request.Context()).
		Where("token = ? AND type = ?", token, users.TokenEmailVerification).
		First(&t).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
		return
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&users.User{}).Where("id = ?", t.UserID).Update("is_verified", true).Error; err != nil {
			return err
		}
		return tx.Delete(&t).Error
	})
	if err != nil {
		respond.DB(c, h.logger, "Failed to verify user", err)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, strings.TrimRight(h.web.AppURL, "/")+"/signin?verified=1")
}

// POST /login returns a bearer token and sets the session cookie.
func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user users.User
	err := h.db.WithContext(c.Request.Context()).Where("email = ?", normalizeEmail(input.Email)).First(&user).Error
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if user.Password == nil || *user.Password == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "This account uses Google sign-in"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if !user.IsVerified {
		c.JSON(http.StatusForbidden, gin.H{"error": "Please verify your email before logging in"})
		return
	}

	token, ok := h.setSession(c, user)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// POST /logout
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.auth.CookieName, "", -1, "/", "", h.auth.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// POST /resend-verification
func (h *Handler) ResendVerification(c *gin.Context) {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid email"})
		return
	}

	var user users.User
	if err := h.db.WithContext(c.Request.Context()).Where("email = ?", normalizeEmail(body.Email)).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if user.IsVerified {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User already verified"})
		return
	}

	t, err := h.newToken(user.ID, users.TokenEmailVerification, 0)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND type = ?", user.ID, users.TokenEmailVerification).Delete(&users.VerificationToken{}).Error; err != nil {
			return err
		}
		return tx.Create(t).Error
	})
	if err != nil {
		respond.DB(c, h.logger, "Failed to store verification token", err)
		return
	}

	subject, text := mailer.VerificationEmail(h.verifyLink(t.Token))
	h.sendLater("email:verify:"+user.ID, user.Email, subject, text)

	c.JSON(http.StatusOK, gin.H{"message": "Verification email resent"})
}

// POST /request-password-reset never reveals whether the email exists.
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email"})
		return
	}

	const reply = "If your email exists, you'll receive a reset link."

	var user users.User
	if err := h.db.WithContext(c.Request.Context()).Where("email = ?", normalizeEmail(body.Email)).First(&user).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"message": reply})
		return
	}

	t, err := h.newToken(user.ID, users.TokenPasswordReset, resetTokenTTL)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND type = ?", user.ID, users.TokenPasswordReset).Delete(&users.VerificationToken{}).Error; err != nil {
			return err
		}
		return tx.Create(t).Error
	})
	if err != nil {
		h.logger.Error(err, "AuthHandler - RequestPasswordReset - user=%s", user.ID)
		c.JSON(http.StatusOK, gin.H{"message": reply})
		return
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(h.web.AppURL, "/"), t.Token)
	subject, text := mailer.PasswordResetEmail(link)
	h.sendLater("email:reset:"+user.ID, user.Email, subject, text)

	c.JSON(http.StatusOK, gin.H{"message": reply})
}

// POST /reset-password
func (h *Handler) ResetPassword(c *gin.Context) {
	var body struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if !isPasswordStrong(body.NewPassword) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters with letters and numbers"})
		return
	}

	var reset users.VerificationToken
	err := h.db.WithContext(c.Request.Context()).
		Where("token = ? AND type = ?", body.Token, users.TokenPasswordReset).
		First(&reset).Error
	if err != nil || reset.Expired(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&users.User{}).Where("id = ?", reset.UserID).Update("password", string(hashed)).Error; err != nil {
			return err
		}
		return tx.Delete(&reset).Error
	})
	if err != nil {
		respond.DB(c, h.logger, "Failed to reset password", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

// POST /change-password
func (h *Handler) ChangePassword(c *gin.Context) {
	userID := middleware.UserID(c)

	var body struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if !isPasswordStrong(body.NewPassword) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "New password must be at least 8 characters with letters and numbers"})
		return
	}

	var user users.User
	if err := h.db.WithContext(c.Request.Context()).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		respond.DB(c, h.logger, "Failed to load user", err)
		return
	}

	if user.Password == nil || *user.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "This account does not have a password. Sign in with Google or set a password first.",
		})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(body.OldPassword)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Old password is incorrect"})
		return
	}

	hashedNew, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Model(&user).Update("password", string(hashedNew)).Error; err != nil {
		respond.DB(c, h.logger, "Failed to change password", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
