package handler

import (
	"net/http"
	"time"

	"github.com/Baaaki/inkwell/internal/middleware"
	"github.com/Baaaki/inkwell/internal/service"
	"github.com/Baaaki/inkwell/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CookieSettings controls the session cookie
type CookieSettings struct {
	Name   string
	TTL    time.Duration
	Secure bool // HTTPS-only, set in production
}

type AuthHandler struct {
	authService *service.AuthService
	cookie      CookieSettings
}

func NewAuthHandler(authService *service.AuthService, cookie CookieSettings) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
	}
}

type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest accepts the username or the email in either field
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest

	// 1. Parse JSON request
	if !bindJSON(c, &req) {
		return
	}

	logger.Log.Info("User registration attempt",
		zap.String("username", req.Username),
		zap.String("email", req.Email),
		zap.String("ip", c.ClientIP()),
	)

	// 2. Call service
	user, token, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	// 3. Set session cookie
	h.setSessionCookie(c, token, int(h.cookie.TTL.Seconds()))

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest

	// 1. Parse JSON request
	if !bindJSON(c, &req) {
		return
	}

	login := req.Username
	if login == "" {
		login = req.Email
	}

	logger.Log.Info("User login attempt",
		zap.String("login", login),
		zap.String("ip", c.ClientIP()),
	)

	// 2. Call service
	user, token, err := h.authService.Login(c.Request.Context(), login, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	// 3. Set session cookie
	h.setSessionCookie(c, token, int(h.cookie.TTL.Seconds()))

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user,
	})
}

// Logout always succeeds from the client's point of view
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.cookie.Name); err == nil {
		if err := h.authService.Logout(c.Request.Context(), token); err != nil {
			respondError(c, err)
			return
		}
	}

	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	identity, err := h.authService.Me(middleware.CurrentIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, identity)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		h.cookie.Name,
		token,
		maxAge,
		"/",
		"", // current domain
		h.cookie.Secure,
		true, // httpOnly
	)
}
