package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"evidence-backend/internal/middleware"
	"evidence-backend/internal/service"
	"evidence-backend/pkg/response"
)

type AuthHandler struct {
	authService service.AuthService
	db          *gorm.DB
}

// NewAuthHandler sets up the routing dependencies for authentication endpoints
func NewAuthHandler(authService service.AuthService, db *gorm.DB) *AuthHandler {
	return &AuthHandler{authService: authService, db: db}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Public routes
	router.POST("/login", h.Login)
	router.POST("/refresh", h.RefreshToken)
	router.POST("/biometric-auth", h.BiometricAuth)
	router.GET("/get-csrf-token", h.GetCSRFToken)
	router.GET("/check-auth", h.CheckAuth)

	// Authenticated routes
	auth := router.Group("", middleware.CSRFProtect(), middleware.Authenticate(h.db))
	{
		auth.POST("/logout", h.Logout)
		auth.GET("/current-user", h.CurrentUser)
	}
}

// Login handles POST /login to authenticate and establish a session
// @Summary      Login user
// @Description  Authenticates a user by username and password, setting token cookies
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Login Credentials"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	_, tokenRes, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid credentials"})
		return
	}

	// Set tokens as HttpOnly cookies
	middleware.SetTokenCookies(c, tokenRes.Token, tokenRes.RefreshToken)

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tokenRes))
}

// RefreshToken handles POST /refresh to issue new access and refresh tokens
// @Summary      Refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RefreshTokenRequest  true  "Refresh Token"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      401      {object}  response.Response
// @Router       /refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	// Try reading refresh_token from cookie first, fallback to body
	refreshToken, cookieErr := c.Cookie("refresh_token")
	var req service.RefreshTokenRequest

	if cookieErr != nil || refreshToken == "" {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
			return
		}
	} else {
		req = service.RefreshTokenRequest{RefreshToken: refreshToken}
	}

	tokenRes, err := h.authService.RefreshToken(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid refresh token"))
		return
	}

	middleware.SetTokenCookies(c, tokenRes.Token, tokenRes.RefreshToken)

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tokenRes))
}

// Logout handles POST /logout to close the caller's session
// @Summary      Logout user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Router       /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	actor := middleware.Actor(c)
	refreshToken, _ := c.Cookie("refresh_token")

	if err := h.authService.Logout(c.Request.Context(), actor, refreshToken); err != nil {
		respondError(c, err)
		return
	}

	middleware.ClearTokenCookies(c)
	c.JSON(http.StatusOK, gin.H{"detail": "Logout successful"})
}

// CheckAuth handles GET /check-auth to report whether the caller is authenticated
// @Summary      Check authentication
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Failure      401  {object}  map[string]bool
// @Router       /check-auth [get]
func (h *AuthHandler) CheckAuth(c *gin.Context) {
	tokenString, err := c.Cookie("access_token")
	if err != nil || tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"is_authenticated": false})
		return
	}
	if _, ok := middleware.ParseActor(tokenString); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"is_authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_authenticated": true})
}

// CurrentUser handles GET /current-user returning the caller's record
// @Summary      Get current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.UserResponse}
// @Failure      401  {object}  response.Response
// @Router       /current-user [get]
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	actor := middleware.Actor(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, service.MapUser(actor)))
}

// GetCSRFToken handles GET /get-csrf-token setting the anti-forgery cookie
// @Summary      Set CSRF cookie
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /get-csrf-token [get]
func (h *AuthHandler) GetCSRFToken(c *gin.Context) {
	token, err := middleware.NewCSRFToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to issue CSRF token"))
		return
	}
	middleware.SetCSRFCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"detail": "CSRF cookie set"})
}

// BiometricAuth is a placeholder endpoint; a real matcher is an external
// collaborator that is not integrated yet
// @Summary      Biometric authentication placeholder
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /biometric-auth [post]
func (h *AuthHandler) BiometricAuth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Biometric authentication placeholder"})
}
