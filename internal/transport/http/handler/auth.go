package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vortexkeep/internal/app"
	"vortexkeep/internal/transport/http/middleware"
	"vortexkeep/internal/transport/http/response"
)

type AuthHandler struct {
	authService *app.AuthService
}

type SignupRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Email    string `json:"email" binding:"required,email,max=128"`
	Password string `json:"password" binding:"required,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=128"`
	Password string `json:"password" binding:"required,max=128"`
}

func NewAuthHandler(authService *app.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "All fields are required.")
		return
	}

	result, err := h.authService.Signup(app.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "All fields are required.")
		case errors.Is(err, app.ErrPasswordTooShort):
			response.Error(c, http.StatusBadRequest, "Password must be at least 8 characters long.")
		case errors.Is(err, app.ErrUsernameExists), errors.Is(err, app.ErrEmailExists):
			response.Error(c, http.StatusConflict, "Username or email already exists.")
		default:
			response.Error(c, http.StatusInternalServerError, "Error registering user.")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully!",
		"token":   result.Token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Email and password are required.")
		return
	}

	result, err := h.authService.Login(app.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "Email and password are required.")
		case errors.Is(err, app.ErrInvalidCredential):
			response.Error(c, http.StatusUnauthorized, "Invalid credentials.")
		default:
			response.Error(c, http.StatusInternalServerError, "Server error during login.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged in successfully!",
		"token":   result.Token,
		"user": gin.H{
			"id":       result.User.ID,
			"username": result.User.Username,
			"email":    result.User.Email,
		},
	})
}

// Profile answers entirely from the verified token claims; no store lookup.
func (h *AuthHandler) Profile(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication token required")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the protected profile data!",
		"user": gin.H{
			"id":       identity.UserID,
			"username": identity.Username,
			"email":    identity.Email,
		},
	})
}
