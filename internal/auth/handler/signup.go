package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"passport-login/internal/auth/credentials"
	"passport-login/internal/model"
)

type signupRequest struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=8"`
	Name     string `form:"name"`
}

// Signup creates a User and its local credentials. Duplicate emails
// are rejected with 409 and leave no second record behind; success
// redirects to /login.
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	hash, err := credentials.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Create(c.Request.Context(), model.User{
		Email:    req.Email,
		Username: req.Email,
		Name:     req.Name,
	})
	if err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
			return
		}
		h.logger.Error("signup failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "signup failed"})
		return
	}

	if _, err := h.users.CreateCredentials(c.Request.Context(), model.UserCredentials{
		UserID:       user.ID,
		PasswordHash: hash,
	}); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
			return
		}
		h.logger.Error("signup credentials failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "signup failed"})
		return
	}

	h.logger.Info("user signed up", "user_id", user.ID.String())

	c.Redirect(http.StatusFound, "/login")
}
