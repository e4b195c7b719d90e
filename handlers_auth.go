package main

import (
	"errors"
	"net/http"

	"clubdash/pkg/auth"

	"github.com/gin-gonic/gin"
)

func (s *server) healthHandler(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
}

// loginHandler accepts a password alone (shared accounts) or a username and
// password pair.
func (s *server) loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, role, err := auth.Authenticate(s.db, req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			s.writeFailed(c, err)
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Senha incorreta."})
		return
	}
	sid := auth.NewSessionID()
	token, err := s.issuer.AccessToken(user.Username, role, sid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	refresh, err := s.issuer.CreateRefreshToken(s.db, user.ID, sid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create refresh token"})
		return
	}
	s.log.Info("login", "username", user.Username, "role", role, "sid", sid)
	c.JSON(http.StatusOK, gin.H{
		"message":       "login successful",
		"token":         token,
		"refresh_token": refresh,
		"username":      user.Username,
		"role":          role,
	})
}

// refreshHandler exchanges a refresh token for a new access token and rotates the refresh token
func (s *server) refreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, err := s.issuer.Rotate(s.db, req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": sess.AccessToken, "refresh_token": sess.RefreshToken, "role": sess.Role})
}

// logoutHandler revokes the refresh token and drops the session's projection
// adjustments.
func (s *server) logoutHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sid, err := auth.Revoke(s.db, req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "refresh token not found"})
		return
	}
	if err := s.adj.Reset(c.Request.Context(), sid); err != nil {
		s.log.Warn("reset adjustments on logout", "sid", sid, "err", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (s *server) meHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"username":  c.GetString("username"),
		"role":      roleOf(c),
		"can_write": roleOf(c).CanWrite(),
	})
}

func (s *server) createUserHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required,min=6"`
		Role     string `json:"role" binding:"required,oneof=admin visitor"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := auth.Register(s.db, req.Username, req.Password, auth.ParseRole(req.Role))
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "username": user.Username, "role": req.Role})
}
