package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"clubdash/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are carried by access tokens. SessionID identifies the login and
// stays stable across refreshes.
type Claims struct {
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Issuer signs access tokens and manages refresh tokens.
type Issuer struct {
	secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time
}

func NewIssuer(secret []byte) *Issuer {
	return &Issuer{
		secret:     secret,
		AccessTTL:  24 * time.Hour,
		RefreshTTL: 30 * 24 * time.Hour,
		Now:        time.Now,
	}
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string { return uuid.NewString() }

func (i *Issuer) AccessToken(username string, role Role, sid string) (string, error) {
	now := i.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username:  username,
		Role:      role,
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.AccessTTL)),
		},
	})
	s, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Parse validates an access token and returns its claims.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.Now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role == RoleNone || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func hashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

// CreateRefreshToken generates a random refresh token, stores its hash with
// expiry and returns the raw token string.
func (i *Issuer) CreateRefreshToken(db *gorm.DB, userID uint, sid string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	raw := hex.EncodeToString(b)
	rt := models.RefreshToken{UserID: userID, SessionID: sid, TokenHash: hashToken(raw), ExpiresAt: i.Now().Add(i.RefreshTTL)}
	if err := db.Create(&rt).Error; err != nil {
		return "", err
	}
	return raw, nil
}

// Session is the outcome of a successful refresh.
type Session struct {
	User         models.User
	Role         Role
	SessionID    string
	AccessToken  string
	RefreshToken string
}

// Rotate exchanges a refresh token for a new access token, revoking the old
// refresh token and issuing a new one for the same session.
func (i *Issuer) Rotate(db *gorm.DB, raw string) (Session, error) {
	var rt models.RefreshToken
	if err := db.Where("token_hash = ?", hashToken(raw)).First(&rt).Error; err != nil {
		return Session{}, ErrInvalidToken
	}
	if rt.Revoked || i.Now().After(rt.ExpiresAt) {
		return Session{}, ErrInvalidToken
	}
	var user models.User
	if err := db.Preload("Role").First(&user, rt.UserID).Error; err != nil {
		return Session{}, ErrInvalidToken
	}
	role := ParseRole(user.Role.Name)
	if role == RoleNone {
		return Session{}, ErrInvalidToken
	}
	access, err := i.AccessToken(user.Username, role, rt.SessionID)
	if err != nil {
		return Session{}, err
	}
	if err := db.Model(&models.RefreshToken{}).Where("id = ?", rt.ID).Update("revoked", true).Error; err != nil {
		return Session{}, fmt.Errorf("revoke refresh token: %w", err)
	}
	next, err := i.CreateRefreshToken(db, user.ID, rt.SessionID)
	if err != nil {
		return Session{}, fmt.Errorf("rotate refresh token: %w", err)
	}
	return Session{User: user, Role: role, SessionID: rt.SessionID, AccessToken: access, RefreshToken: next}, nil
}

// Revoke marks a refresh token as unusable and returns its session id.
func Revoke(db *gorm.DB, raw string) (string, error) {
	var rt models.RefreshToken
	if err := db.Where("token_hash = ?", hashToken(raw)).First(&rt).Error; err != nil {
		return "", ErrInvalidToken
	}
	rt.Revoked = true
	if err := db.Save(&rt).Error; err != nil {
		return "", err
	}
	return rt.SessionID, nil
}
