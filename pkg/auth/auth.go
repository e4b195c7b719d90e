// Package auth maps credentials to dashboard roles and issues session tokens.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"clubdash/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Role is what an authenticated caller may do.
type Role string

const (
	RoleNone    Role = ""
	RoleAdmin   Role = "admin"
	RoleVisitor Role = "visitor"
)

// CanWrite reports whether the role may run mutations.
func (r Role) CanWrite() bool { return r == RoleAdmin }

// CanRead reports whether the role may see the dashboard.
func (r Role) CanRead() bool { return r == RoleAdmin || r == RoleVisitor }

func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RoleAdmin):
		return RoleAdmin
	case string(RoleVisitor):
		return RoleVisitor
	}
	return RoleNone
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUnknownUser        = errors.New("user not found")
)

// MinPasswordLen applies to every account, the shared ones included.
const MinPasswordLen = 6

// EnsureRoles creates the admin and visitor roles when missing.
func EnsureRoles(db *gorm.DB) error {
	roles := []models.Role{
		{Name: models.RoleNameAdmin, Description: "full access"},
		{Name: models.RoleNameVisitor, Description: "read-only access"},
	}
	for _, r := range roles {
		if err := db.Where("name = ?", r.Name).FirstOrCreate(&r).Error; err != nil {
			return fmt.Errorf("ensure role %s: %w", r.Name, err)
		}
	}
	return nil
}

// Register creates a user with the given role.
func Register(db *gorm.DB, username, password string, role Role) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.User{}, fmt.Errorf("username required")
	}
	if len(password) < MinPasswordLen {
		return models.User{}, fmt.Errorf("password too short (min %d)", MinPasswordLen)
	}
	if role == RoleNone {
		return models.User{}, fmt.Errorf("unknown role")
	}
	// pre-check existing (optimistic)
	var existing models.User
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		return models.User{}, ErrUserExists
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	var r models.Role
	if err := db.Where("name = ?", string(role)).First(&r).Error; err != nil {
		if err := EnsureRoles(db); err != nil {
			return models.User{}, err
		}
		if err := db.Where("name = ?", string(role)).First(&r).Error; err != nil {
			return models.User{}, fmt.Errorf("load role %s: %w", role, err)
		}
	}
	rid := r.ID
	user := models.User{Username: username, HashedPassword: hashed, RoleID: &rid, Role: r}
	if err := db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) { // race condition after initial check
			return models.User{}, ErrUserExists
		}
		return models.User{}, err
	}
	return user, nil
}

// SetPassword replaces the password of username, creating the user with role
// when it does not exist yet. Used to keep the shared accounts in sync with
// configuration.
func SetPassword(db *gorm.DB, username, password string, role Role) error {
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		_, err := Register(db, username, password, role)
		return err
	}
	if bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)) == nil {
		return nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return db.Model(&user).Update("hashed_password", hashed).Error
}

// Authenticate checks username and password. With an empty username the
// password alone is tried against the shared admin and visitor accounts, in
// that order.
func Authenticate(db *gorm.DB, username, password string) (models.User, Role, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		for _, shared := range []string{models.RoleNameAdmin, models.RoleNameVisitor} {
			if u, role, err := Authenticate(db, shared, password); err == nil {
				return u, role, nil
			}
		}
		return models.User{}, RoleNone, ErrInvalidCredentials
	}
	var user models.User
	if err := db.Preload("Role").Where("username = ?", username).First(&user).Error; err != nil {
		return models.User{}, RoleNone, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return models.User{}, RoleNone, ErrInvalidCredentials
	}
	role := ParseRole(user.Role.Name)
	if role == RoleNone {
		return models.User{}, RoleNone, ErrInvalidCredentials
	}
	return user, role, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") ||
		strings.Contains(s, "UNIQUE constraint") || strings.Contains(s, "already exists")
}

// EnsureSharedAccounts creates the roles and keeps the shared admin and
// visitor accounts on the configured passwords.
func EnsureSharedAccounts(db *gorm.DB, adminPassword, visitorPassword string) error {
	if err := EnsureRoles(db); err != nil {
		return err
	}
	if err := SetPassword(db, models.RoleNameAdmin, adminPassword, RoleAdmin); err != nil {
		return fmt.Errorf("admin account: %w", err)
	}
	if err := SetPassword(db, models.RoleNameVisitor, visitorPassword, RoleVisitor); err != nil {
		return fmt.Errorf("visitor account: %w", err)
	}
	return nil
}

// ResetPassword replaces the password of an existing user.
func ResetPassword(db *gorm.DB, username, password string) error {
	if len(password) < MinPasswordLen {
		return fmt.Errorf("password too short (min %d)", MinPasswordLen)
	}
	var user models.User
	if err := db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%s: %w", username, ErrUnknownUser)
		}
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return db.Model(&user).Update("hashed_password", hashed).Error
}
