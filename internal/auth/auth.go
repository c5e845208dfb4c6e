// Package auth is the login check: the user must exist, be active and
// present the right password.
package auth

import (
	"errors"
	"strings"

	"backend-medcall/internal/models"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("usuário ou senha inválidos")
	ErrInactiveUser       = errors.New("conta desativada")
)

// FindByUsername looks a user up regardless of the active flag.
func FindByUsername(users []models.User, username string) (models.User, bool) {
	username = strings.TrimSpace(username)
	for _, u := range users {
		if u.Username == username {
			return u, true
		}
	}
	return models.User{}, false
}

// Login checks username/password against users. Unknown users, inactive
// users and wrong passwords all give the same error.
func Login(users []models.User, username, password string) (models.User, error) {
	user, ok := FindByUsername(users, username)
	if !ok || !user.Active {
		return models.User{}, ErrInvalidCredentials
	}

	if user.PasswordHash == "" {
		return models.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// CheckActive is used on every authenticated request: a user disabled
// after login loses access immediately.
func CheckActive(users []models.User, userID string) (models.User, error) {
	for _, u := range users {
		if u.ID != userID {
			continue
		}
		if !u.Active {
			return models.User{}, ErrInactiveUser
		}
		return u, nil
	}
	return models.User{}, ErrInvalidCredentials
}

// HashPassword hashes a password for storage on a User.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
