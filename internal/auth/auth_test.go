package auth

import (
	"errors"
	"testing"

	"backend-medcall/internal/models"
)

func testUsers(t *testing.T) []models.User {
	t.Helper()
	hash, err := HashPassword("123456")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	return []models.User{
		{ID: "u2", Username: "recepcao", Role: models.RoleReception, Active: true, PasswordHash: hash},
		{ID: "u4", Username: "antigo", Role: models.RoleClinic, Active: false, PasswordHash: hash},
		{ID: "u5", Username: "semsenha", Role: models.RoleClinic, Active: true},
	}
}

func TestLogin(t *testing.T) {
	users := testUsers(t)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
		wantID   string
	}{
		{name: "valid", username: "recepcao", password: "123456", wantID: "u2"},
		{name: "surrounding spaces", username: " recepcao ", password: "123456", wantID: "u2"},
		{name: "wrong password", username: "recepcao", password: "nope", wantErr: ErrInvalidCredentials},
		{name: "unknown user", username: "ninguem", password: "123456", wantErr: ErrInvalidCredentials},
		{name: "inactive user", username: "antigo", password: "123456", wantErr: ErrInvalidCredentials},
		{name: "inactive user wrong password", username: "antigo", password: "totally-wrong", wantErr: ErrInvalidCredentials},
		{name: "no password set", username: "semsenha", password: "", wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := Login(users, tt.username, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Login() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if user.ID != tt.wantID {
				t.Errorf("Login() user = %s, want %s", user.ID, tt.wantID)
			}
		})
	}
}

func TestCheckActive(t *testing.T) {
	users := testUsers(t)

	if u, err := CheckActive(users, "u2"); err != nil || u.Username != "recepcao" {
		t.Errorf("CheckActive(u2) = %+v, %v", u, err)
	}
	if _, err := CheckActive(users, "u4"); !errors.Is(err, ErrInactiveUser) {
		t.Errorf("CheckActive(u4) error = %v, want ErrInactiveUser", err)
	}
	if _, err := CheckActive(users, "u9"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("CheckActive(u9) error = %v, want ErrInvalidCredentials", err)
	}
}
