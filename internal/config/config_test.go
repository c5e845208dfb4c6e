package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"backend-medcall/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func TestParseSeed(t *testing.T) {
	data := []byte(`
rooms:
  - id: r1
    number: "01"
    doctor_name: Dr. Lucas Silva
    specialty: Cardiologia
  - id: r3
    number: "03"
    doctor_name: Dr. Pedro
    active: false
users:
  - id: u1
    username: admin
    role: ADMIN
    name: Administrador
    password: admin
  - id: u3
    username: consultorio1
    role: CLINIC
    room_id: r1
    active: false
`)

	seed, err := ParseSeed(data)
	if err != nil {
		t.Fatalf("ParseSeed() error = %v", err)
	}

	if len(seed.Rooms) != 2 {
		t.Fatalf("len(Rooms) = %d, want 2", len(seed.Rooms))
	}
	if !seed.Rooms[0].Active || seed.Rooms[0].DoctorName != "Dr. Lucas Silva" {
		t.Errorf("Rooms[0] = %+v, want active Dr. Lucas Silva", seed.Rooms[0])
	}
	if seed.Rooms[1].Active {
		t.Error("Rooms[1] should be inactive")
	}

	admin := seed.Users[0]
	if admin.Role != models.RoleAdmin || !admin.Active {
		t.Errorf("admin = %+v", admin)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("admin")); err != nil {
		t.Errorf("admin password not hashed correctly: %v", err)
	}

	clinic := seed.Users[1]
	if clinic.Active || clinic.RoomID != "r1" || clinic.PasswordHash != "" {
		t.Errorf("clinic = %+v", clinic)
	}
}

func TestParseSeed_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":      "rooms: [",
		"room no id":    "rooms:\n  - number: \"01\"\n",
		"user no login": "users:\n  - id: u1\n",
	}

	for name, doc := range tests {
		if _, err := ParseSeed([]byte(doc)); err == nil {
			t.Errorf("%s: ParseSeed() succeeded, want error", name)
		}
	}
}

func TestLoadSeed(t *testing.T) {
	seed, err := LoadSeed("")
	if err != nil {
		t.Fatalf("LoadSeed(\"\") error = %v", err)
	}
	if len(seed.Rooms) != 2 || len(seed.Users) != 3 {
		t.Errorf("default seed = %d rooms, %d users", len(seed.Rooms), len(seed.Users))
	}
	if seed.Users[2].RoomID != "r1" {
		t.Errorf("clinic user room = %q, want r1", seed.Users[2].RoomID)
	}

	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte("rooms:\n  - id: x\n    number: \"9\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	seed, err = LoadSeed(path)
	if err != nil {
		t.Fatalf("LoadSeed(file) error = %v", err)
	}
	if len(seed.Rooms) != 1 || seed.Rooms[0].ID != "x" {
		t.Errorf("LoadSeed(file) rooms = %+v", seed.Rooms)
	}

	if _, err := LoadSeed(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadSeed(missing) succeeded")
	}
}

func TestToken_RoundTrip(t *testing.T) {
	user := models.User{ID: "u3", Username: "consultorio1", Role: models.RoleClinic, RoomID: "r1"}

	token, err := GenerateToken("s3cret", time.Hour, user)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ValidateToken("s3cret", token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != "u3" || claims.Role != models.RoleClinic || claims.RoomID != "r1" {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := ValidateToken("other", token); err == nil {
		t.Error("token validated with the wrong secret")
	}
}

func TestToken_Expired(t *testing.T) {
	token, err := GenerateToken("s3cret", -time.Minute, models.User{ID: "u1"})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := ValidateToken("s3cret", token); err == nil {
		t.Error("expired token validated")
	}
}

func TestToken_MissingSecret(t *testing.T) {
	if _, err := GenerateToken("", time.Hour, models.User{}); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("GenerateToken() error = %v, want ErrMissingSecret", err)
	}
	if _, err := ValidateToken("", "x"); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("ValidateToken() error = %v, want ErrMissingSecret", err)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("APP_HOST", "")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("MEDCALL_STORE", "redis")
	t.Setenv("MEDCALL_RELAY", "memory")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("MEDCALL_HIGHLIGHT", "3s")
	t.Setenv("JWT_TTL", "-1h")
	t.Setenv("MEDCALL_SESSION_ID", "")

	cfg := Load()

	if cfg.Addr() != ":8080" {
		t.Errorf("Addr() = %q, want :8080", cfg.Addr())
	}
	if cfg.RedisDB != 0 {
		t.Errorf("RedisDB = %d, want fallback 0", cfg.RedisDB)
	}
	if cfg.Highlight != 3*time.Second {
		t.Errorf("Highlight = %v, want 3s", cfg.Highlight)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want fallback 24h", cfg.TokenTTL)
	}
	if cfg.SessionID == "" {
		t.Error("SessionID not generated")
	}
	if !cfg.NeedsRedis() {
		t.Error("NeedsRedis() = false for the redis store")
	}
	if cfg.Channel != "medcall_realtime" {
		t.Errorf("Channel = %q", cfg.Channel)
	}
}
