package config

import (
	"fmt"
	"os"
	"sync"

	"backend-medcall/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Seed is the initial rooms/users used when the store has none yet.
type Seed struct {
	Rooms []models.Room
	Users []models.User
}

type seedFile struct {
	Rooms []struct {
		ID         string `yaml:"id"`
		Number     string `yaml:"number"`
		DoctorName string `yaml:"doctor_name"`
		Specialty  string `yaml:"specialty"`
		Active     *bool  `yaml:"active"`
	} `yaml:"rooms"`
	Users []struct {
		ID       string `yaml:"id"`
		Username string `yaml:"username"`
		Role     string `yaml:"role"`
		Name     string `yaml:"name"`
		Active   *bool  `yaml:"active"`
		RoomID   string `yaml:"room_id"`
		Password string `yaml:"password"`
	} `yaml:"users"`
}

// LoadSeed reads a YAML seed. An empty path returns the built-in seed.
func LoadSeed(path string) (Seed, error) {
	if path == "" {
		return DefaultSeed(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes a YAML seed document. Missing active flags default to
// true; plain passwords are replaced by their bcrypt hash.
func ParseSeed(data []byte) (Seed, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Seed{}, fmt.Errorf("parse seed file: %w", err)
	}

	var seed Seed
	for _, r := range f.Rooms {
		if r.ID == "" {
			return Seed{}, fmt.Errorf("seed room tanpa id")
		}
		seed.Rooms = append(seed.Rooms, models.Room{
			ID:         r.ID,
			Number:     r.Number,
			DoctorName: r.DoctorName,
			Specialty:  r.Specialty,
			Active:     r.Active == nil || *r.Active,
		})
	}

	for _, u := range f.Users {
		if u.ID == "" || u.Username == "" {
			return Seed{}, fmt.Errorf("seed user wajib punya id dan username")
		}
		user := models.User{
			ID:       u.ID,
			Username: u.Username,
			Role:     models.Role(u.Role),
			Name:     u.Name,
			Active:   u.Active == nil || *u.Active,
			RoomID:   u.RoomID,
		}
		if u.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
			if err != nil {
				return Seed{}, fmt.Errorf("hash password %s: %w", u.Username, err)
			}
			user.PasswordHash = string(hash)
		}
		seed.Users = append(seed.Users, user)
	}

	return seed, nil
}

var (
	defaultHashes     map[string]string
	defaultHashesOnce sync.Once
)

// DefaultSeed mirrors the demo data the clinic shipped with:
// admin/admin and 123456 for everybody else.
func DefaultSeed() Seed {
	defaultHashesOnce.Do(func() {
		defaultHashes = make(map[string]string)
		for _, pw := range []string{"admin", "123456"} {
			hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
			if err != nil {
				panic(err)
			}
			defaultHashes[pw] = string(hash)
		}
	})

	return Seed{
		Rooms: []models.Room{
			{ID: "r1", Number: "01", DoctorName: "Dr. Lucas Silva", Specialty: "Cardiologia", Active: true},
			{ID: "r2", Number: "02", DoctorName: "Dra. Ana Maria", Specialty: "Clínica Geral", Active: true},
		},
		Users: []models.User{
			{ID: "u1", Username: "admin", Role: models.RoleAdmin, Name: "Administrador", Active: true, PasswordHash: defaultHashes["admin"]},
			{ID: "u2", Username: "recepcao", Role: models.RoleReception, Name: "Recepção Central", Active: true, PasswordHash: defaultHashes["123456"]},
			{ID: "u3", Username: "consultorio1", Role: models.RoleClinic, Name: "Atendimento R01", Active: true, RoomID: "r1", PasswordHash: defaultHashes["123456"]},
		},
	}
}
