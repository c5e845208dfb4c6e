package app

import (
	"context"

	"backend-medcall/internal/config"
	"backend-medcall/internal/models"
	"backend-medcall/internal/store"
)

// Directory reads rooms and users from the store. Until an administrator
// saves them, the seed is returned.
type Directory struct {
	store store.Store
	seed  config.Seed
}

func NewDirectory(s store.Store, seed config.Seed) *Directory {
	return &Directory{store: s, seed: seed}
}

func (d *Directory) Rooms(ctx context.Context) []models.Room {
	return store.Read(ctx, d.store, store.KeyRooms, d.seedRooms())
}

// Room implements dispatch.RoomLookup.
func (d *Directory) Room(ctx context.Context, id string) (models.Room, bool) {
	return models.FindRoom(d.Rooms(ctx), id)
}

func (d *Directory) SaveRooms(ctx context.Context, rooms []models.Room) error {
	if rooms == nil {
		rooms = []models.Room{}
	}
	return store.Write(ctx, d.store, store.KeyRooms, rooms)
}

func (d *Directory) Users(ctx context.Context) []models.User {
	return store.Read(ctx, d.store, store.KeyUsers, d.seedUsers())
}

func (d *Directory) SaveUsers(ctx context.Context, users []models.User) error {
	if users == nil {
		users = []models.User{}
	}
	return store.Write(ctx, d.store, store.KeyUsers, users)
}

// User finds a user by id.
func (d *Directory) User(ctx context.Context, id string) (models.User, bool) {
	for _, u := range d.Users(ctx) {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// seed slices are copied so callers can mutate what they get back.
func (d *Directory) seedRooms() []models.Room {
	return append([]models.Room{}, d.seed.Rooms...)
}

func (d *Directory) seedUsers() []models.User {
	return append([]models.User{}, d.seed.Users...)
}
