package models

// Room - consultório yang dipanggil di panel. Rooms are never deleted,
// only deactivated; history keeps pointing at inactive rooms.
type Room struct {
	ID         string `json:"id"`
	Number     string `json:"number"`
	DoctorName string `json:"doctorName"`
	Specialty  string `json:"specialty"`
	Active     bool   `json:"active"`
}

// Placeholder labels used when a call references a room that cannot be found.
const (
	UnknownRoomName = "?"
	UnknownDoctor   = "Desconhecido"
)

// FindRoom returns the room with the given id.
func FindRoom(rooms []Room, id string) (Room, bool) {
	for _, r := range rooms {
		if r.ID == id {
			return r, true
		}
	}
	return Room{}, false
}

// ActiveRooms filters rooms that may originate new calls.
func ActiveRooms(rooms []Room) []Room {
	active := make([]Room, 0, len(rooms))
	for _, r := range rooms {
		if r.Active {
			active = append(active, r)
		}
	}
	return active
}
