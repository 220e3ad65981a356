package models

// Room is a physical examination room.
type Room struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Capacity int    `db:"capacity" json:"capacity"`
	Active   bool   `db:"is_active" json:"is_active"`
}
