package models

import "time"

// Category groups videos for browsing. Names are unique.
type Category struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}
