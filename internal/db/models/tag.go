package models

import "time"

// Tag is a free-form label attached to videos. Names are unique and
// case-sensitive; tags are created on demand when first assigned.
type Tag struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}
