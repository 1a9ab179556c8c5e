package models

import "time"

// Default values applied when the external catalog omits optional fields.
const (
	DefaultResolution = "HD"
	DefaultCodec      = "Unknown"
)

// Video represents a catalog entry mirrored from the external video host.
type Video struct {
	ID            int64     `db:"id"`
	ExternalID    string    `db:"external_id"`
	Name          string    `db:"name"`
	Poster        string    `db:"poster"`
	Preview       string    `db:"preview"`
	AssetBaseURL  string    `db:"asset_base_url"`
	Duration      int       `db:"duration"`
	Resolution    string    `db:"resolution"`
	Codec         string    `db:"codec"`
	PlayCount     int64     `db:"play_count"`
	DownloadCount int64     `db:"download_count"`
	SourceCreated time.Time `db:"source_created_at"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// NewVideo creates a Video keyed on the external catalog id.
func NewVideo(externalID, name string, sourceCreated time.Time) *Video {
	now := time.Now()
	return &Video{
		ExternalID:    externalID,
		Name:          name,
		Resolution:    DefaultResolution,
		Codec:         DefaultCodec,
		SourceCreated: sourceCreated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
