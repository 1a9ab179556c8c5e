package models

// Subtitle is a caption file belonging to exactly one video. The set is
// replaced wholesale every time its video syncs.
type Subtitle struct {
	ExternalID string `db:"external_id"`
	VideoID    int64  `db:"video_id"`
	Name       string `db:"name"`
	URL        string `db:"url"`
	Language   string `db:"language"`
}
