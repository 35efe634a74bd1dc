package model

import "time"

// DatasetRow is one export row joining an episode with its snippet and
// labels. CoderFrames holds the reconciled human labels in coder order;
// AutoFrame is empty while the automated label is missing.
type DatasetRow struct {
	EpisodeID   string    `json:"episode_id"`
	Program     string    `json:"program"`
	Host        string    `json:"host,omitempty"`
	AirDate     time.Time `json:"air_date"`
	Snippet     string    `json:"snippet"`
	MatchCount  int       `json:"match_count"`
	Sentiment   float64   `json:"sentiment"`
	CoderFrames []Frame   `json:"coder_frames,omitempty"`
	AutoFrame   Frame     `json:"auto_frame,omitempty"`
}
