package domain

import "time"

// TitleGenerationSentinel is the value a title provider may return instead of an
// error to signal that it could not produce a title.
const TitleGenerationSentinel = "Error generating title"

// VideoRecord is the persisted AI title of a single YouTube video.
type VideoRecord struct {
	VideoID   string    `json:"youtubeId"`
	AITitle   string    `json:"AI_Title"`
	CreatedAt time.Time `json:"createdAt"`
}
