package domain

import "context"

// VideoRepository stores generated titles keyed by YouTube video id.
type VideoRepository interface {
	// FindByVideoID returns ErrNotFound when no record exists.
	FindByVideoID(ctx context.Context, videoID string) (*VideoRecord, error)
	// Create returns ErrDuplicateKey when a record for videoID already exists.
	Create(ctx context.Context, videoID, title string) (*VideoRecord, error)
}

// TranscriptProvider returns the transcript text of a video.
type TranscriptProvider interface {
	FetchTranscript(ctx context.Context, videoID string) (string, error)
}

// TitleGenerator derives a title from transcript text.
type TitleGenerator interface {
	GenerateTitle(ctx context.Context, transcript string) (string, error)
}
