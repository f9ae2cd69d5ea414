// Package pipeline turns a YouTube link into a persisted AI title.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"aititle/internal/domain"
	"aititle/internal/infra"
	"aititle/internal/youtube"
)

// Service runs the link → cache check → transcript → title → persist sequence.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	videos      domain.VideoRepository
	transcripts domain.TranscriptProvider
	titles      domain.TitleGenerator
	logger      infra.Logger
}

func NewService(videos domain.VideoRepository, transcripts domain.TranscriptProvider, titles domain.TitleGenerator, logger infra.Logger) *Service {
	return &Service{
		videos:      videos,
		transcripts: transcripts,
		titles:      titles,
		logger:      logger,
	}
}

// Process resolves rawURL and returns the cached or freshly generated title.
// At most one record is written, and only after a title was generated.
func (s *Service) Process(ctx context.Context, rawURL string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{
				Kind:    KindInternalError,
				VideoID: out.VideoID,
				Err:     fmt.Errorf("%w: panic: %v", domain.ErrInternal, r),
			}
		}
		s.log(out)
	}()

	videoID, ok := youtube.ResolveID(rawURL)
	if !ok {
		return Outcome{Kind: KindInvalidURL, Err: domain.ErrInvalidInput}
	}
	out.VideoID = videoID

	existing, err := s.videos.FindByVideoID(ctx, videoID)
	switch {
	case err == nil && existing != nil:
		return Outcome{Kind: KindAlreadyExists, VideoID: videoID, Title: existing.AITitle}
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return internal(videoID, fmt.Errorf("lookup: %w", err))
	}

	transcript, err := s.transcripts.FetchTranscript(ctx, videoID)
	if err != nil {
		return Outcome{Kind: KindTranscriptUnavailable, VideoID: videoID, Err: fmt.Errorf("%w: %w", domain.ErrTranscriptUnavailable, err)}
	}
	if strings.TrimSpace(transcript) == "" {
		return Outcome{Kind: KindTranscriptUnavailable, VideoID: videoID, Err: domain.ErrTranscriptUnavailable}
	}

	title, err := s.titles.GenerateTitle(ctx, transcript)
	if err != nil {
		return Outcome{Kind: KindGenerationFailed, VideoID: videoID, Title: domain.TitleGenerationSentinel, Err: fmt.Errorf("%w: %w", domain.ErrGenerationFailure, err)}
	}
	if title == domain.TitleGenerationSentinel || strings.TrimSpace(title) == "" {
		return Outcome{Kind: KindGenerationFailed, VideoID: videoID, Title: title, Err: domain.ErrGenerationFailure}
	}

	if _, err := s.videos.Create(ctx, videoID, title); err != nil {
		if !errors.Is(err, domain.ErrDuplicateKey) {
			return internal(videoID, fmt.Errorf("persist: %w", err))
		}
		// A concurrent request stored its own title first; report ours.
		s.logger.Info().Str("video_id", videoID).Msg("pipeline: record created concurrently")
	}
	return Outcome{Kind: KindGenerated, VideoID: videoID, Title: title}
}

func internal(videoID string, err error) Outcome {
	return Outcome{Kind: KindInternalError, VideoID: videoID, Err: fmt.Errorf("%w: %w", domain.ErrInternal, err)}
}

func (s *Service) log(out Outcome) {
	level := zerolog.InfoLevel
	switch out.Kind {
	case KindInternalError:
		level = zerolog.ErrorLevel
	case KindTranscriptUnavailable, KindGenerationFailed:
		level = zerolog.WarnLevel
	}
	event := s.logger.WithLevel(level)
	if out.VideoID != "" {
		event = event.Str("video_id", out.VideoID)
	}
	if out.Err != nil {
		event = event.Err(out.Err)
	}
	if out.Kind == KindGenerationFailed {
		event = event.Bool("declined", errors.Is(out.Err, domain.ErrGenerationDeclined))
	}
	event.Str("outcome", out.Kind.String()).Msg("pipeline: finished")
}
