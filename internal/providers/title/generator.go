// Package title implements domain.TitleGenerator on top of hosted language models.
package title

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"aititle/internal/domain"
)

const (
	geminiProviderName = "gemini"
	openAIProviderName = "openai"
)

// FailureHook observes generation failures. reason is a short machine-friendly tag
// such as "http_request" or "blocked".
type FailureHook func(provider, reason string, err error)

// GenerationError describes why a provider did not return a title. It matches
// domain.ErrGenerationDeclined when the model refused or returned nothing usable
// and domain.ErrGenerationFailure otherwise.
type GenerationError struct {
	Provider string
	Reason   string
	Declined bool
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Reason, e.Err)
}

func (e *GenerationError) Unwrap() []error {
	kind := domain.ErrGenerationFailure
	if e.Declined {
		kind = domain.ErrGenerationDeclined
	}
	if e.Err == nil {
		return []error{kind}
	}
	return []error{kind, e.Err}
}

func failure(hook FailureHook, provider, reason string, err error) error {
	if hook != nil {
		hook(provider, reason, err)
	}
	return &GenerationError{Provider: provider, Reason: reason, Err: err}
}

func declined(hook FailureHook, provider, reason string) error {
	err := &GenerationError{Provider: provider, Reason: reason, Declined: true}
	if hook != nil {
		hook(provider, reason, err)
	}
	return err
}

// IsDeclined reports whether err means the model answered without a usable title.
func IsDeclined(err error) bool {
	return errors.Is(err, domain.ErrGenerationDeclined)
}

var titleLabels = []string{"title:", "video title:", "suggested title:"}

// cleanTitle turns raw model output into a single-line title capped at maxRunes.
func cleanTitle(raw string, maxRunes int) string {
	text := trimCodeFence(raw)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	text = strings.TrimSpace(text)
	text = strings.TrimLeft(text, "#*- ")
	for _, label := range titleLabels {
		if len(text) >= len(label) && strings.EqualFold(text[:len(label)], label) {
			text = strings.TrimSpace(text[len(label):])
			break
		}
	}
	text = strings.Trim(text, "\"'`*“”‘’ ")
	text = strings.Join(strings.FieldsFunc(text, unicode.IsSpace), " ")
	text = norm.NFC.String(text)
	if maxRunes > 0 {
		runes := []rune(text)
		if len(runes) > maxRunes {
			text = strings.TrimSpace(string(runes[:maxRunes]))
		}
	}
	return text
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```text")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
