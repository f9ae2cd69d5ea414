package promptcfg

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// TitlePrompt is the template sent to title generation providers.
type TitlePrompt struct {
	Version            string  `yaml:"version"`
	System             string  `yaml:"system"`
	Instructions       string  `yaml:"instructions"`
	Temperature        float64 `yaml:"temperature"`
	MaxTranscriptChars int     `yaml:"max_transcript_chars"`
	MaxTitleChars      int     `yaml:"max_title_chars"`
}

const (
	// DefaultPromptVersion is applied when a custom template omits the version.
	DefaultPromptVersion = "2024-06"
	// DefaultTemperature is used when the template omits temperature.
	DefaultTemperature = 0.4
	// DefaultMaxTranscriptChars bounds the transcript forwarded to the model.
	DefaultMaxTranscriptChars = 12000
	// DefaultMaxTitleChars bounds the accepted title length.
	DefaultMaxTitleChars = 100
	// MaxTemperature is the upper bound accepted by both supported providers.
	MaxTemperature = 2.0

	maxTitleCharsPlaceholder = "{{max_title_chars}}"
)

// Default returns the embedded template.
func Default() TitlePrompt {
	p, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Errorf("promptcfg: embedded default: %w", err))
	}
	return p
}

// Load reads a template from path. An empty path yields the embedded default.
func Load(path string) (TitlePrompt, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return TitlePrompt{}, fmt.Errorf("read prompt template: %w", err)
	}
	return Parse(raw)
}

// Parse decodes, normalizes and validates a YAML template.
func Parse(raw []byte) (TitlePrompt, error) {
	// absent keys keep this value; an explicit 0 overrides it
	p := TitlePrompt{Temperature: DefaultTemperature}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return TitlePrompt{}, fmt.Errorf("decode prompt template: %w", err)
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return TitlePrompt{}, err
	}
	return p, nil
}

// Normalize fills defaults for unset fields.
func (p *TitlePrompt) Normalize() {
	if p == nil {
		return
	}
	if p.Version == "" {
		p.Version = DefaultPromptVersion
	}
	if p.MaxTranscriptChars <= 0 {
		p.MaxTranscriptChars = DefaultMaxTranscriptChars
	}
	if p.MaxTitleChars <= 0 {
		p.MaxTitleChars = DefaultMaxTitleChars
	}
	p.System = strings.TrimSpace(p.System)
	p.Instructions = strings.TrimSpace(p.Instructions)
}

// Validate ensures the template can be rendered.
func (p TitlePrompt) Validate() error {
	if p.Instructions == "" {
		return fmt.Errorf("instructions is required")
	}
	if p.Temperature < 0 || p.Temperature > MaxTemperature {
		return fmt.Errorf("temperature must be between 0 and %.1f", MaxTemperature)
	}
	return nil
}

// Render builds the user message for transcript, truncated to MaxTranscriptChars runes.
func (p TitlePrompt) Render(transcript string) string {
	instructions := strings.ReplaceAll(p.Instructions, maxTitleCharsPlaceholder, strconv.Itoa(p.MaxTitleChars))
	sb := &strings.Builder{}
	sb.WriteString(instructions)
	sb.WriteString("\n\nTranscript:\n")
	sb.WriteString(truncateRunes(strings.TrimSpace(transcript), p.MaxTranscriptChars))
	return sb.String()
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
