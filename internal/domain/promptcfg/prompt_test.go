package promptcfg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultTemplate(t *testing.T) {
	p := Default()
	if p.Version != DefaultPromptVersion {
		t.Fatalf("Version = %q, want %q", p.Version, DefaultPromptVersion)
	}
	if p.MaxTitleChars != DefaultMaxTitleChars {
		t.Fatalf("MaxTitleChars = %d, want %d", p.MaxTitleChars, DefaultMaxTitleChars)
	}
	if p.System == "" {
		t.Fatal("expected system prompt in embedded template")
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	p, err := Parse([]byte("instructions: Write a title.\n"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if p.Temperature != DefaultTemperature {
		t.Fatalf("Temperature = %v, want %v", p.Temperature, DefaultTemperature)
	}
	if p.MaxTranscriptChars != DefaultMaxTranscriptChars {
		t.Fatalf("MaxTranscriptChars = %d, want %d", p.MaxTranscriptChars, DefaultMaxTranscriptChars)
	}
	if p.Version != DefaultPromptVersion {
		t.Fatalf("Version = %q, want %q", p.Version, DefaultPromptVersion)
	}
}

func TestParseKeepsExplicitZeroTemperature(t *testing.T) {
	p, err := Parse([]byte("instructions: Write a title.\ntemperature: 0\n"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if p.Temperature != 0 {
		t.Fatalf("Temperature = %v, want 0", p.Temperature)
	}
}

func TestParseRejectsInvalidTemplates(t *testing.T) {
	cases := map[string]string{
		"missing instructions": "system: hi\n",
		"temperature too high": "instructions: x\ntemperature: 3\n",
		"not yaml":             "instructions: [unterminated\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(raw)); err == nil {
				t.Fatalf("Parse(%q) expected error", raw)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.yaml")
	if err := os.WriteFile(path, []byte("instructions: Name it.\nmax_title_chars: 40\n"), 0o600); err != nil {
		t.Fatalf("write template: %v", err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.MaxTitleChars != 40 {
		t.Fatalf("MaxTitleChars = %d, want 40", p.MaxTitleChars)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRenderTruncatesTranscript(t *testing.T) {
	p := TitlePrompt{Instructions: "Max {{max_title_chars}} chars.", MaxTranscriptChars: 5, MaxTitleChars: 60}
	out := p.Render("  héllo world  ")
	if !strings.HasPrefix(out, "Max 60 chars.") {
		t.Fatalf("Render() = %q, want placeholder replaced", out)
	}
	if !strings.HasSuffix(out, "Transcript:\nhéllo") {
		t.Fatalf("Render() = %q, want transcript truncated to 5 runes", out)
	}
}
