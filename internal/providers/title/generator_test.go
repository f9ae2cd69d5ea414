package title

import (
	"errors"
	"testing"

	"aititle/internal/domain"
)

func TestCleanTitle(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		max  int
		want string
	}{
		{name: "plain", raw: "Intro to Hello World", want: "Intro to Hello World"},
		{name: "quoted", raw: "  \"Intro to Hello World\"\n", want: "Intro to Hello World"},
		{name: "smart quotes", raw: "“Intro to Hello World”", want: "Intro to Hello World"},
		{name: "label", raw: "Title: Intro to Hello World", want: "Intro to Hello World"},
		{name: "markdown heading", raw: "## **Intro to Hello World**", want: "Intro to Hello World"},
		{name: "code fence", raw: "```\nIntro to Hello World\n```", want: "Intro to Hello World"},
		{name: "first line only", raw: "Intro to Hello World\nThis video explains...", want: "Intro to Hello World"},
		{name: "collapse spaces", raw: "Intro   to\tHello World", want: "Intro to Hello World"},
		{name: "nfc", raw: "Cafe\u0301 Tour", want: "Caf\u00e9 Tour"},
		{name: "truncate runes", raw: "ÄÖÜ extra", max: 3, want: "ÄÖÜ"},
		{name: "empty", raw: "   ", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := cleanTitle(tc.raw, tc.max); got != tc.want {
				t.Fatalf("cleanTitle(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestGenerationErrorKinds(t *testing.T) {
	cause := errors.New("boom")
	var hookReason string
	err := failure(func(provider, reason string, err error) { hookReason = reason }, "gemini", "http_request", cause)
	if !errors.Is(err, domain.ErrGenerationFailure) || !errors.Is(err, cause) {
		t.Fatalf("failure error chain = %v", err)
	}
	if IsDeclined(err) {
		t.Fatal("provider fault should not be reported as declined")
	}
	if hookReason != "http_request" {
		t.Fatalf("hook reason = %q", hookReason)
	}

	err = declined(nil, "gemini", "empty_candidates")
	if !IsDeclined(err) {
		t.Fatalf("declined error chain = %v", err)
	}
	var genErr *GenerationError
	if !errors.As(err, &genErr) || genErr.Reason != "empty_candidates" {
		t.Fatalf("errors.As GenerationError failed: %v", err)
	}
}
