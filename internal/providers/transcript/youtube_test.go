package transcript

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"aititle/internal/domain"
)

const watchPageTemplate = `<!DOCTYPE html><html><head><script>var ytcfg = {"a": 1};</script></head><body>
<script nonce="x">window["ytInitialPlayerResponse"] = null;</script>
<script nonce="x">var ytInitialPlayerResponse = %s;var meta = {"x": "}"};</script>
</body></html>`

const timedTextXML = `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0" dur="1.2">hello</text>
<text start="1.2" dur="2">world &amp;amp; it&amp;#39;s   fine</text>
<text start="3" dur="1"></text>
</transcript>`

func newYouTubeServer(t *testing.T, player string, captions func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("v") != "abc123" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, watchPageTemplate, player)
	})
	mux.HandleFunc("/api/timedtext", captions)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func playerWithTracks(tracks string) string {
	return `{"playabilityStatus":{"status":"OK"},"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":` + tracks + `}},"videoDetails":{"title":"with \"quotes\" and {braces}"}}`
}

func newTestProvider(baseURL string) *YouTubeProvider {
	return NewYouTubeProvider(Options{
		BaseURL: baseURL,
		Retry:   &RetryConfig{MaxRetries: 2, InitialWait: time.Millisecond, MaxWait: time.Millisecond, Multiplier: 1},
	})
}

func TestYouTubeProviderFetchTranscript(t *testing.T) {
	var requestedLang string
	srv := newYouTubeServer(t,
		playerWithTracks(`[{"baseUrl":"/api/timedtext?lang=de","languageCode":"de"},{"baseUrl":"/api/timedtext?lang=en","languageCode":"en"}]`),
		func(w http.ResponseWriter, r *http.Request) {
			requestedLang = r.URL.Query().Get("lang")
			_, _ = w.Write([]byte(timedTextXML))
		})

	got, err := newTestProvider(srv.URL).FetchTranscript(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("FetchTranscript error: %v", err)
	}
	if got != "hello world & it's fine" {
		t.Fatalf("FetchTranscript = %q", got)
	}
	if requestedLang != "en" {
		t.Fatalf("requested track lang = %q, want en", requestedLang)
	}
}

func TestYouTubeProviderNoCaptions(t *testing.T) {
	srv := newYouTubeServer(t, `{"playabilityStatus":{"status":"OK"}}`, func(w http.ResponseWriter, r *http.Request) {
		t.Error("caption endpoint should not be called")
	})
	_, err := newTestProvider(srv.URL).FetchTranscript(context.Background(), "abc123")
	if !errors.Is(err, domain.ErrTranscriptUnavailable) {
		t.Fatalf("err = %v, want ErrTranscriptUnavailable", err)
	}
}

func TestYouTubeProviderEmptyTrack(t *testing.T) {
	srv := newYouTubeServer(t,
		playerWithTracks(`[{"baseUrl":"/api/timedtext?lang=en","languageCode":"en"}]`),
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<transcript></transcript>`))
		})
	_, err := newTestProvider(srv.URL).FetchTranscript(context.Background(), "abc123")
	if !errors.Is(err, domain.ErrTranscriptUnavailable) {
		t.Fatalf("err = %v, want ErrTranscriptUnavailable", err)
	}
}

func TestYouTubeProviderRetriesCaptionFetch(t *testing.T) {
	var calls atomic.Int32
	srv := newYouTubeServer(t,
		playerWithTracks(`[{"baseUrl":"/api/timedtext?lang=en","languageCode":"en"}]`),
		func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(timedTextXML))
		})
	if _, err := newTestProvider(srv.URL).FetchTranscript(context.Background(), "abc123"); err != nil {
		t.Fatalf("FetchTranscript error: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("caption calls = %d, want 2", calls.Load())
	}
}

func TestYouTubeProviderWatchPageNotFound(t *testing.T) {
	srv := newYouTubeServer(t, `{}`, func(w http.ResponseWriter, r *http.Request) {})
	_, err := newTestProvider(srv.URL).FetchTranscript(context.Background(), "missing")
	var statusErr *statusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("err = %v, want 404 status error", err)
	}
}

func TestPickTrack(t *testing.T) {
	tracks := []captionTrack{
		{LanguageCode: "de", BaseURL: "de"},
		{LanguageCode: "en", Kind: "asr", BaseURL: "en-asr"},
		{LanguageCode: "en-GB", BaseURL: "en-gb"},
		{LanguageCode: "en", BaseURL: "en"},
	}
	cases := []struct {
		lang string
		want string
	}{
		{"en", "en"},
		{"en-US", "en-gb"},
		{"fr", "de"},
		{"de", "de"},
	}
	for _, tc := range cases {
		if got := pickTrack(tracks, tc.lang); got.BaseURL != tc.want {
			t.Fatalf("pickTrack(%q) = %q, want %q", tc.lang, got.BaseURL, tc.want)
		}
	}
	if got := pickTrack(tracks[1:2], "fr"); got.BaseURL != "en-asr" {
		t.Fatalf("pickTrack single asr = %q", got.BaseURL)
	}
}

func TestParseTimedTextSRV3(t *testing.T) {
	raw := []byte(`<timedtext format="3"><body><p t="0" d="10"><s>Hello</s><s> there</s></p><p t="10" d="5">general kenobi</p></body></timedtext>`)
	got, err := parseTimedText(raw)
	if err != nil {
		t.Fatalf("parseTimedText error: %v", err)
	}
	if got != "Hello there general kenobi" {
		t.Fatalf("parseTimedText = %q", got)
	}
}

func TestExtractJSONObject(t *testing.T) {
	in := ` = {"a":"}{","b":{"c":"\"}"}};rest{}`
	if got := extractJSONObject(in); got != `{"a":"}{","b":{"c":"\"}"}}` {
		t.Fatalf("extractJSONObject = %q", got)
	}
	if got := extractJSONObject(`{"unterminated": 1`); got != "" {
		t.Fatalf("extractJSONObject unterminated = %q", got)
	}
}
