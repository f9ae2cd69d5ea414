// Package transcript fetches video transcripts from YouTube caption tracks.
package transcript

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"aititle/internal/domain"
	"aititle/internal/infra"
	"aititle/internal/youtube"
)

const (
	defaultTimeout   = 20 * time.Second
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	maxPageBytes     = 4 << 20
	maxCaptionBytes  = 2 << 20

	playerResponseMarker = "ytInitialPlayerResponse"
	asrKind              = "asr"
)

type Options struct {
	BaseURL    string
	Language   string
	HTTPClient *http.Client
	Retry      *RetryConfig
	Logger     *infra.Logger
}

// YouTubeProvider reads the caption tracks advertised on a video's watch page
// and returns the text of the best matching track.
type YouTubeProvider struct {
	baseURL  string
	language string
	client   *http.Client
	retry    RetryConfig
	logger   infra.Logger
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason,omitempty"`
	} `json:"playabilityStatus"`
	Captions *struct {
		Renderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions,omitempty"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind,omitempty"`
}

type timedText struct {
	Texts []string `xml:"text"`
	Body  struct {
		Paragraphs []srv3Paragraph `xml:"p"`
	} `xml:"body"`
}

type srv3Paragraph struct {
	Text     string   `xml:",chardata"`
	Segments []string `xml:"s"`
}

func NewYouTubeProvider(opts Options) *YouTubeProvider {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	lang := strings.TrimSpace(opts.Language)
	if lang == "" {
		lang = "en"
	}
	retry := DefaultRetryConfig
	if opts.Retry != nil {
		retry = *opts.Retry
	}
	logger := infra.NopLogger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &YouTubeProvider{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		language: lang,
		client:   client,
		retry:    retry,
		logger:   logger,
	}
}

// FetchTranscript returns the transcript of videoID. Videos without caption
// tracks yield domain.ErrTranscriptUnavailable.
func (p *YouTubeProvider) FetchTranscript(ctx context.Context, videoID string) (string, error) {
	page, err := retryDo(ctx, p.retry, p.logger, func() ([]byte, error) {
		return p.get(ctx, youtube.WatchURL(p.baseURL, videoID), maxPageBytes)
	})
	if err != nil {
		return "", fmt.Errorf("fetch watch page: %w", err)
	}
	player, err := parsePlayerResponse(page)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTranscriptUnavailable, err)
	}
	if player.Captions == nil || len(player.Captions.Renderer.CaptionTracks) == 0 {
		status := player.PlayabilityStatus.Status
		return "", fmt.Errorf("%w: no caption tracks (playability %s)", domain.ErrTranscriptUnavailable, status)
	}
	track := pickTrack(player.Captions.Renderer.CaptionTracks, p.language)
	p.logger.Debug().Str("video_id", videoID).Str("lang", track.LanguageCode).Str("kind", track.Kind).Msg("transcript: caption track selected")

	raw, err := retryDo(ctx, p.retry, p.logger, func() ([]byte, error) {
		return p.get(ctx, p.absolute(track.BaseURL), maxCaptionBytes)
	})
	if err != nil {
		return "", fmt.Errorf("fetch caption track: %w", err)
	}
	text, err := parseTimedText(raw)
	if err != nil {
		return "", fmt.Errorf("decode caption track: %w", err)
	}
	if text == "" {
		return "", fmt.Errorf("%w: caption track is empty", domain.ErrTranscriptUnavailable)
	}
	return text, nil
}

func (p *YouTubeProvider) get(ctx context.Context, target string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept-Language", p.language+";q=0.9,en;q=0.8")
	req.AddCookie(&http.Cookie{Name: "CONSENT", Value: "YES+1"})
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return nil, &statusError{StatusCode: resp.StatusCode}
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// absolute resolves caption URLs relative to the configured base URL.
func (p *YouTubeProvider) absolute(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	base := p.baseURL
	if base == "" {
		base = youtube.DefaultWatchBaseURL
	}
	return base + "/" + strings.TrimLeft(raw, "/")
}

// parsePlayerResponse locates the inline script that assigns
// ytInitialPlayerResponse and decodes the JSON object it carries.
func parsePlayerResponse(page []byte) (*playerResponse, error) {
	doc, err := html.Parse(strings.NewReader(string(page)))
	if err != nil {
		return nil, fmt.Errorf("parse watch page: %w", err)
	}
	for _, script := range findElements(doc, "script") {
		body := textContent(script)
		idx := strings.Index(body, playerResponseMarker)
		if idx < 0 {
			continue
		}
		rest, ok := assignmentValue(body[idx+len(playerResponseMarker):])
		if !ok {
			continue
		}
		obj := extractJSONObject(rest)
		if obj == "" {
			continue
		}
		var player playerResponse
		if err := json.Unmarshal([]byte(obj), &player); err != nil {
			return nil, fmt.Errorf("decode player response: %w", err)
		}
		return &player, nil
	}
	return nil, errors.New("player response not found")
}

// pickTrack prefers a manual track in lang, then an automatic one, then a
// track sharing the base language tag (manual first), then the first manual track.
func pickTrack(tracks []captionTrack, lang string) captionTrack {
	base, _, _ := strings.Cut(strings.ToLower(lang), "-")
	var auto, related, manual *captionTrack
	for i := range tracks {
		t := &tracks[i]
		code := strings.ToLower(t.LanguageCode)
		tBase, _, _ := strings.Cut(code, "-")
		switch {
		case strings.EqualFold(code, lang) && t.Kind != asrKind:
			return *t
		case strings.EqualFold(code, lang) && auto == nil:
			auto = t
		case tBase == base && (related == nil || (related.Kind == asrKind && t.Kind != asrKind)):
			related = t
		case t.Kind != asrKind && manual == nil:
			manual = t
		}
	}
	for _, candidate := range []*captionTrack{auto, related, manual} {
		if candidate != nil {
			return *candidate
		}
	}
	return tracks[0]
}

func parseTimedText(raw []byte) (string, error) {
	var doc timedText
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return "", err
	}
	parts := append([]string(nil), doc.Texts...)
	for _, p := range doc.Body.Paragraphs {
		if len(p.Segments) > 0 {
			parts = append(parts, strings.Join(p.Segments, ""))
			continue
		}
		parts = append(parts, p.Text)
	}
	var cleaned []string
	for _, part := range parts {
		// caption payloads are entity-encoded twice
		part = strings.Join(strings.Fields(html.UnescapeString(part)), " ")
		if part != "" {
			cleaned = append(cleaned, part)
		}
	}
	return strings.Join(cleaned, " "), nil
}

// assignmentValue accepts `ytInitialPlayerResponse = {` and
// `window["ytInitialPlayerResponse"] = {` and returns the text from the brace.
func assignmentValue(s string) (string, bool) {
	rest := strings.TrimLeft(s, "\"'] \t")
	if !strings.HasPrefix(rest, "=") {
		return "", false
	}
	rest = strings.TrimLeft(rest[1:], " \t\n")
	if !strings.HasPrefix(rest, "{") {
		return "", false
	}
	return rest, true
}

// extractJSONObject returns the first balanced {...} object in s, honoring
// string literals and escapes.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func findElements(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tag {
			out = append(out, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

var _ domain.TranscriptProvider = (*YouTubeProvider)(nil)
