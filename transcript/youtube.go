package transcript

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const defaultTimedTextURL = "https://video.google.com/timedtext"

// YouTubeFetcher implements Fetcher against the YouTube timedtext endpoint.
type YouTubeFetcher struct {
	baseURL string
	lang    string
	client  *http.Client
	logger  *slog.Logger
}

var _ Fetcher = (*YouTubeFetcher)(nil)

// YouTubeOption configures a YouTubeFetcher.
type YouTubeOption func(*YouTubeFetcher)

// WithBaseURL overrides the timedtext endpoint, mainly for tests.
func WithBaseURL(baseURL string) YouTubeOption {
	return func(f *YouTubeFetcher) {
		f.baseURL = baseURL
	}
}

// WithLanguage sets the transcript language code. Default is "en".
func WithLanguage(lang string) YouTubeOption {
	return func(f *YouTubeFetcher) {
		f.lang = lang
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) YouTubeOption {
	return func(f *YouTubeFetcher) {
		f.client = client
	}
}

// NewYouTubeFetcher creates a transcript fetcher backed by the YouTube
// timedtext endpoint.
func NewYouTubeFetcher(opts ...YouTubeOption) *YouTubeFetcher {
	f := &YouTubeFetcher{
		baseURL: defaultTimedTextURL,
		lang:    "en",
		client:  &http.Client{Timeout: 20 * time.Second},
		logger:  slog.Default().With("component", "youtube-transcript"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type timedText struct {
	XMLName xml.Name        `xml:"transcript"`
	Texts   []timedTextLine `xml:"text"`
}

type timedTextLine struct {
	Start float64 `xml:"start,attr"`
	Dur   float64 `xml:"dur,attr"`
	Body  string  `xml:",chardata"`
}

// Fetch retrieves the transcript segments of the video, in time order.
func (f *YouTubeFetcher) Fetch(ctx context.Context, videoID string) ([]Segment, error) {
	endpoint := fmt.Sprintf("%s?lang=%s&v=%s", f.baseURL, url.QueryEscape(f.lang), url.QueryEscape(videoID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcript fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcript fetch: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transcript fetch: %w", err)
	}

	var parsed timedText
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("transcript parse: %w", err)
	}

	segments := make([]Segment, 0, len(parsed.Texts))
	for _, line := range parsed.Texts {
		text := html.UnescapeString(line.Body)
		if text == "" {
			continue
		}
		segments = append(segments, Segment{
			Offset:   time.Duration(line.Start * float64(time.Second)),
			Duration: time.Duration(line.Dur * float64(time.Second)),
			Text:     text,
		})
	}

	f.logger.Debug("fetched transcript", "videoID", videoID, "segments", len(segments))
	return segments, nil
}
