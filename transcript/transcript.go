// Package transcript provides the transcript-fetch collaborator: external
// video id in, ordered (offset, duration, text) segments out. Fetch failures
// are expected (the feature may simply be disabled) and callers treat them as
// non-fatal.
package transcript

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrDisabled indicates transcript fetching is not configured.
	ErrDisabled = errors.New("transcript fetching disabled")

	// ErrNoVideoID indicates a source URL with no recognizable video id.
	ErrNoVideoID = errors.New("no video id in source url")
)

// Segment is one timed piece of a transcript.
type Segment struct {
	Offset   time.Duration
	Duration time.Duration
	Text     string
}

// End returns the instant the segment stops.
func (s Segment) End() time.Duration {
	return s.Offset + s.Duration
}

// Fetcher retrieves the transcript of an external video.
// Implementations must be thread-safe for concurrent use.
type Fetcher interface {
	// Fetch returns the transcript segments of the video, in time order.
	Fetch(ctx context.Context, videoID string) ([]Segment, error)
}

// Disabled is a Fetcher that always fails with ErrDisabled.
// It is the default when no transcript service is configured.
type Disabled struct{}

var _ Fetcher = Disabled{}

// Fetch always returns ErrDisabled.
func (Disabled) Fetch(ctx context.Context, videoID string) ([]Segment, error) {
	return nil, ErrDisabled
}

// ExtractVideoID pulls the video id out of a youtu.be or youtube.com URL.
func ExtractVideoID(sourceURL string) (string, error) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return "", ErrNoVideoID
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	switch host {
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		if id == "" {
			return "", ErrNoVideoID
		}
		return id, nil
	case "youtube.com", "m.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return id, nil
		}
		// Shorts and embeds carry the id in the path.
		for _, prefix := range []string{"/shorts/", "/embed/"} {
			if strings.HasPrefix(u.Path, prefix) {
				if id := strings.Trim(strings.TrimPrefix(u.Path, prefix), "/"); id != "" {
					return id, nil
				}
			}
		}
	}
	return "", ErrNoVideoID
}
