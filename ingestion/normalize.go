package ingestion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/transcript"
)

// transcriptEndTolerance extends the requested end boundary when
// filtering transcript segments. The start boundary gets no slack.
const transcriptEndTolerance = 5 * time.Second

// normalize assembles the canonical text body for a capture. It returns
// the text and whether it differs from what is already stored.
func (p *Pipeline) normalize(ctx context.Context, capture *core.Capture) (string, bool) {
	switch capture.Type {
	case core.CaptureTypeVideoSegment:
		return p.normalizeVideo(ctx, capture)
	case core.CaptureTypeResourceUpload:
		return p.normalizeUpload(ctx, capture)
	case core.CaptureTypeIDEBugFix, core.CaptureTypeIDEProgress:
		body := normalizeIDE(capture)
		return body, body != capture.Text
	default:
		return strings.TrimSpace(capture.Text), false
	}
}

// normalizeVideo appends the fetched transcript to any pre-supplied
// text. Transcript failures are logged and the pre-supplied text is
// kept as-is.
func (p *Pipeline) normalizeVideo(ctx context.Context, capture *core.Capture) (string, bool) {
	base := strings.TrimSpace(capture.Text)
	if capture.SourceURL == "" {
		return base, false
	}

	videoID, err := transcript.ExtractVideoID(capture.SourceURL)
	if err != nil {
		p.logger.Warn("could not derive video id", "capture", capture.Id, "url", capture.SourceURL, "err", err)
		return base, false
	}

	segments, err := p.transcripts.Fetch(ctx, videoID)
	if err != nil {
		p.logger.Warn("transcript fetch failed", "capture", capture.Id, "video", videoID, "err", err)
		return base, false
	}

	kept := filterSegments(segments, capture.VideoStart, capture.VideoEnd)
	if len(kept) == 0 {
		return base, false
	}

	parts := make([]string, len(kept))
	for i, seg := range kept {
		parts[i] = seg.Text
	}
	transcriptText := strings.Join(parts, " ")

	if base == "" {
		return transcriptText, true
	}
	return base + "\n\n" + transcriptText, true
}

// filterSegments keeps the segments that lie within the requested time
// range. The rule is asymmetric: the segment must start at or after the
// requested start, and end no later than the requested end plus a small
// tolerance for trailing speech. A zero range keeps everything.
func filterSegments(segments []transcript.Segment, startSec, endSec float64) []transcript.Segment {
	if endSec <= startSec {
		return segments
	}

	start := secondsToDuration(startSec)
	end := secondsToDuration(endSec) + transcriptEndTolerance

	var kept []transcript.Segment
	for _, seg := range segments {
		if seg.Offset >= start && seg.End() <= end {
			kept = append(kept, seg)
		}
	}
	return kept
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}

// normalizeUpload appends the extracted text of document attachments to
// any pre-supplied text. Non-text attachments stay as multimodal
// payloads only.
func (p *Pipeline) normalizeUpload(ctx context.Context, capture *core.Capture) (string, bool) {
	base := strings.TrimSpace(capture.Text)
	if p.extractor == nil {
		return base, false
	}

	attachments, err := p.captures.ListAttachments(ctx, p.scope(), capture.Id)
	if err != nil {
		p.logger.Warn("could not list attachments", "capture", capture.Id, "err", err)
		return base, false
	}

	var extracted []string
	for _, attachment := range attachments {
		switch attachment.Kind {
		case core.AttachmentKindDocument, core.AttachmentKindGenericDoc, core.AttachmentKindRawTranscript:
		default:
			continue
		}
		text, err := p.extractor.Extract(ctx, attachment.ObjectKey)
		if err != nil {
			p.logger.Warn("text extraction failed", "capture", capture.Id, "object", attachment.ObjectKey, "err", err)
			continue
		}
		if text != "" {
			extracted = append(extracted, text)
		}
	}

	if len(extracted) == 0 {
		return base, false
	}
	body := strings.Join(extracted, "\n\n")
	if base == "" {
		return body, true
	}
	return base + "\n\n" + body, true
}

// normalizeIDE assembles a labeled body from the code-oriented fields.
func normalizeIDE(capture *core.Capture) string {
	var b strings.Builder
	if text := strings.TrimSpace(capture.Text); text != "" {
		b.WriteString(text)
	}
	appendLabeled(&b, "Error log", capture.ErrorLog)
	appendLabeled(&b, "Code diff", capture.CodeDiff)
	appendLabeled(&b, "File tree", capture.FileTree)
	return b.String()
}

func appendLabeled(b *strings.Builder, label, content string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	if b.Len() > 0 {
		b.WriteString("\n\n")
	}
	fmt.Fprintf(b, "%s:\n%s", label, content)
}
