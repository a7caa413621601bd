package retrieval

import (
	"fmt"
	"path"
	"strings"

	"github.com/poiesic/recallit/core"
)

// captureBlock rendering order follows the parent-capture fetch order,
// not similarity rank.
type captureBlock struct {
	capture     *core.Capture
	fragments   []string
	attachments []*core.Attachment
	activeFile  string
}

func renderBlocks(blocks []captureBlock) string {
	var b strings.Builder
	for i, block := range blocks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		renderBlock(&b, block)
	}
	return b.String()
}

func renderBlock(b *strings.Builder, block captureBlock) {
	capture := block.capture

	fmt.Fprintf(b, "## [%s]", capture.Type.String())
	if capture.PageTitle != "" {
		fmt.Fprintf(b, " %s", capture.PageTitle)
	}
	b.WriteString("\n")

	if capture.SourceURL != "" {
		fmt.Fprintf(b, "Source: %s\n", capture.SourceURL)
	}
	if block.activeFile != "" {
		fmt.Fprintf(b, "Active file: %s\n", block.activeFile)
	}
	if capture.Summary != "" {
		fmt.Fprintf(b, "Summary:\n%s\n", capture.Summary)
	}
	if capture.CodeDiff != "" {
		fmt.Fprintf(b, "Code diff:\n```diff\n%s\n```\n", capture.CodeDiff)
	}
	if len(block.attachments) > 0 {
		names := make([]string, len(block.attachments))
		for i, attachment := range block.attachments {
			names[i] = attachmentName(attachment)
		}
		fmt.Fprintf(b, "Attachments: %s\n", strings.Join(names, ", "))
	}

	for i, fragment := range block.fragments {
		fmt.Fprintf(b, "Fragment %d:\n%s\n", i+1, fragment)
	}
}

func attachmentName(attachment *core.Attachment) string {
	if attachment.DisplayName != "" {
		return attachment.DisplayName
	}
	return path.Base(attachment.ObjectKey)
}

// mimeTypeForKey infers a media MIME type from the object key
// extension. Unknown extensions default to a generic binary type.
func mimeTypeForKey(objectKey string) string {
	switch strings.ToLower(path.Ext(objectKey)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
