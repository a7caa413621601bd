package ai

const (
	// MaxEmbedChars is the model-safe input budget for one embedding call.
	MaxEmbedChars = 25_000

	// MaxSummaryInputChars is the generation-safe input budget for one
	// summarization call.
	MaxSummaryInputChars = 15_000
)

// Role identifies the author of a conversation turn.
type Role int

const (
	// RoleUser is the human side of the conversation.
	RoleUser Role = iota + 1
	// RoleAssistant is the model side of the conversation.
	RoleAssistant
)

// Turn is one message in a conversation history.
type Turn struct {
	Role    Role
	Content string
}

// MediaPart is a binary payload inlined into a multimodal generation call.
type MediaPart struct {
	MIMEType string
	Data     []byte
}

// GenerationRequest carries everything one generation call needs: optional
// system instructions, the capped conversation history, the current prompt,
// and any inlined media.
type GenerationRequest struct {
	System  string
	History []Turn
	Prompt  string
	Media   []MediaPart
}

// TruncateChars cuts text to at most limit bytes, never splitting a UTF-8
// sequence. Model input budgets are character counts in spirit but byte
// counts in enforcement; the difference is slack, not correctness.
func TruncateChars(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	cut := text[:limit]
	// Back up over a partial rune at the boundary.
	for len(cut) > 0 && cut[len(cut)-1]&0xC0 == 0x80 {
		cut = cut[:len(cut)-1]
	}
	return cut
}
