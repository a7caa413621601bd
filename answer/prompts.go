package answer

import "fmt"

const systemPromptTemplate = `You are an assistant answering questions about the user's own captured
knowledge: saved pages, video segments, notes, uploaded documents, and IDE
activity.

Ground every statement in the captured material below. Quote commands, error
messages, and code verbatim when they are relevant. If the material does not
cover the question, say so instead of guessing.

Captured material:

%s`

func renderSystemPrompt(contextText string) string {
	return fmt.Sprintf(systemPromptTemplate, contextText)
}
