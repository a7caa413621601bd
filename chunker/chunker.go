// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package chunker turns arbitrary-length text into bounded, semantically
// coherent chunks. It is pure and deterministic: the same input and options
// always produce the same output, in input order.
package chunker

import (
	"regexp"
	"strings"
)

const (
	// DefaultMaxWords is the word cap per chunk when none is configured.
	DefaultMaxWords = 500

	// generatedSizeThreshold is the byte size above which content matching a
	// known auto-generated-artifact filename is never chunked.
	generatedSizeThreshold = 50_000
)

// Options configures a chunking run.
type Options struct {
	// FileNameHint, when set, enables suppression of oversized auto-generated
	// artifacts such as lockfiles and minified assets.
	FileNameHint string

	// MaxWords caps the whitespace-delimited word count per chunk.
	// Zero or negative means DefaultMaxWords.
	MaxWords int
}

// generatedFilePatterns match filenames of auto-generated artifacts whose
// content carries no semantic value worth embedding.
var generatedFilePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^package-lock\.json$`),
	regexp.MustCompile(`(?i)^yarn\.lock$`),
	regexp.MustCompile(`(?i)^pnpm-lock\.ya?ml$`),
	regexp.MustCompile(`(?i)^cargo\.lock$`),
	regexp.MustCompile(`(?i)^gemfile\.lock$`),
	regexp.MustCompile(`(?i)^poetry\.lock$`),
	regexp.MustCompile(`(?i)^composer\.lock$`),
	regexp.MustCompile(`(?i)^go\.sum$`),
	regexp.MustCompile(`(?i)\.min\.(js|css)$`),
	regexp.MustCompile(`(?i)\.(js|css)\.map$`),
	regexp.MustCompile(`(?i)^bundle\.js$`),
}

var sentenceBoundary = regexp.MustCompile(`([.!?])\s+`)

// Chunk splits text into ordered chunks of at most opts.MaxWords words each.
//
// Paragraphs (blank-line separated) are accumulated greedily; a paragraph that
// alone exceeds the cap is split on sentence boundaries, and a single sentence
// longer than the cap is kept whole in its own chunk. Whitespace-only input
// and oversized auto-generated artifacts produce no chunks.
func Chunk(text string, opts Options) []string {
	maxWords := opts.MaxWords
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}

	if strings.TrimSpace(text) == "" {
		return nil
	}

	if opts.FileNameHint != "" && len(text) > generatedSizeThreshold && isGeneratedFileName(opts.FileNameHint) {
		return nil
	}

	paragraphs := splitParagraphs(text)

	var chunks []string
	var buffer []string
	bufferWords := 0

	flush := func() {
		if len(buffer) > 0 {
			chunks = append(chunks, strings.Join(buffer, "\n\n"))
			buffer = nil
			bufferWords = 0
		}
	}

	for _, paragraph := range paragraphs {
		words := wordCount(paragraph)

		if words > maxWords {
			// Oversized paragraph: flush pending, then pack sentences.
			flush()
			chunks = append(chunks, splitBySentences(paragraph, maxWords)...)
			continue
		}

		if bufferWords+words > maxWords {
			flush()
		}
		buffer = append(buffer, paragraph)
		bufferWords += words
	}
	flush()

	return chunks
}

// isGeneratedFileName reports whether the hint's base name matches a known
// auto-generated-artifact pattern.
func isGeneratedFileName(hint string) bool {
	base := hint
	if idx := strings.LastIndexAny(hint, `/\`); idx >= 0 {
		base = hint[idx+1:]
	}
	for _, pattern := range generatedFilePatterns {
		if pattern.MatchString(base) {
			return true
		}
	}
	return false
}

// splitParagraphs splits text on blank-line boundaries, trimming each
// paragraph and dropping empty ones.
func splitParagraphs(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	raw := strings.Split(normalized, "\n\n")
	paragraphs := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// splitBySentences greedily packs the paragraph's sentences into sub-chunks
// under maxWords. A sentence that alone exceeds the cap becomes its own chunk,
// never split further.
func splitBySentences(paragraph string, maxWords int) []string {
	sentences := splitSentences(paragraph)

	var chunks []string
	var buffer []string
	bufferWords := 0

	flush := func() {
		if len(buffer) > 0 {
			chunks = append(chunks, strings.Join(buffer, " "))
			buffer = nil
			bufferWords = 0
		}
	}

	for _, sentence := range sentences {
		words := wordCount(sentence)

		if words > maxWords {
			flush()
			chunks = append(chunks, sentence)
			continue
		}

		if bufferWords+words > maxWords {
			flush()
		}
		buffer = append(buffer, sentence)
		bufferWords += words
	}
	flush()

	return chunks
}

// splitSentences splits on terminal punctuation followed by whitespace,
// keeping the punctuation with the preceding sentence.
func splitSentences(text string) []string {
	marked := sentenceBoundary.ReplaceAllString(text, "$1\x00")
	raw := strings.Split(marked, "\x00")
	sentences := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// wordCount counts whitespace-delimited non-empty tokens.
func wordCount(text string) int {
	return len(strings.Fields(text))
}
