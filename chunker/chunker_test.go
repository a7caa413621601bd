package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeWords builds a paragraph of n distinct words.
func makeWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestChunk_EmptyInput(t *testing.T) {
	assert.Empty(t, Chunk("", Options{}))
	assert.Empty(t, Chunk("   \n\t\n  ", Options{}))
}

func TestChunk_SingleParagraph(t *testing.T) {
	chunks := Chunk("just one short paragraph", Options{})
	require.Len(t, chunks, 1)
	assert.Equal(t, "just one short paragraph", chunks[0])
}

func TestChunk_TwoParagraphsUnderCap(t *testing.T) {
	text := "first paragraph here\n\nsecond paragraph here"
	chunks := Chunk(text, Options{})
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestChunk_ParagraphsSplitAtCap(t *testing.T) {
	p1 := makeWords(300)
	p2 := makeWords(300)
	chunks := Chunk(p1+"\n\n"+p2, Options{})
	require.Len(t, chunks, 2)
	assert.Equal(t, p1, chunks[0])
	assert.Equal(t, p2, chunks[1])
}

func TestChunk_ParagraphExactlyAtCap(t *testing.T) {
	// A paragraph of exactly MaxWords words lands in a single chunk.
	p := makeWords(500)
	chunks := Chunk(p, Options{})
	require.Len(t, chunks, 1)
	assert.Equal(t, p, chunks[0])
}

func TestChunk_ParagraphOneWordOverCap(t *testing.T) {
	// One word over the cap triggers sentence-level splitting. With no
	// sentence boundaries the whole paragraph stays a single oversized chunk.
	p := makeWords(501)
	chunks := Chunk(p, Options{})
	require.Len(t, chunks, 1)
	assert.Equal(t, p, chunks[0])
}

func TestChunk_OversizedParagraphSplitsOnSentences(t *testing.T) {
	s1 := "alpha " + makeWords(6) + "."
	s2 := "beta " + makeWords(6) + "!"
	s3 := "gamma " + makeWords(6) + "?"
	paragraph := s1 + " " + s2 + " " + s3

	chunks := Chunk(paragraph, Options{MaxWords: 10})
	require.Len(t, chunks, 3)
	assert.Equal(t, s1, chunks[0])
	assert.Equal(t, s2, chunks[1])
	assert.Equal(t, s3, chunks[2])
}

func TestChunk_SentencesPackGreedily(t *testing.T) {
	sentences := []string{"one two three.", "four five six.", "seven eight nine."}
	paragraph := strings.Join(sentences, " ") + " " + makeWords(20)

	chunks := Chunk(paragraph, Options{MaxWords: 8})
	// First two sentences pack together (6 words), third flushes at 9.
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, "one two three. four five six.", chunks[0])
}

func TestChunk_OversizedSentenceKeptWhole(t *testing.T) {
	sentence := makeWords(30) // no terminal punctuation, one long sentence
	chunks := Chunk(sentence, Options{MaxWords: 10})
	require.Len(t, chunks, 1)
	assert.Equal(t, sentence, chunks[0])
}

func TestChunk_OversizedParagraphFlushesPendingBuffer(t *testing.T) {
	small := "a small paragraph"
	big := makeWords(15)
	chunks := Chunk(small+"\n\n"+big, Options{MaxWords: 10})
	require.Len(t, chunks, 2)
	assert.Equal(t, small, chunks[0])
	assert.Equal(t, big, chunks[1])
}

func TestChunk_NoEmptyChunks(t *testing.T) {
	text := "one.\n\n\n\n   \n\ntwo.\n\nthree."
	chunks := Chunk(text, Options{MaxWords: 2})
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
}

func TestChunk_Deterministic(t *testing.T) {
	text := makeWords(80) + ".\n\n" + makeWords(40) + "."
	opts := Options{MaxWords: 50}
	first := Chunk(text, opts)
	second := Chunk(text, opts)
	assert.Equal(t, first, second)
}

func TestChunk_OrderFollowsInput(t *testing.T) {
	var paragraphs []string
	for i := 0; i < 10; i++ {
		paragraphs = append(paragraphs, fmt.Sprintf("paragraph number %d content", i))
	}
	chunks := Chunk(strings.Join(paragraphs, "\n\n"), Options{MaxWords: 4})
	require.Len(t, chunks, 10)
	for i, c := range chunks {
		assert.Equal(t, paragraphs[i], c)
	}
}

func TestChunk_GeneratedFileSuppressed(t *testing.T) {
	big := strings.Repeat("lorem ipsum dolor sit amet\n\n", 3000) // > 50k bytes

	assert.Empty(t, Chunk(big, Options{FileNameHint: "package-lock.json"}))
	assert.Empty(t, Chunk(big, Options{FileNameHint: "node_modules/app.min.js"}))
	assert.Empty(t, Chunk(big, Options{FileNameHint: "yarn.lock"}))
}

func TestChunk_GeneratedFileUnderThresholdKept(t *testing.T) {
	small := "a few words only"
	chunks := Chunk(small, Options{FileNameHint: "package-lock.json"})
	assert.Len(t, chunks, 1)
}

func TestChunk_BigContentWithOrdinaryNameKept(t *testing.T) {
	big := strings.Repeat("lorem ipsum dolor sit amet\n\n", 3000)
	chunks := Chunk(big, Options{FileNameHint: "notes.md"})
	assert.NotEmpty(t, chunks)
}
