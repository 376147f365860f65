package service

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gupta362/project-forge/internal/domain"
)

// ChunkConfig controls the size envelope for document chunks. Sizes are
// estimated tokens, not characters.
type ChunkConfig struct {
	MinTokens    int
	MaxTokens    int
	ParentBudget int
}

// DefaultChunkConfig returns the tuned defaults: leaves between 100 and
// 500 tokens, parent sections capped at 2000.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MinTokens:    100,
		MaxTokens:    500,
		ParentBudget: 2000,
	}
}

// estimateTokens approximates token count from whitespace-separated words.
// English prose averages roughly 1.3 tokens per word.
func estimateTokens(text string) int {
	words := len(strings.Fields(text))
	return int(float64(words) * 1.3)
}

// ConvertToMarkdown turns an uploaded file into markdown text. Markdown
// and plain text pass through as-is; binary payloads behind a text
// extension and unsupported types are rejected.
func ConvertToMarkdown(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown", ".txt":
		if !utf8.Valid(data) {
			return "", domain.ConversionError(filename, domain.ErrFileConversion)
		}
		return string(data), nil
	default:
		return "", domain.ConversionError(filename, domain.ErrUnsupportedFileType)
	}
}

var headingRe = regexp.MustCompile(`^(#{1,3})\s+(.*)$`)

// SplitByHeaders cuts markdown at heading levels 1 through 3, tracking the
// ancestor heading path for each section. Content before the first heading
// becomes a level-0 "Introduction" chunk. Deeper headings stay inside
// their enclosing section's text.
func SplitByHeaders(markdown, source string) []domain.Chunk {
	lines := strings.Split(markdown, "\n")

	var chunks []domain.Chunk
	var ancestors []string // heading titles, outermost first
	var levels []int       // matching heading levels
	var buf []string
	bufLevel := 0

	flush := func() {
		text := strings.TrimSpace(strings.Join(buf, "\n"))
		buf = nil
		if text == "" {
			return
		}
		path := make([]string, len(ancestors))
		copy(path, ancestors)
		if len(path) == 0 {
			path = []string{"Introduction"}
		}
		chunks = append(chunks, domain.Chunk{
			Text:          text,
			HeaderPath:    path,
			Level:         bufLevel,
			ContextHeader: contextHeader(source, path),
		})
	}

	for _, line := range lines {
		m := headingRe.FindStringSubmatch(line)
		if m == nil {
			buf = append(buf, line)
			continue
		}
		flush()

		level := len(m[1])
		title := strings.TrimSpace(m[2])

		// Pop ancestors at or below this level, then push.
		for len(levels) > 0 && levels[len(levels)-1] >= level {
			ancestors = ancestors[:len(ancestors)-1]
			levels = levels[:len(levels)-1]
		}
		ancestors = append(ancestors, title)
		levels = append(levels, level)

		bufLevel = level
		buf = append(buf, line)
	}
	flush()

	return chunks
}

func contextHeader(source string, path []string) string {
	return fmt.Sprintf("[Source: %s > %s]", source, strings.Join(path, " > "))
}

// EnforceChunkSizes splits oversized chunks along paragraph then sentence
// boundaries, and merges undersized chunks forward into the next chunk
// when both sit at the same heading level. A trailing small chunk stays
// as-is rather than merging backward across a section boundary.
func EnforceChunkSizes(chunks []domain.Chunk, cfg ChunkConfig) []domain.Chunk {
	var sized []domain.Chunk
	for _, c := range chunks {
		if estimateTokens(c.Text) <= cfg.MaxTokens {
			sized = append(sized, c)
			continue
		}
		for _, part := range splitOversized(c.Text, cfg.MaxTokens) {
			piece := c
			piece.Text = part
			sized = append(sized, piece)
		}
	}

	var merged []domain.Chunk
	for i := 0; i < len(sized); i++ {
		c := sized[i]
		if estimateTokens(c.Text) < cfg.MinTokens &&
			i+1 < len(sized) && sized[i+1].Level == c.Level {
			next := sized[i+1]
			next.Text = c.Text + "\n\n" + next.Text
			sized[i+1] = next
			continue
		}
		merged = append(merged, c)
	}
	return merged
}

// splitOversized cuts text into pieces at or under maxTokens, preferring
// paragraph breaks and falling back to sentence boundaries for paragraphs
// that are themselves too large.
func splitOversized(text string, maxTokens int) []string {
	var units []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if estimateTokens(para) <= maxTokens {
			units = append(units, para)
			continue
		}
		units = append(units, splitSentences(para)...)
	}

	var parts []string
	var cur []string
	curTokens := 0
	for _, u := range units {
		t := estimateTokens(u)
		if curTokens > 0 && curTokens+t > maxTokens {
			parts = append(parts, strings.Join(cur, "\n\n"))
			cur, curTokens = nil, 0
		}
		cur = append(cur, u)
		curTokens += t
	}
	if len(cur) > 0 {
		parts = append(parts, strings.Join(cur, "\n\n"))
	}
	return parts
}

// splitSentences breaks prose after sentence-ending punctuation followed
// by whitespace. Good enough for planning documents; exotic punctuation
// just yields a longer sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		if (text[i] == '.' || text[i] == '!' || text[i] == '?') &&
			(text[i+1] == ' ' || text[i+1] == '\n') {
			s := strings.TrimSpace(text[start : i+1])
			if s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// GroupParents assigns each leaf chunk to a parent section. Consecutive
// leaves sharing a top-level heading form one parent; a parent whose
// accumulated text would exceed the budget is split into numbered
// sub-groups. Parent ids are the first 12 hex chars of the MD5 of the
// parent text, so an unchanged section keeps its id across re-ingests.
func GroupParents(chunks []domain.Chunk, cfg ChunkConfig) []domain.Chunk {
	out := make([]domain.Chunk, 0, len(chunks))
	for start := 0; start < len(chunks); {
		root := topHeading(chunks[start])
		end := start + 1
		for end < len(chunks) && topHeading(chunks[end]) == root {
			end++
		}
		section := chunks[start:end]

		// Split the section into sub-groups under the token budget.
		groupStart := 0
		groupTokens := 0
		for i := 0; i <= len(section); i++ {
			atEnd := i == len(section)
			var t int
			if !atEnd {
				t = estimateTokens(section[i].Text)
			}
			if !atEnd && (groupTokens == 0 || groupTokens+t <= cfg.ParentBudget) {
				groupTokens += t
				continue
			}
			group := section[groupStart:i]
			texts := make([]string, len(group))
			for j, c := range group {
				texts[j] = c.Text
			}
			parentText := strings.Join(texts, "\n\n")
			parentID := hashParent(parentText)
			for j, c := range group {
				c.ParentText = parentText
				c.ParentID = parentID
				c.LeafIndex = j
				out = append(out, c)
			}
			groupStart = i
			groupTokens = t
		}
		start = end
	}
	return out
}

func topHeading(c domain.Chunk) string {
	if len(c.HeaderPath) == 0 {
		return ""
	}
	return c.HeaderPath[0]
}

func hashParent(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])[:12]
}

// ProcessFile runs the full pipeline: convert, split by headers, enforce
// sizes, group parents. The returned chunks are ready for embedding.
func ProcessFile(filename string, data []byte, cfg ChunkConfig) ([]domain.Chunk, error) {
	markdown, err := ConvertToMarkdown(filename, data)
	if err != nil {
		return nil, err
	}
	chunks := SplitByHeaders(markdown, filename)
	chunks = EnforceChunkSizes(chunks, cfg)
	return GroupParents(chunks, cfg), nil
}
