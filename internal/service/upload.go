package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/gupta362/project-forge/internal/domain"
)

// summaryExcerptChars is how much of a document the summary call sees.
const summaryExcerptChars = 8000

// Uploader handles document intake: preserve the original bytes, convert,
// summarize, and ingest into the vector store. The original file is
// written before any fallible step so a conversion or embedding failure
// never loses user data.
type Uploader struct {
	dir     string
	engine  *Engine
	chat    ChatClient
	summary string // model used for file summaries; empty disables
	log     *zap.Logger
}

func NewUploader(dir string, engine *Engine, chat ChatClient, summaryModel string, log *zap.Logger) *Uploader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Uploader{dir: dir, engine: engine, chat: chat, summary: summaryModel, log: log}
}

// Upload processes one file and records it on the session. Returns the
// file summary entry that was added.
func (u *Uploader) Upload(ctx context.Context, sess *domain.Session, filename string, data []byte) (domain.FileSummary, error) {
	filename = filepath.Base(filename)
	if filename == "" || filename == "." {
		return domain.FileSummary{}, domain.NewDomainError(domain.ErrCodeValidation, "missing filename")
	}

	if u.dir != "" {
		if err := os.MkdirAll(u.dir, 0o755); err != nil {
			return domain.FileSummary{}, fmt.Errorf("create uploads dir: %w", err)
		}
		if err := os.WriteFile(filepath.Join(u.dir, filename), data, 0o644); err != nil {
			return domain.FileSummary{}, fmt.Errorf("save upload %s: %w", filename, err)
		}
	}

	markdown, err := ConvertToMarkdown(filename, data)
	if err != nil {
		return domain.FileSummary{}, err
	}

	chunkCount := 0
	if u.engine.Enabled() {
		chunkCount, err = u.engine.IngestFile(ctx, filename, data)
		if err != nil {
			return domain.FileSummary{}, err
		}
	}

	entry := domain.FileSummary{
		Filename:   filename,
		Summary:    u.summarize(ctx, filename, markdown),
		UploadedAt: time.Now().UTC().Format(time.RFC3339),
		ChunkCount: chunkCount,
	}

	// Replace a previous upload of the same filename.
	replaced := false
	for i, f := range sess.FileSummaries {
		if f.Filename == filename {
			sess.FileSummaries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		sess.FileSummaries = append(sess.FileSummaries, entry)
	}

	u.log.Info("file uploaded",
		zap.String("filename", filename),
		zap.Int("chunks", chunkCount))
	return entry, nil
}

// Remove deletes a file's chunks from the vector store and its entry from
// the session. The original upload stays on disk.
func (u *Uploader) Remove(ctx context.Context, sess *domain.Session, filename string) error {
	if u.engine.Enabled() {
		if _, err := u.engine.RemoveFile(ctx, filename); err != nil {
			return err
		}
	}
	for i, f := range sess.FileSummaries {
		if f.Filename == filename {
			sess.FileSummaries = append(sess.FileSummaries[:i], sess.FileSummaries[i+1:]...)
			return nil
		}
	}
	return domain.ErrDocumentNotFound
}

// summarize produces the one-paragraph description injected into prompts.
// Best-effort: with no summary model, or on provider failure, it falls
// back to the document's opening text.
func (u *Uploader) summarize(ctx context.Context, filename, markdown string) string {
	excerpt := markdown
	if len(excerpt) > summaryExcerptChars {
		excerpt = excerpt[:summaryExcerptChars]
	}

	if u.chat != nil && u.summary != "" {
		resp, err := u.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: u.summary,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: "Summarize this document in two sentences " +
					"for a product manager deciding whether to read it. Respond with the summary only."},
				{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Filename: %s\n\n%s", filename, excerpt)},
			},
		})
		if err != nil {
			u.log.Warn("file summary failed", zap.String("filename", filename), zap.Error(err))
		} else if len(resp.Choices) > 0 {
			if text := strings.TrimSpace(resp.Choices[0].Message.Content); text != "" {
				return text
			}
		}
	}

	return fallbackSummary(excerpt)
}

func fallbackSummary(text string) string {
	text = strings.TrimSpace(text)
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return strings.ReplaceAll(text, "\n", " ")
}
