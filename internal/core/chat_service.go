package core

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/paperchat/paperchat/internal/store"
)

const (
	summaryPromptPrefix = "Summarize this research paper: "

	// summaryPromptLimit bounds how much extracted text goes into the
	// summary prompt, counted in runes to match character semantics.
	summaryPromptLimit = 2000
)

type ChatService struct {
	dbStore   *store.SQLiteStore
	llm       Completer // nil when no API key is configured
	extractor Extractor
	uploadDir string
}

func NewChatService(db *store.SQLiteStore, llm Completer, extractor Extractor, uploadDir string) *ChatService {
	return &ChatService{
		dbStore:   db,
		llm:       llm,
		extractor: extractor,
		uploadDir: uploadDir,
	}
}

func (s *ChatService) Signup(username, password string) error {
	return s.dbStore.CreateUser(username, password)
}

func (s *ChatService) Login(username, password string) (bool, error) {
	return s.dbStore.VerifyUser(username, password)
}

// Chat runs one completion round trip and records it. With no thread id
// it creates a new thread, generating a short title from the first
// message; with an id it appends the Q/A pair to that thread. Appends
// go to the thread named by the id alone, whoever sent the request.
func (s *ChatService) Chat(ctx context.Context, username, message, modelName string, threadID *int64) (string, int64, error) {
	if s.llm == nil {
		return "", 0, ErrCompletionsDisabled
	}
	if modelName == "" {
		modelName = DefaultChatModelName
	}

	temperature := float32(0.7)
	answer, err := s.llm.Complete(ctx, modelName, message, &CompletionOptions{Temperature: &temperature})
	if err != nil {
		return "", 0, err
	}

	if threadID != nil {
		if err := s.dbStore.AppendToThread(*threadID, message, answer); err != nil {
			return "", 0, err
		}
		return answer, *threadID, nil
	}

	title, err := s.llm.GenerateTitle(ctx, message)
	if err != nil {
		return "", 0, err
	}

	id, err := s.dbStore.CreateThread(username, title, message, answer)
	if err != nil {
		return "", 0, err
	}
	return answer, id, nil
}

func (s *ChatService) History(username string) ([]store.Thread, error) {
	return s.dbStore.ListThreads(username)
}

func (s *ChatService) DeleteThread(id int64) error {
	return s.dbStore.DeleteThread(id)
}

// SummarizeUpload extracts the text of an uploaded PDF, asks the
// lighter-weight model for a summary of its head, and records the
// result as a new thread titled after the file.
func (s *ChatService) SummarizeUpload(ctx context.Context, username, filename string, data []byte) (string, int64, error) {
	if s.llm == nil {
		return "", 0, ErrCompletionsDisabled
	}

	s.spoolUpload(filename, data)

	text, err := s.extractor.ExtractText(data)
	if err != nil {
		return "", 0, err
	}

	body := []rune(text)
	if len(body) > summaryPromptLimit {
		body = body[:summaryPromptLimit]
	}

	summary, err := s.llm.Complete(ctx, lightModelName, summaryPromptPrefix+string(body), nil)
	if err != nil {
		return "", 0, err
	}

	id, err := s.dbStore.CreateThread(username, filename, "Uploaded: "+filename, summary)
	if err != nil {
		return "", 0, err
	}
	return summary, id, nil
}

// spoolUpload retains the raw upload on disk for later inspection.
// Retention is best effort and never fails the request.
func (s *ChatService) spoolUpload(filename string, data []byte) {
	if s.uploadDir == "" {
		return
	}
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		log.Printf("Failed to create upload dir %s: %v", s.uploadDir, err)
		return
	}
	path := filepath.Join(s.uploadDir, fmt.Sprintf("%s.pdf", uuid.NewString()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("Failed to spool upload %s: %v", filename, err)
		return
	}
	log.Printf("Spooled upload %s to %s", filename, path)
}
