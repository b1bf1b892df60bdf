package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/paperchat/paperchat/internal/core"
	"github.com/paperchat/paperchat/internal/store"
)

type scriptedCompleter struct {
	answers []string
	title   string
}

func (s *scriptedCompleter) Complete(_ context.Context, _, _ string, _ *core.CompletionOptions) (string, error) {
	if len(s.answers) == 0 {
		return "canned answer", nil
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

func (s *scriptedCompleter) GenerateTitle(_ context.Context, _ string) (string, error) {
	return s.title, nil
}

type fixedExtractor struct {
	text string
	err  error
}

func (f *fixedExtractor) ExtractText(_ []byte) (string, error) {
	return f.text, f.err
}

func newTestServer(t *testing.T, llm core.Completer, extractor core.Extractor) http.Handler {
	t.Helper()
	db, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if extractor == nil {
		extractor = &fixedExtractor{}
	}
	svc := core.NewChatService(db, llm, extractor, "")
	return NewRouter(NewAPIHandler(svc), []string{"*"})
}

func doJSONRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d (body: %s)", want, rec.Code, rec.Body.String())
	}
}

func decodeJSON(t *testing.T, data []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode response %q: %v", data, err)
	}
}

func TestSignupLoginFlow(t *testing.T) {
	router := newTestServer(t, nil, nil)

	resp := doJSONRequest(t, router, http.MethodPost, "/signup", map[string]string{
		"username": "alice", "password": "pw1",
	})
	assertStatus(t, resp, http.StatusOK)

	// Second signup with the same username is rejected.
	resp = doJSONRequest(t, router, http.MethodPost, "/signup", map[string]string{
		"username": "alice", "password": "pw1",
	})
	assertStatus(t, resp, http.StatusBadRequest)

	resp = doJSONRequest(t, router, http.MethodPost, "/login", map[string]string{
		"username": "alice", "password": "pw1",
	})
	assertStatus(t, resp, http.StatusOK)

	resp = doJSONRequest(t, router, http.MethodPost, "/login", map[string]string{
		"username": "alice", "password": "wrong",
	})
	assertStatus(t, resp, http.StatusUnauthorized)
}

func TestSignupRejectsMalformedRequests(t *testing.T) {
	router := newTestServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assertStatus(t, rec, http.StatusBadRequest)

	resp := doJSONRequest(t, router, http.MethodPost, "/signup", map[string]string{"username": "x"})
	assertStatus(t, resp, http.StatusBadRequest)
}

func TestChatCreateThenContinueThread(t *testing.T) {
	llm := &scriptedCompleter{answers: []string{"first answer", "second answer"}, title: "Bob Topic"}
	router := newTestServer(t, llm, nil)

	resp := doJSONRequest(t, router, http.MethodPost, "/chat", map[string]any{
		"username": "bob", "message": "hi",
	})
	assertStatus(t, resp, http.StatusOK)
	var first ChatResponse
	decodeJSON(t, resp.Body.Bytes(), &first)
	if first.ChatID <= 0 || first.Response != "first answer" {
		t.Fatalf("unexpected first chat response %+v", first)
	}

	resp = doJSONRequest(t, router, http.MethodPost, "/chat", map[string]any{
		"username": "bob", "message": "more", "chat_id": first.ChatID,
	})
	assertStatus(t, resp, http.StatusOK)
	var second ChatResponse
	decodeJSON(t, resp.Body.Bytes(), &second)
	if second.ChatID != first.ChatID {
		t.Fatalf("expected same chat id %d, got %d", first.ChatID, second.ChatID)
	}

	resp = doJSONRequest(t, router, http.MethodGet, "/history/bob", nil)
	assertStatus(t, resp, http.StatusOK)
	var threads []store.Thread
	decodeJSON(t, resp.Body.Bytes(), &threads)
	if len(threads) != 1 {
		t.Fatalf("expected 1 thread in history, got %d", len(threads))
	}
	th := threads[0]
	if th.Title != "Bob Topic" || th.Question != "hi" {
		t.Fatalf("unexpected thread %+v", th)
	}
	if !strings.Contains(th.Answer, "first answer") || !strings.Contains(th.Answer, "second answer") {
		t.Fatalf("answer missing an exchange: %q", th.Answer)
	}
}

func TestChatZeroChatIDStartsNewThread(t *testing.T) {
	llm := &scriptedCompleter{answers: []string{"an answer"}, title: "T"}
	router := newTestServer(t, llm, nil)

	resp := doJSONRequest(t, router, http.MethodPost, "/chat", map[string]any{
		"username": "bob", "message": "hi", "chat_id": 0,
	})
	assertStatus(t, resp, http.StatusOK)
	var body ChatResponse
	decodeJSON(t, resp.Body.Bytes(), &body)
	if body.ChatID <= 0 {
		t.Fatalf("expected a new thread id, got %d", body.ChatID)
	}

	resp = doJSONRequest(t, router, http.MethodGet, "/history/bob", nil)
	assertStatus(t, resp, http.StatusOK)
	var threads []store.Thread
	decodeJSON(t, resp.Body.Bytes(), &threads)
	if len(threads) != 1 {
		t.Fatalf("expected 1 thread, got %d", len(threads))
	}
}

func TestChatWithoutAPIKeyFails(t *testing.T) {
	router := newTestServer(t, nil, nil)

	resp := doJSONRequest(t, router, http.MethodPost, "/chat", map[string]any{
		"username": "bob", "message": "hi",
	})
	assertStatus(t, resp, http.StatusInternalServerError)
	if !strings.Contains(resp.Body.String(), "API key missing") {
		t.Fatalf("expected disabled-state message, got %s", resp.Body.String())
	}
}

func TestHistoryForUnknownUserIsEmptyArray(t *testing.T) {
	router := newTestServer(t, nil, nil)

	resp := doJSONRequest(t, router, http.MethodGet, "/history/nobody", nil)
	assertStatus(t, resp, http.StatusOK)
	if got := strings.TrimSpace(resp.Body.String()); got != "[]" {
		t.Fatalf("expected empty array, got %s", got)
	}
}

func TestDeleteChatUnknownIDSucceeds(t *testing.T) {
	router := newTestServer(t, nil, nil)

	resp := doJSONRequest(t, router, http.MethodDelete, "/delete_chat/999", nil)
	assertStatus(t, resp, http.StatusOK)
	var body map[string]string
	decodeJSON(t, resp.Body.Bytes(), &body)
	if body["message"] != "Thread deleted" {
		t.Fatalf("unexpected body %v", body)
	}

	resp = doJSONRequest(t, router, http.MethodDelete, "/delete_chat/not-a-number", nil)
	assertStatus(t, resp, http.StatusBadRequest)
}

func TestDeleteChatRemovesThread(t *testing.T) {
	llm := &scriptedCompleter{answers: []string{"answer"}, title: "T"}
	router := newTestServer(t, llm, nil)

	resp := doJSONRequest(t, router, http.MethodPost, "/chat", map[string]any{
		"username": "bob", "message": "hi",
	})
	assertStatus(t, resp, http.StatusOK)
	var chat ChatResponse
	decodeJSON(t, resp.Body.Bytes(), &chat)

	resp = doJSONRequest(t, router, http.MethodDelete, "/delete_chat/"+strconv.FormatInt(chat.ChatID, 10), nil)
	assertStatus(t, resp, http.StatusOK)

	resp = doJSONRequest(t, router, http.MethodGet, "/history/bob", nil)
	assertStatus(t, resp, http.StatusOK)
	if got := strings.TrimSpace(resp.Body.String()); got != "[]" {
		t.Fatalf("expected empty history after delete, got %s", got)
	}
}

func TestUploadPDFSummarizes(t *testing.T) {
	llm := &scriptedCompleter{answers: []string{"a fine paper"}}
	extractor := &fixedExtractor{text: "extracted paper body"}
	router := newTestServer(t, llm, extractor)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "paper.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("%PDF fake bytes")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload-pdf/bob", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assertStatus(t, rec, http.StatusOK)

	var body UploadResponse
	decodeJSON(t, rec.Body.Bytes(), &body)
	if body.Response != "a fine paper" || body.Filename != "paper.pdf" || body.ChatID <= 0 {
		t.Fatalf("unexpected upload response %+v", body)
	}

	resp := doJSONRequest(t, router, http.MethodGet, "/history/bob", nil)
	assertStatus(t, resp, http.StatusOK)
	var threads []store.Thread
	decodeJSON(t, resp.Body.Bytes(), &threads)
	if len(threads) != 1 {
		t.Fatalf("expected 1 thread, got %d", len(threads))
	}
	if threads[0].Question != "Uploaded: paper.pdf" || threads[0].Title != "paper.pdf" {
		t.Fatalf("unexpected thread %+v", threads[0])
	}
}

func TestUploadPDFRejectsMissingFile(t *testing.T) {
	router := newTestServer(t, &scriptedCompleter{}, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("unrelated", "value")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload-pdf/bob", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assertStatus(t, rec, http.StatusBadRequest)
}

func TestUploadPDFSurfacesExtractionFailure(t *testing.T) {
	llm := &scriptedCompleter{}
	extractor := &fixedExtractor{err: core.ErrUnparsableDocument}
	router := newTestServer(t, llm, extractor)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "junk.pdf")
	part.Write([]byte("junk"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload-pdf/bob", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assertStatus(t, rec, http.StatusInternalServerError)
	if !strings.Contains(rec.Body.String(), "unparsable document") {
		t.Fatalf("expected unparsable document message, got %s", rec.Body.String())
	}
}
