package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/paperchat/paperchat/internal/core"
	"github.com/paperchat/paperchat/internal/store"
)

// maxUploadBytes caps how much of a multipart upload is held in memory
// before overflowing to temp files.
const maxUploadBytes = 32 << 20

type APIHandler struct {
	chatService *core.ChatService
}

func NewAPIHandler(cs *core.ChatService) *APIHandler {
	return &APIHandler{chatService: cs}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	if err := h.chatService.Signup(req.Username, req.Password); err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			writeError(w, http.StatusBadRequest, "User already exists")
			return
		}
		log.Printf("Error creating user %s: %v", req.Username, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Success"})
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	ok, err := h.chatService.Login(req.Username, req.Password)
	if err != nil {
		log.Printf("Error verifying user %s: %v", req.Username, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged in"})
}

type ChatRequest struct {
	Username string `json:"username"`
	Message  string `json:"message"`
	Model    string `json:"model,omitempty"`
	ChatID   *int64 `json:"chat_id,omitempty"`
}

type ChatResponse struct {
	Response string `json:"response"`
	ChatID   int64  `json:"chat_id"`
}

func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Username == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "Username and message are required")
		return
	}
	// A zero chat_id means "no thread yet", same as omitting the field.
	if req.ChatID != nil && *req.ChatID == 0 {
		req.ChatID = nil
	}

	answer, chatID, err := h.chatService.Chat(r.Context(), req.Username, req.Message, req.Model, req.ChatID)
	if err != nil {
		log.Printf("Error handling chat for user %s: %v", req.Username, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{Response: answer, ChatID: chatID})
}

func (h *APIHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	threads, err := h.chatService.History(username)
	if err != nil {
		log.Printf("Error listing history for user %s: %v", username, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if threads == nil {
		threads = []store.Thread{}
	}
	writeJSON(w, http.StatusOK, threads)
}

func (h *APIHandler) DeleteChatHandler(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(chi.URLParam(r, "chatID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid chat id")
		return
	}

	if err := h.chatService.DeleteThread(chatID); err != nil {
		log.Printf("Error deleting thread %d: %v", chatID, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Thread deleted"})
}

type UploadResponse struct {
	Response string `json:"response"`
	ChatID   int64  `json:"chat_id"`
	Filename string `json:"filename"`
}

func (h *APIHandler) UploadPDFHandler(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file field: "+err.Error())
		return
	}
	defer file.Close()

	contents, err := io.ReadAll(file)
	if err != nil {
		log.Printf("Error reading upload %s: %v", header.Filename, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summary, chatID, err := h.chatService.SummarizeUpload(r.Context(), username, header.Filename, contents)
	if err != nil {
		log.Printf("Error summarizing upload %s for user %s: %v", header.Filename, username, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{Response: summary, ChatID: chatID, Filename: header.Filename})
}
