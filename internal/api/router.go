package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	mw "github.com/paperchat/paperchat/internal/middleware"
)

func NewRouter(apiHandler *APIHandler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling
	r.Use(mw.CORS(allowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/signup", apiHandler.SignupHandler)
	r.Post("/login", apiHandler.LoginHandler)
	r.Post("/chat", apiHandler.ChatHandler)
	r.Get("/history/{username}", apiHandler.HistoryHandler)
	r.Delete("/delete_chat/{chatID}", apiHandler.DeleteChatHandler)
	r.Post("/upload-pdf/{username}", apiHandler.UploadPDFHandler)

	return r
}
