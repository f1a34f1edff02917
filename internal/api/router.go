package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", PingHandler)
	r.Post("/upload-video", app.UploadHandler)
	r.Get("/status/{id}", app.StatusHandler)
	r.Get("/get-feedback/{id}", app.FeedbackHandler)

	return r
}
