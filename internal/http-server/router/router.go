package router

import (
	"net/http"

	"github.com/vladmycode/imager/internal/http-server/handler/image"
	"github.com/vladmycode/imager/internal/http-server/middleware"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	ImageHandler *image.ImageHandler
}

func SetupRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggingMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Route("/images", func(r chi.Router) {
			r.Post("/upload", h.ImageHandler.UploadImage)
			r.Get("/", h.ImageHandler.ListImages)
			r.Get("/{id}", h.ImageHandler.GetImage)
			r.Get("/{id}/original", h.ImageHandler.GetOriginal)
			r.Get("/{id}/status", h.ImageHandler.GetStatus)
			r.Delete("/{id}", h.ImageHandler.DeleteImage)
		})

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
	})

	return r
}
