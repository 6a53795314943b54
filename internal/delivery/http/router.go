// Package httpapi is the HTTP management surface: alarm CRUD, the
// last-folder slot, playback dismissal and an iCalendar export.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/despertad/wakefolder/internal/config"
	mwlogger "github.com/despertad/wakefolder/internal/delivery/http/middleware/logger"
	"github.com/despertad/wakefolder/internal/playback"
	"github.com/despertad/wakefolder/internal/usecase"
	"github.com/despertad/wakefolder/pkg/logger"
)

func NewRouter(l *logger.Logger, uc *usecase.Alarms, pc *playback.Controller, cfg *config.Config) http.Handler {
	h := &handler{uc: uc, pc: pc, log: l}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(mwlogger.New(l))
	r.Use(cors.New(cors.Options{
		AllowedMethods:     cfg.HTTP.CORS.AllowedMethods,
		AllowedOrigins:     cfg.HTTP.CORS.AllowedOrigins,
		AllowCredentials:   cfg.HTTP.CORS.AllowCredentials,
		AllowedHeaders:     cfg.HTTP.CORS.AllowedHeaders,
		OptionsPassthrough: cfg.HTTP.CORS.OptionsPassthrough,
		ExposedHeaders:     cfg.HTTP.CORS.ExposedHeaders,
		Debug:              cfg.HTTP.CORS.Debug,
	}).Handler)

	r.Get("/healthz", h.health)

	r.Route("/alarms", func(r chi.Router) {
		r.Get("/", h.listAlarms)
		r.Post("/", h.createAlarm)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getAlarm)
			r.Put("/", h.updateAlarm)
			r.Post("/toggle", h.toggleAlarm)
			r.Delete("/", h.deleteAlarm)
		})
	})

	r.Get("/alarms.ics", h.exportICS)

	r.Get("/folder", h.getFolder)
	r.Put("/folder", h.putFolder)

	r.Post("/playback/stop", h.stopPlayback)

	return r
}
