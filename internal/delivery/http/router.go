package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

// NewRouter wires every endpoint. /healthz and /metrics are open, the
// check-in API requires an operator bearer token.
func NewRouter(h *HTTPHandler, jwtSecret string, l logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/check-in", func(r chi.Router) {
		r.Use(Authenticate(jwtSecret, l))

		r.Route("/event/{eventId}", func(r chi.Router) {
			r.Get("/ticket/{ticketUUID}", h.EvaluateTicketStatus)
			r.Post("/ticket/{ticketUUID}", h.CheckIn)
			r.Post("/ticket/{ticketUUID}/manual-check-in", h.ManualCheckIn)
			r.Post("/ticket/{ticketUUID}/revert-check-in", h.RevertCheckIn)

			r.Get("/offline-identifiers", h.GetOfflineIdentifiers)
			r.Post("/offline", h.GetOfflineBundle)
		})

		r.Route("/event/name/{eventName}/ticket/{ticketUUID}", func(r chi.Router) {
			r.Get("/", h.EvaluateTicketStatusByName)
			r.Post("/", h.CheckInByName)
			r.Post("/confirm-on-site-payment", h.ConfirmOnSitePayment)
		})
	})

	return r
}
