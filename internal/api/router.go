/**
 * @description
 * This file sets up the HTTP router for the service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies
 * the standard middleware stack.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes creates and returns the router for the quotation and issuance endpoints.
func Routes(h *QuotationHandlers) http.Handler {
	r := chi.NewRouter()

	// Request ids feed the traceId carried in every error envelope.
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HealthHandler)

	// The websocket endpoint stays outside the timeout group: issuance pushes
	// arrive on the hub's schedule, not the request's.
	r.Get("/ws/issuance", h.IssuanceSocketHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Post("/quotes", h.CreateQuoteHandler)
		r.Get("/quotes/{quoteID}", h.GetQuoteHandler)
	})

	return r
}
