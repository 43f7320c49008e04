/**
 * @description
 * This file contains the HTTP handlers for the quotation API and the issuance
 * websocket endpoint. Handlers parse incoming requests, call the application
 * service, and translate outcomes into transport responses: the risk gate's
 * tagged rejection becomes a 403-class envelope, validation failures a
 * 400-class one, and every failure envelope carries a trace id.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - github.com/go-chi/chi/v5: URL parameter extraction and request ids.
 * - github.com/gorilla/websocket: Connection upgrades for the hub.
 * - internal/app, internal/domain, internal/hub, internal/store: Service logic, models, sessions, errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/youlserf/pacifico-ecosystem/internal/app"
	"github.com/youlserf/pacifico-ecosystem/internal/domain"
	"github.com/youlserf/pacifico-ecosystem/internal/hub"
	"github.com/youlserf/pacifico-ecosystem/internal/store"
)

// QuotationHandlers holds the application service and hub the handlers use.
type QuotationHandlers struct {
	service  *app.QuotationService
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

// NewQuotationHandlers creates a new instance of QuotationHandlers.
func NewQuotationHandlers(service *app.QuotationService, notificationHub *hub.Hub) *QuotationHandlers {
	return &QuotationHandlers{
		service: service,
		hub:     notificationHub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The gateway in front of this service owns origin policy.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// errorResponse is the envelope returned for every non-success outcome.
type errorResponse struct {
	Status    string `json:"status"`
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
	TraceID   string `json:"traceId"`
}

// quoteCreatedResponse is returned when a quotation is processed and approved.
type quoteCreatedResponse struct {
	QuoteID string `json:"quoteId"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// CreateQuoteHandler handles quote creation requests.
func (h *QuotationHandlers) CreateQuoteHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.QuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input data")
		return
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.service.CreateQuote(r.Context(), req)
	if err != nil {
		log.Printf("level=error component=api msg=\"quotation orchestration failed\" dni=%s err=%v", req.DNI, err)
		h.writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
		return
	}
	if result.Rejected != nil {
		h.writeError(w, r, http.StatusForbidden, "HIGH_RISK", fmt.Sprintf("High risk detected: %g", result.Rejected.ProbabilityScore))
		return
	}

	h.writeJSON(w, http.StatusOK, quoteCreatedResponse{
		QuoteID: strconv.FormatInt(result.Approved.ID, 10),
		Status:  "SUCCESS",
		Message: "Quotation processed and approved",
	})
}

// GetQuoteHandler returns a persisted quote by id.
func (h *QuotationHandlers) GetQuoteHandler(w http.ResponseWriter, r *http.Request) {
	quoteID, err := strconv.ParseInt(chi.URLParam(r, "quoteID"), 10, 64)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Quote id must be numeric")
		return
	}

	quote, err := h.service.GetQuote(r.Context(), quoteID)
	if err != nil {
		if errors.Is(err, store.ErrQuoteNotFound) {
			h.writeError(w, r, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("Quote %d not found", quoteID))
			return
		}
		log.Printf("level=error component=api msg=\"quote lookup failed\" quote_id=%d err=%v", quoteID, err)
		h.writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
		return
	}

	h.writeJSON(w, http.StatusOK, quote)
}

// IssuanceSocketHandler upgrades a client connection and registers it in the
// notification hub under the DNI carried in the handshake query. A handshake
// without a DNI is closed immediately and never registered.
func (h *QuotationHandlers) IssuanceSocketHandler(w http.ResponseWriter, r *http.Request) {
	dni := r.URL.Query().Get("dni")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("level=warn component=api msg=\"websocket upgrade failed\" err=%v", err)
		return
	}

	if dni == "" {
		log.Printf("level=warn component=api msg=\"websocket handshake without dni; closing\"")
		message := websocket.FormatCloseMessage(websocket.CloseUnsupportedData, "dni query parameter is required")
		conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(5*time.Second))
		conn.Close()
		return
	}

	h.hub.Register(dni, conn)
	defer func() {
		h.hub.Unregister(dni, conn)
		conn.Close()
	}()

	// The server only pushes; the read loop exists to observe the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// HealthHandler reports liveness.
func (h *QuotationHandlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("healthy"))
}

func (h *QuotationHandlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("level=error component=api msg=\"response encode failed\" err=%v", err)
	}
}

func (h *QuotationHandlers) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	traceID := middleware.GetReqID(r.Context())
	if traceID == "" {
		traceID = uuid.NewString()
	}
	h.writeJSON(w, status, errorResponse{
		Status:    "FAILED",
		ErrorCode: code,
		Message:   message,
		TraceID:   traceID,
	})
}
