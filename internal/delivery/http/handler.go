package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vogiaan1904/ticketbottle-checkin/internal/service"
	pkgErrors "github.com/vogiaan1904/ticketbottle-checkin/pkg/errors"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/response"
)

type HTTPHandler struct {
	checkInService service.CheckInService
	exportService  service.AttendeeExportService
	l              logger.Logger
	validator      *validator.Validate
}

func NewHTTPHandler(checkInService service.CheckInService, exportService service.AttendeeExportService, l logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		checkInService: checkInService,
		exportService:  exportService,
		l:              l,
		validator:      validator.New(),
	}
}

// HealthCheck handles health check requests
func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"service": "checkin-service",
		"version": "1.0.0",
	}
	h.respondJSON(w, http.StatusOK, response)
}

// CheckIn handles a gate scan: it validates the credential and flips
// the ticket to CHECKED_IN when everything lines up.
func (h *HTTPHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}
	ticketUUID := chi.URLParam(r, "ticketUUID")

	req, ok := h.decodeCheckInRequest(w, r)
	if !ok {
		return
	}

	result, err := h.checkInService.CheckIn(r.Context(), eventID, ticketUUID, req.Code, OperatorFromContext(r.Context()))
	if err != nil {
		h.l.Errorf(r.Context(), "delivery.http.HTTPHandler.CheckIn: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to process check-in", err)
		return
	}

	h.respondJSON(w, http.StatusOK, newCheckInResponse(result))
}

// EvaluateTicketStatus previews the verdict a scan would produce
// without mutating anything.
func (h *HTTPHandler) EvaluateTicketStatus(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}
	ticketUUID := chi.URLParam(r, "ticketUUID")
	code := r.URL.Query().Get("qrCode")

	result, err := h.checkInService.EvaluateTicketStatus(r.Context(), eventID, ticketUUID, code)
	if err != nil {
		h.l.Errorf(r.Context(), "delivery.http.HTTPHandler.EvaluateTicketStatus: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to evaluate ticket status", err)
		return
	}

	h.respondJSON(w, http.StatusOK, newCheckInResponse(result))
}

// ManualCheckIn handles operator-vouched check-ins without a credential.
func (h *HTTPHandler) ManualCheckIn(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}
	ticketUUID := chi.URLParam(r, "ticketUUID")

	done, err := h.checkInService.ManualCheckIn(r.Context(), eventID, ticketUUID, OperatorFromContext(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			h.respondError(w, http.StatusNotFound, "Event not found", err)
		default:
			h.l.Errorf(r.Context(), "delivery.http.HTTPHandler.ManualCheckIn: %v", err)
			h.respondError(w, http.StatusInternalServerError, "Failed to process manual check-in", err)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, FlagResponse{Done: done})
}

// RevertCheckIn undoes a completed check-in.
func (h *HTTPHandler) RevertCheckIn(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}
	ticketUUID := chi.URLParam(r, "ticketUUID")

	done, err := h.checkInService.RevertCheckIn(r.Context(), eventID, ticketUUID, OperatorFromContext(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			h.respondError(w, http.StatusNotFound, "Event not found", err)
		case errors.Is(err, service.ErrReservationNotFound):
			h.respondError(w, http.StatusConflict, "Ticket reservation not found", err)
		default:
			h.l.Errorf(r.Context(), "delivery.http.HTTPHandler.RevertCheckIn: %v", err)
			h.respondError(w, http.StatusInternalServerError, "Failed to revert check-in", err)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, FlagResponse{Done: done})
}

// CheckInByName is CheckIn addressed by event short name instead of id.
func (h *HTTPHandler) CheckInByName(w http.ResponseWriter, r *http.Request) {
	eventName := chi.URLParam(r, "eventName")
	ticketUUID := chi.URLParam(r, "ticketUUID")

	req, ok := h.decodeCheckInRequest(w, r)
	if !ok {
		return
	}

	result, err := h.checkInService.CheckInByShortName(r.Context(), eventName, ticketUUID, req.Code, OperatorFromContext(r.Context()))
	if err != nil {
		h.l.Errorf(r.Context(), "delivery.http.HTTPHandler.CheckInByName: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to process check-in", err)
		return
	}

	h.respondJSON(w, http.StatusOK, newCheckInResponse(result))
}

func (h *HTTPHandler) EvaluateTicketStatusByName(w http.ResponseWriter, r *http.Request) {
	eventName := chi.URLParam(r, "eventName")
	ticketUUID := chi.URLParam(r, "ticketUUID")
	code := r.URL.Query().Get("qrCode")

	result, err := h.checkInService.EvaluateTicketStatusByShortName(r.Context(), eventName, ticketUUID, code)
	if err != nil {
		h.l.Errorf(r.Context(), "delivery.http.HTTPHandler.EvaluateTicketStatusByName: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to evaluate ticket status", err)
		return
	}

	h.respondJSON(w, http.StatusOK, newCheckInResponse(result))
}

// ConfirmOnSitePayment settles an on-site payment and checks the
// ticket in as one unit of work.
func (h *HTTPHandler) ConfirmOnSitePayment(w http.ResponseWriter, r *http.Request) {
	eventName := chi.URLParam(r, "eventName")
	ticketUUID := chi.URLParam(r, "ticketUUID")

	req, ok := h.decodeCheckInRequest(w, r)
	if !ok {
		return
	}

	result, err := h.checkInService.ConfirmOnSitePayment(r.Context(), eventName, ticketUUID, req.Code, OperatorFromContext(r.Context()))
	if err != nil {
		h.l.Errorf(r.Context(), "delivery.http.HTTPHandler.ConfirmOnSitePayment: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to confirm on-site payment", err)
		return
	}

	h.respondJSON(w, http.StatusOK, newCheckInResponse(result))
}

// GetOfflineIdentifiers lists attendee ticket ids for offline devices.
// An optional changedSince query (unix millis) restricts the listing to
// tickets modified after that instant.
func (h *HTTPHandler) GetOfflineIdentifiers(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}

	var changedSince *time.Time
	if raw := r.URL.Query().Get("changedSince"); raw != "" {
		millis, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid changedSince value", err)
			return
		}
		t := time.UnixMilli(millis)
		changedSince = &t
	}

	ids, err := h.exportService.GetAttendeesIdentifiers(r.Context(), eventID, changedSince)
	if err != nil {
		h.respondExportError(w, r, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}

	h.respondJSON(w, http.StatusOK, ids)
}

// GetOfflineBundle builds the encrypted attendee bundle for offline
// scanning devices.
func (h *HTTPHandler) GetOfflineBundle(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}

	var req OfflineBundleRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	bundle, err := h.exportService.EncryptedAttendeesInformation(r.Context(), eventID, req.AdditionalFields)
	if err != nil {
		h.respondExportError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, bundle)
}

// Helper functions

func (h *HTTPHandler) eventID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "eventId"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid event id", err)
		return 0, false
	}
	return id, true
}

func (h *HTTPHandler) decodeCheckInRequest(w http.ResponseWriter, r *http.Request) (CheckInRequest, bool) {
	var req CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return req, false
	}

	if err := h.validator.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation failed", err)
		return req, false
	}
	return req, true
}

func (h *HTTPHandler) respondExportError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		h.respondError(w, http.StatusNotFound, "Event not found", err)
	case errors.Is(err, service.ErrOfflineCheckInDisabled):
		h.respondError(w, http.StatusForbidden, "Offline check-in is not enabled for this event", err)
	default:
		h.l.Errorf(r.Context(), "delivery.http.HTTPHandler.respondExportError: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to build offline export", err)
	}
}

func (h *HTTPHandler) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.l.Errorf(context.Background(), "delivery.http.HTTPHandler.respondJSON: %v", err)
	}
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	if err != nil {
		h.l.Debugf(context.Background(), "delivery.http.HTTPHandler.respondError: %s: %v", message, err)
	}

	httpErr := pkgErrors.NewHTTPError(statusCode, message)
	httpErr.StatusCode = statusCode
	status, body := response.ParseHTTPError(httpErr)
	h.respondJSON(w, status, body)
}
