package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	donationsdomain "parish-app-go/internal/domain/donations"
	eventsdomain "parish-app-go/internal/domain/events"
	faithfuldomain "parish-app-go/internal/domain/faithful"
	intentionsdomain "parish-app-go/internal/domain/intentions"
	priestsdomain "parish-app-go/internal/domain/priests"
	statisticsdomain "parish-app-go/internal/domain/statistics"
	"parish-app-go/pkg/logger"
)

const unexpectedErrorPrefix = "Ikosa ritunguranye: "

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

var (
	notFoundErrors = []error{
		faithfuldomain.ErrFaithfulNotFound,
		priestsdomain.ErrPriestNotFound,
		eventsdomain.ErrEventNotFound,
		eventsdomain.ErrMassNotFound,
		intentionsdomain.ErrIntentionNotFound,
		donationsdomain.ErrDonationNotFound,
	}
	conflictErrors = []error{
		faithfuldomain.ErrDuplicateIdentifier,
		faithfuldomain.ErrFaithfulReferenced,
		priestsdomain.ErrPriestExists,
		priestsdomain.ErrEmailTaken,
		priestsdomain.ErrPriestInUse,
	}
	badRequestErrors = []error{
		faithfuldomain.ErrInvalidInput,
		priestsdomain.ErrInvalidInput,
		eventsdomain.ErrInvalidMass,
		eventsdomain.ErrInvalidEvent,
		eventsdomain.ErrInvalidRange,
		intentionsdomain.ErrInvalidRequestor,
		intentionsdomain.ErrInvalidInput,
		intentionsdomain.ErrInvalidRange,
		donationsdomain.ErrInvalidInput,
		donationsdomain.ErrInvalidRange,
		statisticsdomain.ErrInvalidInput,
		statisticsdomain.ErrInvalidRange,
	}
)

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

func writeValidationError(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: errorBody{
		Code:    "validation_failed",
		Message: "validation failed",
		Fields:  fields,
	}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// fail maps a service error onto the response and logs it. op is the
// "<resource>.<operation>" log prefix.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, op string, err error, args ...any) {
	log := h.logFor(r)
	switch {
	case matchesAny(err, notFoundErrors):
		log.BusinessError(op+": not found", err, args...)
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case matchesAny(err, conflictErrors):
		log.BusinessError(op+": conflict", err, args...)
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case matchesAny(err, badRequestErrors):
		log.BusinessError(op+": rejected", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		log.InternalError(op+": failed", err, args...)
		writeError(w, http.StatusInternalServerError, "internal_error", unexpectedErrorPrefix+err.Error())
	}
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// decodeAndValidate reads the body into req and writes the 400 response when
// it is malformed or fails validation.
func (h *Handlers) decodeAndValidate(w http.ResponseWriter, r *http.Request, op string, req interface{}) bool {
	if err := decodeJSON(r, req); err != nil {
		h.logFor(r).BusinessError(op+": invalid json", err)
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return false
	}
	if fields := validateRequest(req); fields != nil {
		h.logFor(r).Warn(op+": validation failed", "fields", fields)
		writeValidationError(w, fields)
		return false
	}
	return true
}

// logFor prefers the request scoped logger carrying the request id.
func (h *Handlers) logFor(r *http.Request) logger.Logger {
	return logger.FromContext(r.Context(), h.log)
}
