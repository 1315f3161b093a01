package httpapi

import (
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/esports-match-sync/internal/usecase"
)

const (
	envelopeAPIVersion = "2.0"
	errorDomain        = "esports-match-sync"
)

type envelope struct {
	APIVersion string         `json:"apiVersion"`
	Data       any            `json:"data,omitempty"`
	Error      *envelopeError `json:"error,omitempty"`
}

type envelopeError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Status  string       `json:"status"`
	Errors  []errorCause `json:"errors,omitempty"`
}

type errorCause struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type errorClass struct {
	target     error
	httpStatus int
	reason     string
	status     string
}

// errorClasses is checked in order; the first sentinel found in the chain wins.
var errorClasses = []errorClass{
	{usecase.ErrInvalidInput, http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"},
	{usecase.ErrUnsupportedLeague, http.StatusNotFound, "unsupportedLeague", "NOT_FOUND"},
	{usecase.ErrNotFound, http.StatusNotFound, "notFound", "NOT_FOUND"},
	{usecase.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"},
	{usecase.ErrRemoteFetch, http.StatusBadGateway, "remoteFetchFailed", "UNAVAILABLE"},
	{usecase.ErrPersistence, http.StatusServiceUnavailable, "persistenceFailed", "UNAVAILABLE"},
	{usecase.ErrDependencyUnavailable, http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"},
}

var internalErrorClass = errorClass{httpStatus: http.StatusInternalServerError, reason: "internalError", status: "INTERNAL"}

func classifyError(err error) errorClass {
	for _, class := range errorClasses {
		if errors.Is(err, class.target) {
			return class
		}
	}
	return internalErrorClass
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{APIVersion: envelopeAPIVersion, Data: data})
}

// writeError renders err as an error envelope and returns the HTTP status it chose.
// Unclassified errors never leak their message to the client.
func writeError(w http.ResponseWriter, err error) int {
	class := classifyError(err)
	message := "internal server error"
	if class.target != nil {
		message = err.Error()
	}
	writeErrorEnvelope(w, class, message)
	return class.httpStatus
}

func writeInternalError(w http.ResponseWriter) {
	writeErrorEnvelope(w, internalErrorClass, "internal server error")
}

func writeErrorEnvelope(w http.ResponseWriter, class errorClass, message string) {
	writeJSON(w, class.httpStatus, envelope{
		APIVersion: envelopeAPIVersion,
		Error: &envelopeError{
			Code:    class.httpStatus,
			Message: message,
			Status:  class.status,
			Errors:  []errorCause{{Domain: errorDomain, Reason: class.reason, Message: message}},
		},
	})
}
