package utils

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// NewID is used for job, chat and trace ids.
func NewID() string {
	return uuid.NewString()
}

// IsJobID reports whether id could have been issued by NewID.
func IsJobID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// URLParam reads a chi route parameter, "" when absent.
func URLParam(request *http.Request, key string) string {
	return chi.URLParam(request, key)
}
