// Package transient decides which provider failures are worth retrying.
package transient

import (
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/akolanti/ragchain/internal/apperrors"
)

// Classify wraps err in an apperrors.TransientError when it is a rate limit,
// a server-side failure or a network timeout. Other errors pass through.
func Classify(op string, err error) error {
	if err == nil || apperrors.IsTransient(err) {
		return err
	}
	if Retryable(err) {
		return apperrors.Transient(op, err)
	}
	return err
}

func Retryable(err error) bool {
	if code, ok := StatusCode(err); ok {
		return apperrors.IsRetryableStatus(code)
	}
	if s, ok := status.FromError(err); ok && s.Code() != codes.Unknown {
		switch s.Code() {
		case codes.ResourceExhausted, codes.Unavailable, codes.DeadlineExceeded, codes.Aborted:
			return true
		}
		return false
	}
	return apperrors.IsNetworkError(err)
}

// StatusCode extracts the HTTP status of a provider SDK error.
func StatusCode(err error) (int, bool) {
	var oaErr *openai.Error
	if errors.As(err, &oaErr) {
		return oaErr.StatusCode, true
	}
	var anErr *anthropic.Error
	if errors.As(err, &anErr) {
		return anErr.StatusCode, true
	}
	var gErr genai.APIError
	if errors.As(err, &gErr) {
		return gErr.Code, true
	}
	var gErrPtr *genai.APIError
	if errors.As(err, &gErrPtr) {
		return gErrPtr.Code, true
	}
	return 0, false
}
