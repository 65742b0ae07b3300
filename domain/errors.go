package domain

import (
	"errors"
	"fmt"
)

// User input rejections. These are not failures; state stays valid and the
// caller is notified. ErrComparisonFull carries the user-facing alert text
// as shown.
var (
	ErrComparisonFull = errors.New("En fazla 3 telefon karşılaştırabilirsiniz.")
	ErrTooFewPhones   = errors.New("karşılaştırma için en az 2 telefon gerekli")
)

// Request lifecycle errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSearchInFlight  = errors.New("a search request is already in progress")
	ErrPhoneNotFound   = errors.New("phone is not part of the current results")
	ErrUnknownFilter   = errors.New("unknown filter axis")
)

// RecommendationError is the single failure type for the generative backend.
// Transport errors, timeouts and schema violations all collapse into it; no
// partial results are ever kept. Message is safe to show to the end user.
type RecommendationError struct {
	Message string
	Err     error
}

func (e *RecommendationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RecommendationError) Unwrap() error { return e.Err }

// NewRecommendationError wraps err under a user-facing message.
func NewRecommendationError(message string, err error) *RecommendationError {
	return &RecommendationError{Message: message, Err: err}
}
