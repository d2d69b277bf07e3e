package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/quire/internal/core/domain"
)

// Common Google API errors.
var (
	// ErrUnauthorized indicates invalid or expired credentials.
	ErrUnauthorized = errors.New("google: unauthorised (invalid credentials)")

	// ErrForbidden indicates insufficient permissions.
	ErrForbidden = errors.New("google: forbidden (insufficient permissions)")

	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("google: resource not found")
)

// TransientCodes are the HTTP statuses worth retrying.
var TransientCodes = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// rateLimitReasons are 403 reasons Drive uses for throttling.
var rateLimitReasons = map[string]bool{
	"rateLimitExceeded":     true,
	"userRateLimitExceeded": true,
}

// IsUnauthorized returns true if the error indicates invalid credentials.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || hasCode(err, http.StatusUnauthorized)
}

// IsForbidden returns true if the error indicates insufficient permissions.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden) || (hasCode(err, http.StatusForbidden) && !IsRateLimited(err))
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || hasCode(err, http.StatusNotFound)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return errors.Is(err, domain.ErrRateLimited)
	}
	if gerr.Code == http.StatusTooManyRequests {
		return true
	}
	if gerr.Code != http.StatusForbidden {
		return false
	}
	for _, item := range gerr.Errors {
		if rateLimitReasons[item.Reason] {
			return true
		}
	}
	return false
}

// WrapError converts a Google API error into quire's error vocabulary:
// rate limiting, transient statuses, and network failures are marked
// transient; 401 and 404 carry the matching domain errors.
func WrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	if IsRateLimited(err) {
		return fmt.Errorf("%s: %w: %w", operation, domain.ErrRateLimited, err)
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case TransientCodes[gerr.Code]:
			return domain.MarkTransient(fmt.Errorf("%s: %w", operation, err))
		case gerr.Code == http.StatusUnauthorized:
			return fmt.Errorf("%s: %w: %w", operation, ErrUnauthorized, domain.ErrAuthInvalid)
		case gerr.Code == http.StatusForbidden:
			return fmt.Errorf("%s: %w: %w", operation, ErrForbidden, err)
		case gerr.Code == http.StatusNotFound:
			return fmt.Errorf("%s: %w: %w", operation, ErrNotFound, domain.ErrNotFound)
		default:
			return fmt.Errorf("%s: %w", operation, err)
		}
	}

	if !errors.Is(err, context.Canceled) && isNetworkError(err) {
		return domain.MarkTransient(fmt.Errorf("%s: %w", operation, err))
	}
	return fmt.Errorf("%s: %w", operation, err)
}

func hasCode(err error, code int) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == code
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
