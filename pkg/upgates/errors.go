package upgates

import (
	"errors"
	"fmt"

	"github.com/samvad-hq/upgates-go/pkg/httpclient"
)

type (
	// ConfigurationError is returned by New for an unusable Config.
	ConfigurationError = httpclient.ConfigurationError
	// TransportError is returned for non-2xx responses, network failures and
	// undecodable bodies.
	TransportError = httpclient.TransportError
)

var (
	// ErrNotFound matches every *NotFoundError via errors.Is.
	ErrNotFound = errors.New("upgates: order not found")
	// ErrOrderNumberRequired is returned before any request when the order number is empty.
	ErrOrderNumberRequired = errors.New("upgates: order number is required")
	// ErrInvalidFile is returned by AddFile when a required part is missing.
	ErrInvalidFile = errors.New("upgates: file, file name and code are required")
	// ErrEmptyCreateResponse is returned by Create when a successful response
	// carries no order.
	ErrEmptyCreateResponse = errors.New("upgates: create returned no order")
)

// NotFoundError reports a successful response whose order list was empty.
// For updates the API does not tell a missing order from a rejected update.
type NotFoundError struct {
	Operation   string
	OrderNumber string
}

func (e *NotFoundError) Error() string {
	if e.Operation == "update" {
		return fmt.Sprintf("upgates: order %q not found or not updated", e.OrderNumber)
	}
	return fmt.Sprintf("upgates: order %q not found", e.OrderNumber)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// IsNotFound reports whether err is, or wraps, a *NotFoundError.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StatusCode returns the HTTP status carried by a *TransportError in err's
// chain, or 0.
func StatusCode(err error) int {
	var terr *TransportError
	if errors.As(err, &terr) {
		return terr.StatusCode
	}
	return 0
}
