package order

import "fmt"

// GenericFailureMessage is shown when delivery fails without a usable
// upstream message. Transport and relay failures collapse to one user-visible
// message; the detailed cause goes to the logs.
const GenericFailureMessage = "Az e-mail küldése sikertelen volt. Kérjük, próbálja újra később."

// TransportError wraps a network failure reaching the mail relay. The form
// stays editable and the order may be resubmitted.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("mail relay unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RelayError means the relay was reachable but reported failure. Message, when
// present, carries the upstream detail for display.
type RelayError struct {
	StatusCode int
	Message    string
}

func (e *RelayError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("mail relay rejected the order (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("mail relay rejected the order (status %d): %s", e.StatusCode, e.Message)
}

// UserMessage returns the text safe to show the customer.
func (e *RelayError) UserMessage() string {
	if e.Message == "" {
		return GenericFailureMessage
	}
	return e.Message
}

// ConfigurationError is a server-side misconfiguration, fatal for the selected
// transport. Detail is operator-facing only; callers see a generic message and
// must not retry.
type ConfigurationError struct {
	Detail string
}

func (e *ConfigurationError) Error() string {
	return "mail relay configuration error: " + e.Detail
}
