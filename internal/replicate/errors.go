package replicate

import "fmt"

// APIError is a non-success response from the prediction API, at create or poll
// time. The remote status code and body are carried verbatim so callers can pass
// them through for diagnostics. Never retried by this package.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("replicate: status %d: %s", e.StatusCode, e.Body)
}

// TimeoutError is returned when the polling budget elapses before the prediction
// reaches a terminal status. Last holds the most recent snapshot seen.
type TimeoutError struct {
	Last *Prediction
}

func (e *TimeoutError) Error() string {
	status := ""
	if e.Last != nil {
		status = e.Last.Status
	}
	return fmt.Sprintf("replicate: polling timed out (last status %q)", status)
}
