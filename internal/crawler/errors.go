package crawler

import "fmt"

// TransportError reports a network or HTTP failure while fetching a page
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: unexpected status code %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("fetch %s: transport failure", e.URL)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
