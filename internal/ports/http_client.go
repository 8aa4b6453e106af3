package ports

import "net/http"

// HTTPClient executes requests against the dataset hub.
// *http.Client satisfies it; tests substitute httptest-backed clients.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
