// Package http provides the HTTP side of hitmatch.
//
// It wraps the standard library's http package with:
//   - Response, the subject type of the controller matchers, built from a live
//     round trip, an httptest.ResponseRecorder or a *net/http.Response
//   - Client with configurable timeouts, redirect handling and default headers
//   - RemoteSubject, a validation subject that probes an HTTP endpoint
package http
