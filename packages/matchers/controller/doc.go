// Package controller provides matchers for HTTP handlers.
//
// Response matchers take a *http.Response from this module, built from a
// live round trip or from an httptest.ResponseRecorder:
//   - RespondWith / RespondWithStatus: status code or status class
//   - RedirectTo: 3xx with a given Location
//   - SetCookie: a cookie, optionally with a value
//   - RespondWithContentType: media type of the body
//   - RenderJSON: a value at a gjson path of the body
//   - MatchSchema: the body validates against a JSON Schema
//
// Route checks a routing.Recognizer instead of a response.
package controller
