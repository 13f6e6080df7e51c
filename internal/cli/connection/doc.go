// Package connection is the HTTP client the CLI uses to query a running
// honeymesh server.
//
//   - http.go: HTTPClient with the /health probe
package connection
