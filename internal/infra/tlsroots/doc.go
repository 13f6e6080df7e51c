// Package tlsroots loads TLS material from disk.
//
//   - roots.go: trusted CA pools for outbound connections (Redis over TLS)
//   - watcher.go: serving certificate with reload on file change
package tlsroots
