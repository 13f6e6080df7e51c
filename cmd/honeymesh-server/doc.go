// Package main provides the entry point for honeymesh-server.
//
// honeymesh-server serves a decoy healthcare portal whose pages carry
// freshly minted honeytokens. Any later use of a token is recorded and
// published as an alert on the configured channel.
//
// Usage:
//
//	honeymesh-server [--config honeymesh.yaml] serve
//	honeymesh-server alerts
//	honeymesh-server token get <token-id>
//	honeymesh-server status --server localhost:5002
package main
