// Package buildinfo reports the version of the running binary.
//
//	go build -ldflags "-X github.com/yndnr/honeymesh/internal/infra/buildinfo.Version=v1.0.0"
package buildinfo
