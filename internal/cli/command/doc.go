// Package command defines the honeymesh-server command line.
//
//   - root.go: App and global flags
//   - serve.go: run the decoy portal
//   - alerts.go: follow the alert channel
//   - token.go: mint, inspect and trigger honeytokens
//   - status.go: query a running server's /health
//   - runtime.go: config, logger and store wiring shared by the commands
package command
