// Package server provides the HTTP server for the manifestation service.
//
// the server is configured through environment variables
// (see internal/config/config.go for details)
//
// The package wires
//   - the manifestation API (POST /manifestacoes)
//   - common infrastructure handlers (health, readiness, version, metrics)
//
// middleware is in internal/server/middleware
package server
