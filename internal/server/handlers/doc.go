// Package handlers provides general infrastructure HTTP handlers
// (health, readiness, version).
//
// The manifestation endpoint lives in internal/manifestacao/handlers.
package handlers
