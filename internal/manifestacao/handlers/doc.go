// Package handlers provides the HTTP handler for POST /manifestacoes.
package handlers
