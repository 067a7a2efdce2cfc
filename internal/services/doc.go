// Package services wires the nfe toolkit into the collaborators used by the
// manifestation pipeline.
//
// The serializer is built once from configuration. Signers and transmitters depend on
// the certificate, state and environment of each request and are created per request
// by the Toolkit factories.
package services
