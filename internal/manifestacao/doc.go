// manifestacao implements the recipient manifestation use case behind POST /manifestacoes
// (manifestação do destinatário).
//
// **pipeline**
// Service.Manifest builds the event, then calls the serializer, the signer and the
// transmitter in that order. Each step returns a value or an error and the pipeline stops
// at the first error: a later step never runs after an earlier one failed.
//
// **collaborators**
// The serializer, signer and transmitter are interfaces. The production implementations
// come from the nfe package (see internal/services for the wiring); tests use fakes.
//
// **error handling**
// nfe errors carry a code (validation, signing, transport...) that is logged and counted,
// but every pipeline failure is returned to the client as HTTP 500 with the
// {"detail": "Erro ao buscar manifestações: <message>"} body.
// Errors raised before the pipeline runs (malformed JSON, oversized body, rate limit)
// have their own status codes and use the same body shape.
// Use RespondWithError() to send any error response.
//
// **testing**
// service_test.go covers the pipeline ordering and short-circuit behaviour;
// the handler is tested in the handlers package.
package manifestacao
