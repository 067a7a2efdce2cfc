// Package nfe is the fiscal document toolkit used by the manifestation service.
//
// It covers the pieces needed to register a "manifestação do destinatário" event:
//   - building the event (event.go) and rendering it as schema XML (serializer.go)
//   - loading A1 (PKCS#12) certificates and signing the XML with XMLDSig (certificate.go, signer.go)
//   - submitting the signed event to the NFeRecepcaoEvento4 web service of the
//     state's authoriser over mutual TLS (transmitter.go, soap.go, endpoints.go)
//
// Errors returned by this package are *NfeError values carrying an ErrorCode
// (see errors.go) so callers can classify failures without parsing messages.
package nfe
