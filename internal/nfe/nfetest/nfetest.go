// Package nfetest provides helpers for tests that need A1 certificates or a SEFAZ endpoint.
package nfetest

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"software.sslmate.com/src/go-pkcs12"
)

// DefaultCommonName follows the ICP-Brasil e-CNPJ format
const DefaultCommonName = "EMPRESA DESTINATARIA LTDA:12345678000199"

// Certificate is a generated self-signed A1 certificate
type Certificate struct {
	Key      *rsa.PrivateKey
	Cert     *x509.Certificate
	PFX      []byte
	Password string
}

// NewCertificate generates an RSA key and a self-signed certificate for cn encoded as PKCS#12.
func NewCertificate(t *testing.T, cn, password string) *Certificate {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject: pkix.Name{
			CommonName:   cn,
			Organization: []string{"ICP-Brasil"},
			Country:      []string{"BR"},
		},
		NotBefore:   time.Now().Add(-time.Hour),
		NotAfter:    time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:    x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("failed to create certificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("failed to parse certificate: %v", err)
	}

	pfx, err := pkcs12.Modern.Encode(key, cert, nil, password)
	if err != nil {
		t.Fatalf("failed to encode PKCS#12: %v", err)
	}

	return &Certificate{Key: key, Cert: cert, PFX: pfx, Password: password}
}

// WritePFX writes a newly generated certificate to dir/name and returns its path.
func WritePFX(t *testing.T, dir, name, password string) (string, *Certificate) {
	t.Helper()

	c := NewCertificate(t, DefaultCommonName, password)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, c.PFX, 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path, c
}

// NewSefazServer starts a TLS server standing in for NFeRecepcaoEvento4.
// The returned pool trusts the server certificate.
func NewSefazServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *x509.CertPool) {
	t.Helper()

	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)

	pool := x509.NewCertPool()
	pool.AddCert(srv.Certificate())
	return srv, pool
}

// EventResponse returns a SOAP response carrying retEnvEvento with one retEvento.
func EventResponse(eventStatus, reason string) string {
	return `<?xml version="1.0" encoding="utf-8"?>` +
		`<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">` +
		`<soap:Body><nfeResultMsg xmlns="http://www.portalfiscal.inf.br/nfe/wsdl/NFeRecepcaoEvento4">` +
		`<retEnvEvento xmlns="http://www.portalfiscal.inf.br/nfe" versao="1.00">` +
		`<idLote>1</idLote><tpAmb>2</tpAmb><verAplic>AN_1.0</verAplic><cOrgao>91</cOrgao>` +
		`<cStat>128</cStat><xMotivo>Lote de evento processado</xMotivo>` +
		`<retEvento versao="1.00"><infEvento>` +
		`<tpAmb>2</tpAmb><verAplic>AN_1.0</verAplic><cOrgao>91</cOrgao>` +
		`<cStat>` + eventStatus + `</cStat><xMotivo>` + reason + `</xMotivo>` +
		`<chNFe>41240112345678000199550010000001231000000016</chNFe><tpEvento>210200</tpEvento>` +
		`<nSeqEvento>1</nSeqEvento><dhRegEvento>2024-01-15T10:30:05-03:00</dhRegEvento>` +
		`<nProt>891240000000001</nProt>` +
		`</infEvento></retEvento></retEnvEvento></nfeResultMsg></soap:Body></soap:Envelope>`
}

// SOAPFault returns a SOAP 1.2 fault body.
func SOAPFault(reason string) string {
	return `<?xml version="1.0" encoding="utf-8"?>` +
		`<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope"><soap:Body>` +
		`<soap:Fault><soap:Code><soap:Value>soap:Receiver</soap:Value></soap:Code>` +
		`<soap:Reason><soap:Text xml:lang="pt">` + reason + `</soap:Text></soap:Reason></soap:Fault>` +
		`</soap:Body></soap:Envelope>`
}
