package nfe

// certificate.go loads ICP-Brasil A1 certificates (PKCS#12 / .pfx) used both to sign
// events and to authenticate the TLS connection to SEFAZ.

import (
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"software.sslmate.com/src/go-pkcs12"
)

// A1Certificate is a decoded PKCS#12 bundle.
type A1Certificate struct {
	PrivateKey *rsa.PrivateKey
	Leaf       *x509.Certificate

	// Chain holds any CA certificates bundled with the leaf
	Chain []*x509.Certificate
}

// CertificateInfo summarises a certificate for display and logging.
type CertificateInfo struct {
	Subject      string    `json:"subject"`
	Issuer       string    `json:"issuer"`
	CNPJ         string    `json:"cnpj,omitempty"`
	SerialNumber string    `json:"serialNumber"`
	NotBefore    time.Time `json:"notBefore"`
	NotAfter     time.Time `json:"notAfter"`
}

// CertificateLoader reads .pfx files from disk.
//
// When AllowedDir is set, paths are resolved inside that directory and any path that
// escapes it is rejected.
type CertificateLoader struct {
	AllowedDir string
}

// LoadA1Certificate reads and decodes a .pfx file without directory restrictions.
func LoadA1Certificate(path, password string) (*A1Certificate, error) {
	return CertificateLoader{}.Load(path, password)
}

// Load reads the .pfx at path and decodes it with password.
func (l CertificateLoader) Load(path, password string) (*A1Certificate, error) {
	if path == "" {
		return nil, NewCertificateError("caminho do certificado não informado")
	}

	data, err := l.readFile(path)
	if err != nil {
		return nil, err
	}

	return ParseA1Certificate(data, password)
}

func (l CertificateLoader) readFile(path string) ([]byte, error) {
	dir, name := filepath.Dir(path), filepath.Base(path)

	if l.AllowedDir != "" {
		dir = l.AllowedDir
		name = path
		if filepath.IsAbs(path) {
			rel, err := filepath.Rel(l.AllowedDir, path)
			if err != nil {
				return nil, WrapCertificateError(err, fmt.Sprintf("certificado fora do diretório permitido: %s", path))
			}
			name = rel
		}
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, WrapCertificateError(err, fmt.Sprintf("falha ao abrir diretório %s", dir))
	}
	defer root.Close()

	data, err := root.ReadFile(name)
	if err != nil {
		return nil, WrapCertificateError(err, fmt.Sprintf("falha ao ler certificado %s", path))
	}
	return data, nil
}

// ParseA1Certificate decodes PKCS#12 data. Only RSA keys are accepted since the
// NF-e signature algorithm is RSA-SHA1.
func ParseA1Certificate(pfx []byte, password string) (*A1Certificate, error) {
	key, leaf, chain, err := pkcs12.DecodeChain(pfx, password)
	if err != nil {
		if errors.Is(err, pkcs12.ErrIncorrectPassword) {
			return nil, WrapCertificateError(err, "senha do certificado incorreta")
		}
		return nil, WrapCertificateError(err, "falha ao decodificar certificado PKCS#12")
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, NewCertificateError(fmt.Sprintf("tipo de chave não suportado: %T (esperado RSA)", key))
	}

	return &A1Certificate{PrivateKey: rsaKey, Leaf: leaf, Chain: chain}, nil
}

// GetKeyPair implements dsig.X509KeyStore.
func (c *A1Certificate) GetKeyPair() (*rsa.PrivateKey, []byte, error) {
	if c == nil || c.PrivateKey == nil || c.Leaf == nil {
		return nil, nil, NewCertificateError("certificado não carregado")
	}
	return c.PrivateKey, c.Leaf.Raw, nil
}

// TLSCertificate returns the certificate for use as a TLS client certificate.
func (c *A1Certificate) TLSCertificate() tls.Certificate {
	raw := [][]byte{c.Leaf.Raw}
	for _, ca := range c.Chain {
		raw = append(raw, ca.Raw)
	}
	return tls.Certificate{
		Certificate: raw,
		PrivateKey:  c.PrivateKey,
		Leaf:        c.Leaf,
	}
}

// Info summarises the leaf certificate.
func (c *A1Certificate) Info() CertificateInfo {
	return CertificateInfo{
		Subject:      c.Leaf.Subject.String(),
		Issuer:       c.Leaf.Issuer.String(),
		CNPJ:         CNPJFromCommonName(c.Leaf.Subject.CommonName),
		SerialNumber: c.Leaf.SerialNumber.String(),
		NotBefore:    c.Leaf.NotBefore,
		NotAfter:     c.Leaf.NotAfter,
	}
}

// ValidAt reports whether t falls inside the leaf's validity period.
func (c *A1Certificate) ValidAt(t time.Time) bool {
	return !t.Before(c.Leaf.NotBefore) && !t.After(c.Leaf.NotAfter)
}

// CNPJFromCommonName extracts the CNPJ from an ICP-Brasil e-CNPJ common name
// ("RAZAO SOCIAL:12345678000199"). Returns "" when the CN does not follow that format.
func CNPJFromCommonName(cn string) string {
	i := strings.LastIndex(cn, ":")
	if i < 0 {
		return ""
	}
	candidate := strings.TrimSpace(cn[i+1:])
	if len(candidate) != 14 {
		return ""
	}
	for _, r := range candidate {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return candidate
}
