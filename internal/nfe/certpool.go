package nfe

// certpool.go loads custom root CAs used to verify SEFAZ server certificates.
// ICP-Brasil roots are not shipped with most operating systems.

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
)

// ParseCertificateChain parses one or more X.509 certificates from PEM-encoded data.
// The certificates are returned in the order they appear in the PEM data.
func ParseCertificateChain(pemData []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	var block *pem.Block
	remaining := pemData

	for {
		block, remaining = pem.Decode(remaining)
		if block == nil {
			break
		}

		// Skip non-certificate blocks
		if block.Type != "CERTIFICATE" {
			continue
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, WrapCertificateError(err, "failed to parse certificate")
		}

		certs = append(certs, cert)
	}

	if len(certs) == 0 {
		return nil, NewCertificateError("no certificates found in PEM data")
	}

	return certs, nil
}

// LoadCustomRootCAs loads root CAs from a PEM bundle into a cert pool.
func LoadCustomRootCAs(path string) (*x509.CertPool, error) {
	if path == "" {
		return nil, fmt.Errorf("nil custom roots path received")
	}

	root, err := os.OpenRoot(filepath.Dir(path))
	if err != nil {
		return nil, WrapInternalError(err, fmt.Sprintf("failed to open directory %s", filepath.Dir(path)))
	}
	defer root.Close()

	pemData, err := root.ReadFile(filepath.Base(path))
	if err != nil {
		return nil, WrapInternalError(err, fmt.Sprintf("failed to read %s", path))
	}

	certs, err := ParseCertificateChain(pemData)
	if err != nil {
		return nil, err
	}

	pool := x509.NewCertPool()
	for _, cert := range certs {
		pool.AddCert(cert)
	}

	return pool, nil
}
