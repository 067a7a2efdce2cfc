package services

// toolkit.go creates signers and SEFAZ clients for the certificate named in a request.

import (
	"crypto/x509"
	"fmt"
	"log/slog"
	"time"

	"github.com/fiscal-integrations/manifestacao/internal/config"
	"github.com/fiscal-integrations/manifestacao/internal/manifestacao"
	"github.com/fiscal-integrations/manifestacao/internal/nfe"
)

// Toolkit creates per-request signers and transmitters.
type Toolkit struct {
	loader     nfe.CertificateLoader
	clientOpts nfe.ClientOptions
	now        func() time.Time
}

// NewToolkit loads the optional SEFAZ CA bundle and prepares the client options.
func NewToolkit(cfg *config.SefazEnvironment, logger *slog.Logger) (*Toolkit, error) {
	var rootCAs *x509.CertPool
	if cfg.SefazCABundle != "" {
		pool, err := nfe.LoadCustomRootCAs(cfg.SefazCABundle)
		if err != nil {
			return nil, fmt.Errorf("failed to load SEFAZ_CA_BUNDLE: %w", err)
		}
		rootCAs = pool
	}

	if cfg.SefazInsecureSkipVerify {
		logger.Warn("SEFAZ server certificate verification is disabled (SEFAZ_INSECURE_SKIP_VERIFY)")
	}

	return &Toolkit{
		loader: nfe.CertificateLoader{AllowedDir: cfg.AllowedCertDir},
		clientOpts: nfe.ClientOptions{
			Timeout:            cfg.SefazTimeout,
			MaxRetries:         cfg.SefazMaxRetries,
			RetryBaseDelay:     cfg.SefazRetryBaseDelay,
			RootCAs:            rootCAs,
			InsecureSkipVerify: cfg.SefazInsecureSkipVerify,
			Logger:             logger,
		},
		now: time.Now,
	}, nil
}

// LoadCertificate reads the A1 certificate and checks it is currently valid.
// It implements manifestacao.CertificateLoader.
func (t *Toolkit) LoadCertificate(path, password string) (*nfe.A1Certificate, error) {
	cert, err := t.loader.Load(path, password)
	if err != nil {
		return nil, err
	}

	if !cert.ValidAt(t.now()) {
		info := cert.Info()
		return nil, nfe.NewCertificateError(fmt.Sprintf("certificado fora da validade (%s a %s)",
			info.NotBefore.Format(time.DateOnly), info.NotAfter.Format(time.DateOnly)))
	}
	return cert, nil
}

// NewSigner implements manifestacao.SignerFactory.
func (t *Toolkit) NewSigner(cert *nfe.A1Certificate) (manifestacao.Signer, error) {
	signer, err := nfe.NewA1Signer(cert)
	if err != nil {
		return nil, err
	}
	return signer, nil
}

// NewTransmitter implements manifestacao.TransmitterFactory.
func (t *Toolkit) NewTransmitter(uf string, cert *nfe.A1Certificate, homologacao bool) (manifestacao.Transmitter, error) {
	client, err := nfe.NewSefazClient(uf, cert, homologacao, t.clientOpts)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// OverrideEndpoint sends every event to url instead of the endpoint of the state.
func (t *Toolkit) OverrideEndpoint(url string) {
	t.clientOpts.Endpoint = url
}
