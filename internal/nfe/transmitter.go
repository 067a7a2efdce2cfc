package nfe

// transmitter.go posts signed events to the SEFAZ NFeRecepcaoEvento4 web service.

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// ModelNFe is the only document model supported by Evento
const ModelNFe = "nfe"

const (
	defaultTimeout        = 30 * time.Second
	defaultRetryBaseDelay = 500 * time.Millisecond
	maxResponseBytes      = 4 << 20
)

// ClientOptions configures a SefazClient. The zero value is usable.
type ClientOptions struct {
	// Timeout bounds each HTTP attempt (default 30s)
	Timeout time.Duration

	// MaxRetries is the number of extra attempts after a transient failure
	// (network error, 502, 503, 504). Zero disables retries.
	MaxRetries uint64

	// RetryBaseDelay is the first backoff interval; it doubles on each retry
	RetryBaseDelay time.Duration

	// RootCAs verifies the SEFAZ server certificate (nil = system roots)
	RootCAs *x509.CertPool

	InsecureSkipVerify bool

	// Endpoint overrides the URL resolved from the state table
	Endpoint string

	// BatchID generates idLote values (default: time based, 15 digits max)
	BatchID func() string

	Logger *slog.Logger
}

// SefazClient submits events for one state, environment and certificate.
type SefazClient struct {
	uf          string
	homologacao bool
	endpoint    string
	httpClient  *http.Client
	opts        ClientOptions
	logger      *slog.Logger
}

// NewSefazClient creates a client that authenticates with cert over mutual TLS.
func NewSefazClient(uf string, cert *A1Certificate, homologacao bool, opts ClientOptions) (*SefazClient, error) {
	if cert == nil {
		return nil, NewCertificateError("certificado não carregado")
	}

	endpoint := opts.Endpoint
	if endpoint == "" {
		var err error
		endpoint, err = EventEndpoint(uf, homologacao)
		if err != nil {
			return nil, err
		}
	}

	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = defaultRetryBaseDelay
	}
	if opts.BatchID == nil {
		opts.BatchID = timeBatchID
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			Certificates:       []tls.Certificate{cert.TLSCertificate()},
			RootCAs:            opts.RootCAs,
			InsecureSkipVerify: opts.InsecureSkipVerify, // #nosec G402 -- opt-in via SEFAZ_INSECURE_SKIP_VERIFY
			MinVersion:         tls.VersionTLS12,
			Renegotiation:      tls.RenegotiateOnceAsClient,
		},
		TLSHandshakeTimeout: 10 * time.Second,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 2,
	}

	return &SefazClient{
		uf:          strings.ToUpper(uf),
		homologacao: homologacao,
		endpoint:    endpoint,
		httpClient:  &http.Client{Transport: transport, Timeout: opts.Timeout},
		opts:        opts,
		logger:      logger,
	}, nil
}

// Endpoint returns the URL events are posted to.
func (c *SefazClient) Endpoint() string { return c.endpoint }

// Evento submits a signed <evento> and returns the raw SOAP response body.
//
// SEFAZ business rejections (e.g. cStat 573, duplicate event) are part of a normal response
// and are returned as text; only transport failures, non-2xx statuses and SOAP faults are errors.
func (c *SefazClient) Evento(ctx context.Context, modelo, signedXML string) (string, error) {
	if strings.ToLower(modelo) != ModelNFe {
		return "", NewValidationError(fmt.Sprintf("modelo não suportado: %q", modelo))
	}

	envelope, err := BuildEventEnvelope(c.opts.BatchID(), signedXML)
	if err != nil {
		return "", err
	}

	backoff := retry.WithMaxRetries(c.opts.MaxRetries, retry.NewExponential(c.opts.RetryBaseDelay))

	var raw string
	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		body, err := c.post(ctx, envelope)
		if err != nil {
			if isRetryable(err) {
				c.logger.Warn("SEFAZ request failed, retrying",
					slog.String("uf", c.uf),
					slog.Int("attempt", attempt),
					slog.String("error", err.Error()))
				return retry.RetryableError(err)
			}
			return err
		}
		raw = body
		return nil
	})
	if err != nil {
		var nfeErr *NfeError
		if !errors.As(err, &nfeErr) {
			// context cancellation surfaces unwrapped from retry.Do
			return "", WrapTransportError(err, "comunicação com a SEFAZ interrompida")
		}
		return "", err
	}

	return raw, nil
}

// statusError marks responses with a retryable HTTP status
type statusError struct {
	status int
	err    error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

func isRetryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		switch se.status {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	var nfeErr *NfeError
	return errors.As(err, &nfeErr) && nfeErr.Code() == ErrCodeTransport
}

func (c *SefazClient) post(ctx context.Context, envelope string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(envelope))
	if err != nil {
		return "", WrapInternalError(err, "falha ao criar requisição")
	}
	req.Header.Set("Content-Type", fmt.Sprintf(`application/soap+xml; charset=utf-8; action="%s"`, eventServiceAction))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", WrapTransportError(err, "falha na comunicação com a SEFAZ")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", WrapTransportError(err, "falha ao ler resposta da SEFAZ")
	}
	body := string(data)

	c.logger.Debug("SEFAZ response received",
		slog.String("uf", c.uf),
		slog.String("endpoint", c.endpoint),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("SEFAZ retornou HTTP %d", resp.StatusCode)
		if fault := soapFault(body); fault != nil {
			msg = fmt.Sprintf("%s: %s", msg, fault.Error())
		}
		return "", &statusError{status: resp.StatusCode, err: NewAuthorityError(msg)}
	}

	if fault := soapFault(body); fault != nil {
		return "", fault
	}

	return body, nil
}

func timeBatchID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}
