package manifestacao

// service.go runs the manifestation pipeline: build event, serialize, sign, transmit.

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fiscal-integrations/manifestacao/internal/logger"
	"github.com/fiscal-integrations/manifestacao/internal/metrics"
	"github.com/fiscal-integrations/manifestacao/internal/nfe"
)

// Serializer renders the event as the unsigned <evento> XML.
type Serializer interface {
	SerializeEvent(event *nfe.ManifestationEvent, homologacao bool) (string, error)
}

// Signer signs an <evento> document.
type Signer interface {
	Sign(xml string) (string, error)
}

// Transmitter submits a signed event to SEFAZ and returns the raw response.
type Transmitter interface {
	Evento(ctx context.Context, modelo, signedXML string) (string, error)
}

// CertificateLoader reads and decodes the A1 certificate named in a request.
type CertificateLoader func(certPath, password string) (*nfe.A1Certificate, error)

// SignerFactory creates a Signer for a loaded certificate.
type SignerFactory func(cert *nfe.A1Certificate) (Signer, error)

// TransmitterFactory creates a Transmitter for the state, certificate and environment.
type TransmitterFactory func(uf string, cert *nfe.A1Certificate, homologacao bool) (Transmitter, error)

// Service processes manifestation requests. It holds no per-request state and is safe
// for concurrent use.
type Service struct {
	serializer      Serializer
	loadCertificate CertificateLoader
	newSigner       SignerFactory
	newTransmitter  TransmitterFactory

	// now stamps the event issue time (dhEvento)
	now func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now as the source of the event timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service using the given collaborators.
// The certificate is loaded once per request and shared by the signer and the transmitter.
func NewService(
	serializer Serializer,
	loadCertificate CertificateLoader,
	newSigner SignerFactory,
	newTransmitter TransmitterFactory,
	opts ...Option,
) *Service {
	s := &Service{
		serializer:      serializer,
		loadCertificate: loadCertificate,
		newSigner:       newSigner,
		newTransmitter:  newTransmitter,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Manifest registers the manifestation described by req and returns the raw SEFAZ response.
//
// SEFAZ rejections that come back as a normal response (e.g. cStat 573, duplicate event)
// are not errors: the caller receives the response text.
func (s *Service) Manifest(ctx context.Context, req *ManifestationRequest) (string, error) {
	operation := operationLabel(nfe.Operation(req.Operacao))

	raw, err := s.run(ctx, req)
	if err != nil {
		metrics.ManifestationsTotal.WithLabelValues(operation, ErrorCodeText(err)).Inc()
		return "", err
	}

	metrics.ManifestationsTotal.WithLabelValues(operation, "success").Inc()
	s.recordReceipt(ctx, req, raw)
	return raw, nil
}

func (s *Service) run(ctx context.Context, req *ManifestationRequest) (string, error) {
	reqLogger := logger.ContextRequestLogger(ctx)

	event, err := nfe.NewManifestationEvent(req.Input(), s.now())
	if err != nil {
		return "", err
	}

	logger.ContextWithLogAttrs(ctx,
		slog.String("uf", req.UF),
		slog.Bool("homologacao", req.Homologacao),
		slog.String("operation", event.Operation.String()),
		slog.String("event_id", event.ID()),
	)

	unsigned, err := s.serializer.SerializeEvent(event, req.Homologacao)
	if err != nil {
		return "", err
	}

	cert, err := s.loadCertificate(req.Certificado, req.Senha)
	if err != nil {
		return "", err
	}

	signer, err := s.newSigner(cert)
	if err != nil {
		return "", err
	}
	signed, err := signer.Sign(unsigned)
	if err != nil {
		return "", err
	}
	reqLogger.Debug("event signed", slog.String("event_id", event.ID()))

	transmitter, err := s.newTransmitter(req.UF, cert, req.Homologacao)
	if err != nil {
		return "", err
	}

	start := time.Now()
	raw, err := transmitter.Evento(ctx, nfe.ModelNFe, signed)
	metrics.SefazRequestDuration.
		WithLabelValues(ufLabel(req.UF), nfe.EnvironmentCode(req.Homologacao)).
		Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}

	return raw, nil
}

// recordReceipt logs and counts the cStat values of the response.
// The response is returned to the caller unchanged whether or not it parses.
func (s *Service) recordReceipt(ctx context.Context, req *ManifestationRequest, raw string) {
	reqLogger := logger.ContextRequestLogger(ctx)

	result, err := nfe.ParseEventResponse(raw)
	if err != nil {
		reqLogger.Warn("could not read SEFAZ event status", slog.String("error", err.Error()))
		return
	}

	for _, ev := range result.Events {
		metrics.SefazEventStatusTotal.WithLabelValues(ufLabel(req.UF), cstatLabel(ev.Status)).Inc()
	}

	attrs := []slog.Attr{
		slog.String("batch_status", result.BatchStatus),
		slog.Bool("accepted", result.Accepted()),
	}
	if len(result.Events) > 0 {
		attrs = append(attrs,
			slog.String("cstat", result.Events[0].Status),
			slog.String("xmotivo", result.Events[0].Reason),
			slog.String("protocol", result.Events[0].Protocol),
		)
	}
	logger.ContextWithLogAttrs(ctx, attrs...)

	if !result.Accepted() {
		reqLogger.Info("SEFAZ did not register the event",
			slog.String("batch_status", result.BatchStatus),
			slog.String("batch_reason", result.BatchReason))
	}
}

// Metric labels are derived from request and response fields, so they are mapped
// onto closed sets before use.

func operationLabel(op nfe.Operation) string {
	if !op.Valid() {
		return "invalid"
	}
	return op.String()
}

func ufLabel(uf string) string {
	uf = strings.ToUpper(strings.TrimSpace(uf))
	if _, err := nfe.UFCode(uf); err != nil {
		return "unknown"
	}
	return uf
}

// cStat is always three digits
func cstatLabel(cstat string) string {
	if len(cstat) != 3 || strings.Trim(cstat, "0123456789") != "" {
		return "other"
	}
	return cstat
}
