package manifestacao

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/fiscal-integrations/manifestacao/internal/metrics"
	"github.com/fiscal-integrations/manifestacao/internal/nfe"
)

const testAccessKey = "41240112345678000199550010000001231000000016"

// pipeline records the calls made to the fake collaborators
type pipeline struct {
	calls []string

	event       *nfe.ManifestationEvent
	homologacao bool

	certPath     string
	certPassword string
	cert         *nfe.A1Certificate
	signerCert   *nfe.A1Certificate
	signedInput  string

	transmitUF          string
	transmitCert        *nfe.A1Certificate
	transmitHomologacao bool
	transmitModelo      string
	transmitXML         string

	serializeErr  error
	loadCertErr   error
	newSignerErr  error
	signErr       error
	newTxErr      error
	transmitErr   error
	transmitReply string
}

func (p *pipeline) SerializeEvent(event *nfe.ManifestationEvent, homologacao bool) (string, error) {
	p.calls = append(p.calls, "serialize")
	p.event = event
	p.homologacao = homologacao
	if p.serializeErr != nil {
		return "", p.serializeErr
	}
	return "<evento>" + event.ID() + "</evento>", nil
}

func (p *pipeline) Sign(xml string) (string, error) {
	p.calls = append(p.calls, "sign")
	p.signedInput = xml
	if p.signErr != nil {
		return "", p.signErr
	}
	return xml + "<Signature/>", nil
}

func (p *pipeline) Evento(ctx context.Context, modelo, signedXML string) (string, error) {
	p.calls = append(p.calls, "transmit")
	p.transmitModelo = modelo
	p.transmitXML = signedXML
	if p.transmitErr != nil {
		return "", p.transmitErr
	}
	return p.transmitReply, nil
}

func (p *pipeline) service(opts ...Option) *Service {
	loadCertificate := func(certPath, password string) (*nfe.A1Certificate, error) {
		p.calls = append(p.calls, "load-certificate")
		p.certPath = certPath
		p.certPassword = password
		if p.loadCertErr != nil {
			return nil, p.loadCertErr
		}
		p.cert = &nfe.A1Certificate{}
		return p.cert, nil
	}
	newSigner := func(cert *nfe.A1Certificate) (Signer, error) {
		p.calls = append(p.calls, "new-signer")
		p.signerCert = cert
		if p.newSignerErr != nil {
			return nil, p.newSignerErr
		}
		return p, nil
	}
	newTransmitter := func(uf string, cert *nfe.A1Certificate, homologacao bool) (Transmitter, error) {
		p.calls = append(p.calls, "new-transmitter")
		p.transmitUF = uf
		p.transmitCert = cert
		p.transmitHomologacao = homologacao
		if p.newTxErr != nil {
			return nil, p.newTxErr
		}
		return p, nil
	}
	return NewService(p, loadCertificate, newSigner, newTransmitter, opts...)
}

func (p *pipeline) called(step string) bool {
	for _, c := range p.calls {
		if c == step {
			return true
		}
	}
	return false
}

func testRequest(operacao int) *ManifestationRequest {
	return &ManifestationRequest{
		Certificado: "/path/cert.pfx",
		Senha:       "secret",
		UF:          "PR",
		Homologacao: true,
		CNPJ:        "12345678000199",
		Chave:       testAccessKey,
		Operacao:    operacao,
	}
}

func TestManifestCallOrder(t *testing.T) {
	for _, op := range []int{1, 2, 3, 4} {
		t.Run(nfe.Operation(op).String(), func(t *testing.T) {
			p := &pipeline{transmitReply: "<retEnvEvento/>"}

			if _, err := p.service().Manifest(context.Background(), testRequest(op)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			want := []string{"serialize", "load-certificate", "new-signer", "sign", "new-transmitter", "transmit"}
			if strings.Join(p.calls, ",") != strings.Join(want, ",") {
				t.Errorf("calls = %v, want %v", p.calls, want)
			}
		})
	}
}

func TestManifestStampsEventWithClock(t *testing.T) {
	fixed := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	p := &pipeline{transmitReply: "ok"}

	if _, err := p.service(WithClock(func() time.Time { return fixed })).Manifest(context.Background(), testRequest(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !p.event.IssuedAt.Equal(fixed) {
		t.Errorf("IssuedAt = %v, want %v", p.event.IssuedAt, fixed)
	}
}

func TestManifestUsesCurrentTime(t *testing.T) {
	p := &pipeline{transmitReply: "ok"}

	before := time.Now()
	if _, err := p.service().Manifest(context.Background(), testRequest(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := time.Now()

	if p.event.IssuedAt.Before(before) || p.event.IssuedAt.After(after) {
		t.Errorf("IssuedAt %v not within handling window [%v, %v]", p.event.IssuedAt, before, after)
	}
}

func TestManifestSuccessReturnsRawResponse(t *testing.T) {
	reply := `<soap:Envelope><retEnvEvento><cStat>128</cStat></retEnvEvento></soap:Envelope>`
	p := &pipeline{transmitReply: reply}

	raw, err := p.service().Manifest(context.Background(), testRequest(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw != reply {
		t.Errorf("Manifest() = %q, want transmitter response %q", raw, reply)
	}
	if p.transmitXML != p.signedInput+"<Signature/>" {
		t.Errorf("transmitter received %q, want the signer output", p.transmitXML)
	}
}

func TestManifestHomologationExample(t *testing.T) {
	p := &pipeline{transmitReply: "resposta PR"}

	raw, err := p.service().Manifest(context.Background(), testRequest(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.event.Operation != nfe.OperationConfirmed {
		t.Errorf("event operation = %v, want confirmed", p.event.Operation)
	}
	if p.event.CNPJ != "12345678000199" || p.event.AccessKey != testAccessKey || p.event.UF != "PR" {
		t.Errorf("event fields not taken from the request: %+v", p.event)
	}
	if !p.homologacao {
		t.Error("serializer should be called for the homologation environment")
	}
	if p.certPath != "/path/cert.pfx" || p.certPassword != "secret" {
		t.Errorf("certificate loaded with %q/%q", p.certPath, p.certPassword)
	}
	if p.transmitUF != "PR" || !p.transmitHomologacao {
		t.Errorf("transmitter created for %s homologacao=%v", p.transmitUF, p.transmitHomologacao)
	}
	if p.transmitModelo != "nfe" {
		t.Errorf("modelo = %q, want nfe", p.transmitModelo)
	}
	if raw != "resposta PR" {
		t.Errorf("Manifest() = %q", raw)
	}
}

func TestManifestShortCircuits(t *testing.T) {
	tests := []struct {
		name       string
		pipeline   *pipeline
		operacao   int
		wantCalled []string
		notCalled  []string
		wantCode   nfe.ErrorCode
		wantText   string
	}{
		{
			name:      "invalid operation",
			pipeline:  &pipeline{},
			operacao:  7,
			notCalled: []string{"serialize", "sign", "transmit"},
			wantCode:  nfe.ErrCodeValidation,
			wantText:  "operação inválida",
		},
		{
			name:       "serialization fails",
			pipeline:   &pipeline{serializeErr: nfe.NewSerializationError("UF desconhecida: XX")},
			operacao:   1,
			wantCalled: []string{"serialize"},
			notCalled:  []string{"new-signer", "sign", "new-transmitter", "transmit"},
			wantCode:   nfe.ErrCodeSerialization,
			wantText:   "UF desconhecida: XX",
		},
		{
			name:       "certificate cannot be loaded",
			pipeline:   &pipeline{loadCertErr: nfe.NewCertificateError("senha do certificado incorreta")},
			operacao:   1,
			wantCalled: []string{"serialize", "load-certificate"},
			notCalled:  []string{"new-signer", "sign", "new-transmitter", "transmit"},
			wantCode:   nfe.ErrCodeCertificate,
			wantText:   "senha do certificado incorreta",
		},
		{
			name:       "signer cannot be created",
			pipeline:   &pipeline{newSignerErr: nfe.NewCertificateError("certificado não carregado")},
			operacao:   1,
			wantCalled: []string{"serialize", "load-certificate", "new-signer"},
			notCalled:  []string{"sign", "new-transmitter", "transmit"},
			wantCode:   nfe.ErrCodeCertificate,
			wantText:   "certificado não carregado",
		},
		{
			name:       "signing fails",
			pipeline:   &pipeline{signErr: nfe.NewSigningError("falha ao assinar")},
			operacao:   2,
			wantCalled: []string{"serialize", "sign"},
			notCalled:  []string{"new-transmitter", "transmit"},
			wantCode:   nfe.ErrCodeSigning,
			wantText:   "falha ao assinar",
		},
		{
			name:       "transmitter cannot be created",
			pipeline:   &pipeline{newTxErr: nfe.NewValidationError("UF sem serviço de eventos: XX")},
			operacao:   3,
			wantCalled: []string{"serialize", "sign", "new-transmitter"},
			notCalled:  []string{"transmit"},
			wantCode:   nfe.ErrCodeValidation,
			wantText:   "UF sem serviço de eventos",
		},
		{
			name:       "transmission fails",
			pipeline:   &pipeline{transmitErr: nfe.NewTransportError("connection refused")},
			operacao:   4,
			wantCalled: []string{"serialize", "sign", "transmit"},
			wantCode:   nfe.ErrCodeTransport,
			wantText:   "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := tt.pipeline.service().Manifest(context.Background(), testRequest(tt.operacao))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if raw != "" {
				t.Errorf("expected no response text on failure, got %q", raw)
			}

			var nfeErr *nfe.NfeError
			if !errors.As(err, &nfeErr) || nfeErr.Code() != tt.wantCode {
				t.Errorf("expected %s error, got %v", tt.wantCode, err)
			}
			if !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantText)
			}

			for _, step := range tt.wantCalled {
				if !tt.pipeline.called(step) {
					t.Errorf("%s should have been called (calls: %v)", step, tt.pipeline.calls)
				}
			}
			for _, step := range tt.notCalled {
				if tt.pipeline.called(step) {
					t.Errorf("%s should not have been called (calls: %v)", step, tt.pipeline.calls)
				}
			}
		})
	}
}

func TestManifestBusinessRejectionIsNotAnError(t *testing.T) {
	reply := `<retEnvEvento><cStat>128</cStat><retEvento><infEvento><cStat>573</cStat>` +
		`<xMotivo>Rejeicao: Duplicidade de evento</xMotivo></infEvento></retEvento></retEnvEvento>`
	p := &pipeline{transmitReply: reply}

	raw, err := p.service().Manifest(context.Background(), testRequest(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw != reply {
		t.Errorf("Manifest() = %q, want %q", raw, reply)
	}
}

func TestManifestLoadsCertificateOnce(t *testing.T) {
	p := &pipeline{transmitReply: "ok"}

	if _, err := p.service().Manifest(context.Background(), testRequest(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loads := 0
	for _, c := range p.calls {
		if c == "load-certificate" {
			loads++
		}
	}
	if loads != 1 {
		t.Errorf("certificate loaded %d times, want 1", loads)
	}
	if p.signerCert != p.cert || p.transmitCert != p.cert {
		t.Error("signer and transmitter should use the same loaded certificate")
	}
}

func TestManifestInvalidOperationsShareOneSeries(t *testing.T) {
	p := &pipeline{}
	svc := p.service()

	invalid := metrics.ManifestationsTotal.WithLabelValues("invalid", string(nfe.ErrCodeValidation))
	before := testutil.ToFloat64(invalid)
	seriesBefore := testutil.CollectAndCount(metrics.ManifestationsTotal)

	for op := 5; op <= 50; op++ {
		if _, err := svc.Manifest(context.Background(), testRequest(op)); err == nil {
			t.Fatalf("operacao %d: expected error", op)
		}
	}

	if got := testutil.CollectAndCount(metrics.ManifestationsTotal); got != seriesBefore {
		t.Errorf("invalid operations added %d series, want none beyond the shared one", got-seriesBefore)
	}
	if got := testutil.ToFloat64(invalid) - before; got != 46 {
		t.Errorf("invalid operation counter increased by %v, want 46", got)
	}
}

func TestManifestNormalisesUFLabel(t *testing.T) {
	reply := `<retEnvEvento><cStat>128</cStat><retEvento><infEvento><cStat>135</cStat>` +
		`<xMotivo>Evento registrado e vinculado a NF-e</xMotivo></infEvento></retEvento></retEnvEvento>`
	p := &pipeline{transmitReply: reply}
	svc := p.service()

	// make sure the normalised series already exists
	if _, err := svc.Manifest(context.Background(), testRequest(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	status := metrics.SefazEventStatusTotal.WithLabelValues("PR", "135")
	before := testutil.ToFloat64(status)
	durationSeries := testutil.CollectAndCount(metrics.SefazRequestDuration)
	statusSeries := testutil.CollectAndCount(metrics.SefazEventStatusTotal)

	for _, uf := range []string{"pr", " PR", "\tPr ", "pR\n"} {
		req := testRequest(1)
		req.UF = uf
		if _, err := svc.Manifest(context.Background(), req); err != nil {
			t.Fatalf("uf %q: unexpected error: %v", uf, err)
		}
	}

	if got := testutil.CollectAndCount(metrics.SefazRequestDuration); got != durationSeries {
		t.Errorf("uf variants added %d duration series", got-durationSeries)
	}
	if got := testutil.CollectAndCount(metrics.SefazEventStatusTotal); got != statusSeries {
		t.Errorf("uf variants added %d status series", got-statusSeries)
	}
	if got := testutil.ToFloat64(status) - before; got != 4 {
		t.Errorf("PR/135 counter increased by %v, want 4", got)
	}
}

func TestMetricLabels(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"valid operation", operationLabel(nfe.OperationNotRealized), "not-realized"},
		{"zero operation", operationLabel(0), "invalid"},
		{"large operation", operationLabel(1 << 20), "invalid"},
		{"lower case uf", ufLabel("sp"), "SP"},
		{"padded uf", ufLabel("  an "), "AN"},
		{"unknown uf", ufLabel("XX"), "unknown"},
		{"empty uf", ufLabel(""), "unknown"},
		{"cstat", cstatLabel("573"), "573"},
		{"non numeric cstat", cstatLabel("abc"), "other"},
		{"long cstat", cstatLabel("1350"), "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("label = %q, want %q", tt.got, tt.want)
			}
		})
	}
}
