package services

// services.go builds the manifestation pipeline collaborators from configuration.

import (
	"log/slog"

	"github.com/fiscal-integrations/manifestacao/internal/config"
	"github.com/fiscal-integrations/manifestacao/internal/manifestacao"
	"github.com/fiscal-integrations/manifestacao/internal/nfe"
)

// Services aggregates the collaborators used by the manifestation pipeline.
type Services struct {
	Serializer *nfe.XMLSerializer
	Toolkit    *Toolkit
}

// NewServices creates the collaborators based on configuration.
// This is the single entry point for initializing the SEFAZ integration.
func NewServices(cfg *config.SefazEnvironment, logger *slog.Logger) (*Services, error) {
	source, err := nfe.NewDataSource(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	toolkit, err := NewToolkit(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Services{
		Serializer: nfe.NewXMLSerializer(source),
		Toolkit:    toolkit,
	}, nil
}

// ManifestationService returns the pipeline backed by these collaborators.
func (s *Services) ManifestationService(opts ...manifestacao.Option) *manifestacao.Service {
	return manifestacao.NewService(
		s.Serializer,
		s.Toolkit.LoadCertificate,
		s.Toolkit.NewSigner,
		s.Toolkit.NewTransmitter,
		opts...,
	)
}
