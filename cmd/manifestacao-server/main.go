package main

//go:generate swag init -g main.go -d ./,../../internal/manifestacao,../../internal/server/handlers -o ../../docs

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fiscal-integrations/manifestacao/internal/config"
	"github.com/fiscal-integrations/manifestacao/internal/logger"
	"github.com/fiscal-integrations/manifestacao/internal/server"
	"github.com/fiscal-integrations/manifestacao/internal/services"
	"github.com/fiscal-integrations/manifestacao/internal/version"
)

//	@title			manifestacao-server
//	@description	manifestacao-server registers recipient manifestation events (manifestação do destinatário)
//	@description	for NF-e with the SEFAZ event web service (NFeRecepcaoEvento4).
//	@description
//	@description	## Common Error Responses
//	@description	All endpoints may return:
//	@description	- `413` Request body exceeds size limit
//	@description	- `429` Rate limit exceeded
//	@description	- `500` Internal server error
//	@description
//	@description	Error bodies always have the form `{"detail": "..."}`.
//	@description
//	@description	## Request Limits
//	@description	The manifestation endpoint is protected by:
//	@description	- **Rate limiting**: Configurable requests per second (see env vars) - default 100 rps (set to 0 to disable)
//	@description	- **Request size limits**: Configurable (see env vars) - default 64KB
//	@description
//	@description	Check the X-Max-Request-Size response header for the configured limit.
//	@description
//	@description	## Certificates
//	@description	Requests name an A1 certificate (.pfx) by path. The file must be readable by the server and,
//	@description	when ALLOWED_CERT_DIR is set, located inside that directory.
//	@description	The password is used to decode the certificate and is never logged.
//	@description
//	@license.name	MIT

//	@servers.url			http://localhost:8080
//	@servers.description	Development server

//	@accept		json
//	@produce	json

//	@tag.name			Manifestação
//	@tag.description	Recipient manifestation events

//	@tag.name			Common
//	@tag.description	Server API endpoints (health, readiness, version, etc.)

func main() {
	cmd := &cobra.Command{
		Use:   "manifestacao-server",
		Short: "Manifestação do destinatário API server",
		Long:  `manifestacao-server exposes POST /manifestacoes for registering recipient manifestation events with SEFAZ`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	v := version.Get()
	cmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.NewServerConfig()
	if err != nil {
		log.Printf("failed to load configuration: %v", err.Error())
		os.Exit(1)
	}

	appLogger := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)

	appLogger.Info("Configuration loaded",
		slog.String("ENVIRONMENT", cfg.Environment),
		slog.String("HOST", cfg.Host),
		slog.Int("PORT", cfg.Port),
		slog.String("LOG_LEVEL", cfg.LogLevel),
		slog.Int64("MAX_REQUEST_BODY_BYTES", cfg.MaxRequestBodyBytes),
		slog.Int("RATE_LIMIT_RPS", int(cfg.RateLimitRPS)),
		slog.String("TIMEZONE", cfg.Timezone),
		slog.Duration("SEFAZ_TIMEOUT", cfg.SefazTimeout),
		slog.Uint64("SEFAZ_MAX_RETRIES", cfg.SefazMaxRetries),
		slog.String("SEFAZ_CA_BUNDLE", cfg.SefazCABundle),
		slog.Bool("SEFAZ_INSECURE_SKIP_VERIFY", cfg.SefazInsecureSkipVerify),
		slog.String("ALLOWED_CERT_DIR", cfg.AllowedCertDir),
	)

	svc, err := services.NewServices(&cfg.SefazEnvironment, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize services", slog.String("error", err.Error()))
		os.Exit(1)
	}

	appLogger.Info("Starting server", slog.String("version", version.Get().Version))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := server.NewServer(cfg, appLogger, svc.ManifestationService())

	if err := server.Start(ctx); err != nil {
		appLogger.Error("Server error", slog.String("error", err.Error()))
		return err
	}

	appLogger.Info("server shutdown complete")
	return nil
}
