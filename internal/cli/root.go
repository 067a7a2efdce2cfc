package cli

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fiscal-integrations/manifestacao/internal/config"
	"github.com/fiscal-integrations/manifestacao/internal/logger"
	"github.com/fiscal-integrations/manifestacao/internal/version"
)

var (
	cfg       *config.ClientEnvironment
	appLogger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:               "manifestacao",
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	SilenceUsage:      true,
	Short:             "Manifestação do destinatário CLI",
	Long: `Command line client for registering recipient manifestation events (manifestação do destinatário)
with SEFAZ and for inspecting the inputs they need: A1 certificates, NF-e access keys and event endpoints.

SEFAZ client settings (SEFAZ_TIMEOUT, SEFAZ_MAX_RETRIES, SEFAZ_CA_BUNDLE, TIMEZONE...) are read
from the same environment variables as the server.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.NewClientConfig()
		if err != nil {
			log.Printf("failed to load configuration: %v", err.Error())
			return err
		}

		appLogger = logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)
		return nil
	},
}

func Execute() {
	v := version.Get()
	rootCmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(enviarCmd)
	rootCmd.AddCommand(certificadoCmd)
	rootCmd.AddCommand(chaveCmd)
	rootCmd.AddCommand(endpointCmd)
}

// passwordFromFlagOrEnv avoids passing the certificate password on the command line
func passwordFromFlagOrEnv(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("CERT_PASSWORD")
}
