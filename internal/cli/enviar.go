package cli

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fiscal-integrations/manifestacao/internal/manifestacao"
	"github.com/fiscal-integrations/manifestacao/internal/nfe"
	"github.com/fiscal-integrations/manifestacao/internal/services"
)

var enviarCmd = &cobra.Command{
	Use:   "enviar",
	Short: "Send a manifestation event to SEFAZ",
	Long: `Build, sign and send a manifestação do destinatário event and print the SEFAZ response.

Operations:
  1  Confirmação da Operação
  2  Ciência da Operação
  3  Desconhecimento da Operação
  4  Operação não Realizada (accepts --justificativa)

The certificate password can be supplied with --senha or the CERT_PASSWORD environment variable.

Example:
  manifestacao enviar --certificado ./empresa.pfx --uf PR --homologacao \
    --cnpj 12345678000199 --chave 41240112345678000199550010000001231000000016 --operacao 2`,
	RunE: runEnviar,
}

var enviarFlags struct {
	certificado   string
	senha         string
	uf            string
	homologacao   bool
	cnpj          string
	chave         string
	operacao      int
	justificativa string
	endpoint      string
	dryRun        bool
}

func init() {
	f := enviarCmd.Flags()
	f.StringVar(&enviarFlags.certificado, "certificado", "", "Path to the A1 certificate (.pfx) [required]")
	f.StringVar(&enviarFlags.senha, "senha", "", "Certificate password (default: $CERT_PASSWORD)")
	f.StringVar(&enviarFlags.uf, "uf", "", "State the event is sent to, e.g. PR, or AN for Ambiente Nacional [required]")
	f.BoolVar(&enviarFlags.homologacao, "homologacao", false, "Use the homologation environment")
	f.StringVar(&enviarFlags.cnpj, "cnpj", "", "Recipient CNPJ [required]")
	f.StringVar(&enviarFlags.chave, "chave", "", "NF-e access key (44 digits) [required]")
	f.IntVar(&enviarFlags.operacao, "operacao", 0, "Operation: 1, 2, 3 or 4 [required]")
	f.StringVar(&enviarFlags.justificativa, "justificativa", "", "Justification (operation 4)")
	f.StringVar(&enviarFlags.endpoint, "endpoint", "", "Override the SEFAZ event service URL")
	f.BoolVar(&enviarFlags.dryRun, "dry-run", false, "Print the signed event instead of sending it")
	enviarCmd.MarkFlagRequired("certificado")
	enviarCmd.MarkFlagRequired("uf")
	enviarCmd.MarkFlagRequired("cnpj")
	enviarCmd.MarkFlagRequired("chave")
	enviarCmd.MarkFlagRequired("operacao")
}

func runEnviar(cmd *cobra.Command, args []string) error {
	svc, err := services.NewServices(&cfg.SefazEnvironment, appLogger)
	if err != nil {
		return err
	}
	if enviarFlags.endpoint != "" {
		svc.Toolkit.OverrideEndpoint(enviarFlags.endpoint)
	}

	req := &manifestacao.ManifestationRequest{
		Certificado:   enviarFlags.certificado,
		Senha:         passwordFromFlagOrEnv(enviarFlags.senha),
		UF:            enviarFlags.uf,
		Homologacao:   enviarFlags.homologacao,
		CNPJ:          enviarFlags.cnpj,
		Chave:         enviarFlags.chave,
		Operacao:      enviarFlags.operacao,
		Justificativa: enviarFlags.justificativa,
	}

	// the server does not validate keys; the CLI warns early
	if _, err := nfe.ParseAccessKey(req.Chave); err != nil {
		appLogger.Warn("access key looks invalid", slog.String("error", err.Error()))
	}

	if enviarFlags.dryRun {
		signed, err := signOnly(svc, req)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), signed)
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	raw, err := svc.ManifestationService().Manifest(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), raw)

	if result, err := nfe.ParseEventResponse(raw); err == nil && len(result.Events) > 0 {
		ev := result.Events[0]
		fmt.Fprintf(cmd.ErrOrStderr(), "cStat %s: %s\n", ev.Status, ev.Reason)
		if !result.Accepted() {
			return fmt.Errorf("evento não registrado pela SEFAZ (cStat %s)", ev.Status)
		}
	}
	return nil
}

// signOnly runs the pipeline up to the signature
func signOnly(svc *services.Services, req *manifestacao.ManifestationRequest) (string, error) {
	event, err := nfe.NewManifestationEvent(req.Input(), time.Now())
	if err != nil {
		return "", err
	}
	unsigned, err := svc.Serializer.SerializeEvent(event, req.Homologacao)
	if err != nil {
		return "", err
	}
	cert, err := svc.Toolkit.LoadCertificate(req.Certificado, req.Senha)
	if err != nil {
		return "", err
	}
	signer, err := svc.Toolkit.NewSigner(cert)
	if err != nil {
		return "", err
	}
	return signer.Sign(unsigned)
}
