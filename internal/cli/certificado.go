package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fiscal-integrations/manifestacao/internal/nfe"
)

var certificadoCmd = &cobra.Command{
	Use:   "certificado <arquivo.pfx>",
	Short: "Show the details of an A1 certificate",
	Long: `Decode an A1 (PKCS#12) certificate and print its subject, CNPJ and validity.

The password can be supplied with --senha or the CERT_PASSWORD environment variable.

Example:
  manifestacao certificado ./empresa.pfx --json`,
	Args: cobra.ExactArgs(1),
	RunE: runCertificado,
}

var (
	certificadoSenha string
	certificadoJSON  bool
)

func init() {
	certificadoCmd.Flags().StringVar(&certificadoSenha, "senha", "", "Certificate password (default: $CERT_PASSWORD)")
	certificadoCmd.Flags().BoolVar(&certificadoJSON, "json", false, "Print as JSON")
}

func runCertificado(cmd *cobra.Command, args []string) error {
	loader := nfe.CertificateLoader{AllowedDir: cfg.AllowedCertDir}
	cert, err := loader.Load(args[0], passwordFromFlagOrEnv(certificadoSenha))
	if err != nil {
		return err
	}

	info := cert.Info()
	out := cmd.OutOrStdout()

	if certificadoJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	status := "válido"
	if !cert.ValidAt(time.Now()) {
		status = "fora da validade"
	}

	fmt.Fprintf(out, "Titular:   %s\n", info.Subject)
	fmt.Fprintf(out, "Emissor:   %s\n", info.Issuer)
	fmt.Fprintf(out, "CNPJ:      %s\n", info.CNPJ)
	fmt.Fprintf(out, "Série:     %s\n", info.SerialNumber)
	fmt.Fprintf(out, "Validade:  %s a %s (%s)\n",
		info.NotBefore.Format(time.DateTime), info.NotAfter.Format(time.DateTime), status)
	return nil
}
