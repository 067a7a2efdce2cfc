package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fiscal-integrations/manifestacao/internal/nfe"
)

var chaveCmd = &cobra.Command{
	Use:   "chave <chave-de-acesso>",
	Short: "Decompose and verify an NF-e access key",
	Long: `Split a 44-digit NF-e access key into its fields and verify the check digit.

Example:
  manifestacao chave 41240112345678000199550010000001231000000016`,
	Args: cobra.ExactArgs(1),
	RunE: runChave,
}

var chaveJSON bool

func init() {
	chaveCmd.Flags().BoolVar(&chaveJSON, "json", false, "Print as JSON")
}

func runChave(cmd *cobra.Command, args []string) error {
	key, err := nfe.ParseAccessKey(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if chaveJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(key)
	}

	fmt.Fprintf(out, "UF:            %s (%s)\n", key.UF(), key.UFCode)
	fmt.Fprintf(out, "Ano/mês:       %s\n", key.YearMonth)
	fmt.Fprintf(out, "CNPJ emitente: %s\n", key.IssuerCNPJ)
	fmt.Fprintf(out, "Modelo:        %s\n", key.Model)
	fmt.Fprintf(out, "Série:         %s\n", key.Series)
	fmt.Fprintf(out, "Número:        %s\n", key.Number)
	fmt.Fprintf(out, "Tipo emissão:  %s\n", key.EmissionType)
	fmt.Fprintf(out, "Código:        %s\n", key.RandomCode)
	fmt.Fprintf(out, "DV:            %d\n", key.CheckDigit)
	return nil
}
