package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fiscal-integrations/manifestacao/internal/nfe"
)

var endpointCmd = &cobra.Command{
	Use:   "endpoint <uf>",
	Short: "Print the SEFAZ event service used for a state",
	Long: `Print the authoriser and NFeRecepcaoEvento4 URL events for the state are sent to.

Example:
  manifestacao endpoint PR --homologacao`,
	Args: cobra.ExactArgs(1),
	RunE: runEndpoint,
}

var endpointHomologacao bool

func init() {
	endpointCmd.Flags().BoolVar(&endpointHomologacao, "homologacao", false, "Use the homologation environment")
}

func runEndpoint(cmd *cobra.Command, args []string) error {
	authoriser, err := nfe.AuthoriserFor(args[0])
	if err != nil {
		return err
	}
	url, err := nfe.EventEndpoint(args[0], endpointHomologacao)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", authoriser, url)
	return nil
}
