// manifestacao is the command line client for recipient manifestation events.
package main

import "github.com/fiscal-integrations/manifestacao/internal/cli"

func main() {
	cli.Execute()
}
