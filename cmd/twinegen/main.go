package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/twinekit/twinegen/cmd/twinegen/commands"
	"github.com/twinekit/twinegen/logger"
)

var rootCmd = &cobra.Command{
	Use:   "twinegen",
	Short: "twinegen - Go code generator for the Twine interface language",
	Long: `twinegen - Go code generator for the Twine interface language.

twinegen consumes the intermediate representation emitted by the Twine
frontend and produces Go packages: type declarations with wire codecs,
RPC clients and server processors, and a command-line remote invoker
per service.

Examples:
  twinegen generate tutorial.json          # Generate into ./gen-go
  twinegen generate -o build tutorial.json # Generate into ./build
  twinegen version                         # Show build information`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		if err := logger.Initialize(jsonOutput, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json", false, "Log as JSON instead of console output")

	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
