package cmd

import (
	"github.com/crytic/ethdebug/logging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// cmdLogger is the logger used by every command. It starts as a sub-logger of the disabled global
// logger and is replaced with a live one once the root command configures logging.
var cmdLogger = logging.GlobalLogger.NewSubLogger("module", "cmd")

var rootCmd = &cobra.Command{
	Use:   "ethdebug",
	Short: "Decodes compiler debug artifacts for EVM smart contracts",
	Long:  "ethdebug decodes compiler debug artifacts for EVM smart contracts: source maps, PC maps, ABI selector tables, and source-level function lookups",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose, err := cmd.Flags().GetBool("verbose"); err == nil && verbose {
			level = zerolog.DebugLevel
		}

		// Each invocation gets its own run identifier in the logger context.
		logging.GlobalLogger = logging.NewLogger(level, true)
		cmdLogger = logging.GlobalLogger.NewSubLogger("run", uuid.New().String())
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug-level log output")
}

func Execute() error {
	return rootCmd.Execute()
}
