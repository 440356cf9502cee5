package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/crytic/ethdebug/cmd/exitcodes"
	"github.com/crytic/ethdebug/sourcemaps"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// sourcemapCmd represents the command provider for source map decoding
var sourcemapCmd = &cobra.Command{
	Use:   "sourcemap",
	Short: "Decodes a compact source map into its expanded elements",
	Long:  `Decodes a compact source map into its expanded elements`,
	Args:  cmdValidateSourcemapArgs,
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return cmdUnusedFlags(cmd)
	},
	RunE:          cmdRunSourcemap,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Add all the flags allowed for the sourcemap command
	addSourcemapFlags()

	// Add the sourcemap command and its associated flags to the root command
	rootCmd.AddCommand(sourcemapCmd)
}

// cmdValidateSourcemapArgs makes sure that there are no positional arguments provided to the sourcemap command
func cmdValidateSourcemapArgs(cmd *cobra.Command, args []string) error {
	// Make sure we have no positional args
	if err := cobra.NoArgs(cmd, args); err != nil {
		err = fmt.Errorf("sourcemap does not accept any positional arguments, only flags and their associated values")
		cmdLogger.Error("Failed to validate args to the sourcemap command", err)
		return err
	}
	return nil
}

// cmdRunSourcemap executes the CLI sourcemap command. The compact source map is taken from --map, or
// from the artifact's sourcemap payload when --artifact is used instead. The decoded elements are
// printed as JSON by default, or re-serialized to the compact form when --compact is used.
func cmdRunSourcemap(cmd *cobra.Command, args []string) error {
	raw, err := cmd.Flags().GetString("map")
	if err != nil {
		cmdLogger.Error("Failed to run the sourcemap command", err)
		return err
	}
	artifactPath, err := cmd.Flags().GetString("artifact")
	if err != nil {
		cmdLogger.Error("Failed to run the sourcemap command", err)
		return err
	}

	if raw == "" && artifactPath == "" {
		err = errors.New("either --map or --artifact must be provided")
		cmdLogger.Error("Failed to run the sourcemap command", err)
		return err
	}

	if raw == "" {
		contract, _, err := loadContractType(artifactPath)
		if err != nil {
			cmdLogger.Error("Failed to load the contract artifact", err)
			return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
		}
		raw = contract.SourceMap
	}

	sourceMap, err := sourcemaps.ParseSourceMap(raw)
	if err != nil {
		cmdLogger.Error("Failed to parse the source map", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	compact, err := cmd.Flags().GetBool("compact")
	if err != nil {
		cmdLogger.Error("Failed to run the sourcemap command", err)
		return err
	}
	if compact {
		fmt.Println(sourceMap.Serialize())
		return nil
	}

	encoded, err := json.MarshalIndent(sourceMap, "", "  ")
	if err != nil {
		cmdLogger.Error("Failed to encode the source map", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	fmt.Println(string(encoded))

	cmdLogger.Debug("Decoded ", len(sourceMap), " source map elements")
	return nil
}
