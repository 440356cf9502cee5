package cmd

import (
	"fmt"
	"os"

	"github.com/crytic/ethdebug/cmd/exitcodes"
	"github.com/crytic/ethdebug/contracts"
	"github.com/crytic/ethdebug/sourcemaps"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// locateCmd represents the command provider for function location
var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Resolves a program counter to the source function that contains it",
	Long:  `Resolves a program counter to the source function that contains it`,
	Args:  cmdValidateLocateArgs,
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return cmdUnusedFlags(cmd)
	},
	RunE:          cmdRunLocate,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Add all the flags allowed for the locate command
	addLocateFlags()

	// Add the locate command and its associated flags to the root command
	rootCmd.AddCommand(locateCmd)
}

// cmdValidateLocateArgs makes sure that there are no positional arguments provided to the locate command
func cmdValidateLocateArgs(cmd *cobra.Command, args []string) error {
	// Make sure we have no positional args
	if err := cobra.NoArgs(cmd, args); err != nil {
		err = fmt.Errorf("locate does not accept any positional arguments, only flags and their associated values")
		cmdLogger.Error("Failed to validate args to the locate command", err)
		return err
	}
	return nil
}

// cmdRunLocate executes the CLI locate command, correlating the artifact's PC map and syntax tree
// with the source text to name the function containing the given program counter.
func cmdRunLocate(cmd *cobra.Command, args []string) error {
	artifactPath, err := cmd.Flags().GetString("artifact")
	if err != nil {
		cmdLogger.Error("Failed to run the locate command", err)
		return err
	}
	sourcePath, err := cmd.Flags().GetString("source")
	if err != nil {
		cmdLogger.Error("Failed to run the locate command", err)
		return err
	}
	if artifactPath == "" || sourcePath == "" {
		err = errors.New("both --artifact and --source must be provided")
		cmdLogger.Error("Failed to run the locate command", err)
		return err
	}

	pc, err := cmd.Flags().GetInt("pc")
	if err != nil {
		cmdLogger.Error("Failed to run the locate command", err)
		return err
	}

	// An optional method identifier lets the lookup report the ABI name of the dispatched method.
	var methodID []byte
	if cmd.Flags().Changed("method-id") {
		rawID, err := cmd.Flags().GetString("method-id")
		if err != nil {
			cmdLogger.Error("Failed to run the locate command", err)
			return err
		}
		methodID, err = hexutil.Decode(rawID)
		if err != nil {
			cmdLogger.Error("Failed to decode the method identifier", err)
			return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
		}
	}

	contract, _, err := loadContractType(artifactPath)
	if err != nil {
		cmdLogger.Error("Failed to load the contract artifact", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	sourceText, err := os.ReadFile(sourcePath)
	if err != nil {
		cmdLogger.Error("Failed to read the source file", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	contractSource, err := contracts.NewContractSource(contract, contracts.ContentFromString(string(sourceText)), sourcePath)
	if err != nil {
		cmdLogger.Error("Failed to correlate the artifact with its source", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	function, err := contractSource.FunctionAtPC(pc, methodID)
	if err != nil {
		if errors.Is(err, contracts.ErrFunctionNotFound) || errors.Is(err, sourcemaps.ErrPCNotFound) {
			cmdLogger.Error("No function found at the given program counter", err)
			return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeLookupFailed)
		}
		cmdLogger.Error("Failed to run the locate command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	fmt.Printf("%s\n", function.FullName)
	for _, lineno := range function.Content.Lines() {
		line, _ := function.Content.Line(lineno)
		fmt.Printf("%6d  %s\n", lineno, line)
	}
	return nil
}
