package cmd

import (
	"fmt"

	"github.com/crytic/ethdebug/cmd/exitcodes"
	"github.com/crytic/ethdebug/contracts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// metadataCmd represents the command provider for metadata trailer inspection
var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Extracts the compiler metadata trailer from a contract's bytecode",
	Long:  `Extracts the compiler metadata trailer from a contract's bytecode`,
	Args:  cmdValidateMetadataArgs,
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return cmdUnusedFlags(cmd)
	},
	RunE:          cmdRunMetadata,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Add all the flags allowed for the metadata command
	addMetadataFlags()

	// Add the metadata command and its associated flags to the root command
	rootCmd.AddCommand(metadataCmd)
}

// cmdValidateMetadataArgs makes sure that there are no positional arguments provided to the metadata command
func cmdValidateMetadataArgs(cmd *cobra.Command, args []string) error {
	// Make sure we have no positional args
	if err := cobra.NoArgs(cmd, args); err != nil {
		err = fmt.Errorf("metadata does not accept any positional arguments, only flags and their associated values")
		cmdLogger.Error("Failed to validate args to the metadata command", err)
		return err
	}
	return nil
}

// cmdRunMetadata executes the CLI metadata command, decoding the CBOR trailer of the artifact's
// runtime bytecode (or its deployment bytecode when no runtime payload is present) and printing the
// embedded source hash and compiler version.
func cmdRunMetadata(cmd *cobra.Command, args []string) error {
	artifactPath, err := cmd.Flags().GetString("artifact")
	if err != nil {
		cmdLogger.Error("Failed to run the metadata command", err)
		return err
	}
	if artifactPath == "" {
		err = errors.New("--artifact must be provided")
		cmdLogger.Error("Failed to run the metadata command", err)
		return err
	}

	contract, _, err := loadContractType(artifactPath)
	if err != nil {
		cmdLogger.Error("Failed to load the contract artifact", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	bytecode, err := contract.RuntimeBytes()
	if err != nil {
		cmdLogger.Error("Failed to decode the runtime bytecode", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	if bytecode == nil {
		if bytecode, err = contract.DeploymentBytes(); err != nil {
			cmdLogger.Error("Failed to decode the deployment bytecode", err)
			return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
		}
	}
	if bytecode == nil {
		err = errors.New("artifact carries no bytecode")
		cmdLogger.Error("Failed to run the metadata command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	metadata := contracts.ExtractMetadata(bytecode)
	if metadata == nil {
		err = errors.New("no metadata trailer found in the bytecode")
		cmdLogger.Error("Failed to run the metadata command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeLookupFailed)
	}

	if hash := metadata.BytecodeHash(); hash != nil {
		fmt.Printf("bytecode hash:    %s\n", hexutil.Encode(hash))
	}
	if version, err := metadata.CompilerVersion(); err == nil {
		fmt.Printf("compiler version: %s\n", version)
	}

	strip, err := cmd.Flags().GetBool("strip")
	if err != nil {
		cmdLogger.Error("Failed to run the metadata command", err)
		return err
	}
	if strip {
		fmt.Printf("stripped:         %s\n", hexutil.Encode(contracts.StripMetadata(bytecode)))
	}
	return nil
}
