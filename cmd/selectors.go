package cmd

import (
	"fmt"
	"sort"

	"github.com/crytic/ethdebug/cache"
	"github.com/crytic/ethdebug/cmd/exitcodes"
	"github.com/crytic/ethdebug/contracts"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// selectorsCmd represents the command provider for selector table computation
var selectorsCmd = &cobra.Command{
	Use:   "selectors",
	Short: "Computes the hashed identifier table for a contract's interface",
	Long:  `Computes the hashed identifier table for a contract's interface`,
	Args:  cmdValidateSelectorsArgs,
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return cmdUnusedFlags(cmd)
	},
	RunE:          cmdRunSelectors,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Add all the flags allowed for the selectors command
	addSelectorsFlags()

	// Add the selectors command and its associated flags to the root command
	rootCmd.AddCommand(selectorsCmd)
}

// cmdValidateSelectorsArgs makes sure that there are no positional arguments provided to the selectors command
func cmdValidateSelectorsArgs(cmd *cobra.Command, args []string) error {
	// Make sure we have no positional args
	if err := cobra.NoArgs(cmd, args); err != nil {
		err = fmt.Errorf("selectors does not accept any positional arguments, only flags and their associated values")
		cmdLogger.Error("Failed to validate args to the selectors command", err)
		return err
	}
	return nil
}

// cmdRunSelectors executes the CLI selectors command. The identifier table is served from the
// persistent cache when the artifact's content checksum is known, and computed and stored otherwise.
func cmdRunSelectors(cmd *cobra.Command, args []string) error {
	artifactPath, err := cmd.Flags().GetString("artifact")
	if err != nil {
		cmdLogger.Error("Failed to run the selectors command", err)
		return err
	}
	if artifactPath == "" {
		err = errors.New("--artifact must be provided")
		cmdLogger.Error("Failed to run the selectors command", err)
		return err
	}

	allEntries, err := cmd.Flags().GetBool("all")
	if err != nil {
		cmdLogger.Error("Failed to run the selectors command", err)
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		cmdLogger.Error("Failed to run the selectors command", err)
		return err
	}
	cacheDir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		cmdLogger.Error("Failed to run the selectors command", err)
		return err
	}

	contract, data, err := loadContractType(artifactPath)
	if err != nil {
		cmdLogger.Error("Failed to load the contract artifact", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	// The cache key combines the table kind with the content checksum of the artifact file.
	checksum := contracts.ComputeChecksum(data)
	kind := "methods"
	if allEntries {
		kind = "all"
	}
	cacheKey := fmt.Sprintf("%s:%s:%s", kind, checksum.Algorithm, checksum.Hash)

	var table map[string]string
	if !noCache {
		store, err := cache.Open(cacheDir)
		if err != nil {
			cmdLogger.Error("Failed to open the identifier cache", err)
			return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
		}
		defer func() {
			if err := store.Close(); err != nil {
				cmdLogger.Error("Failed to close the identifier cache", err)
			}
		}()

		table, err = store.IdentifierTable(cacheKey)
		if err == nil {
			cmdLogger.Debug("Served identifier table from cache for checksum: ", checksum.Hash)
		} else if errors.Is(err, cache.ErrCacheMiss) {
			table = identifierTable(contract, allEntries)
			if err = store.PutIdentifierTable(cacheKey, table); err != nil {
				cmdLogger.Error("Failed to store the identifier table", err)
				return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
			}
		} else {
			cmdLogger.Error("Failed to read the identifier cache", err)
			return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
		}
	} else {
		table = identifierTable(contract, allEntries)
	}

	// Print identifier/selector pairs in selector order.
	selectors := make([]string, 0, len(table))
	for selector := range table {
		selectors = append(selectors, selector)
	}
	sort.Strings(selectors)
	for _, selector := range selectors {
		fmt.Printf("%s\t%s\n", table[selector], selector)
	}
	return nil
}

// identifierTable computes the selector-to-identifier table for the contract, restricted to methods
// unless all interface entries were requested.
func identifierTable(contract *contracts.ContractType, allEntries bool) map[string]string {
	if allEntries {
		return contract.SelectorIdentifiers()
	}
	return contract.MethodIdentifiers()
}
