package cmd

import (
	"os"

	"github.com/crytic/ethdebug/contracts"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// loadContractType reads and parses the contract artifact at the given path. The raw file contents
// are returned alongside the parsed contract so callers can checksum them.
func loadContractType(path string) (*contracts.ContractType, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to read artifact at: %v", path)
	}
	contract, err := contracts.ParseContractType(data)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to parse artifact at: %v", path)
	}
	return contract, data, nil
}

// cmdUnusedFlags will return which flags are valid for dynamic completion of the given command
func cmdUnusedFlags(cmd *cobra.Command) ([]string, cobra.ShellCompDirective) {
	// Gather a list of flags that are available to be used in the current command but have not been used yet
	var unusedFlags []string

	// Examine all the flags, and add any flags that have not been set in the current command line
	// to a list of unused flags
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			// When adding a flag to a command, include the "--" prefix to indicate that it is a flag
			// and not a positional argument. Additionally, when the user presses the TAB key twice after typing
			// a flag name, the "--" prefix will appear again, indicating that more flags are available and that
			// none of the arguments are positional.
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})
	// Provide a list of flags that can be used in the current command (but have not been used yet)
	// for autocompletion suggestions
	return unusedFlags, cobra.ShellCompDirectiveNoFileComp
}
