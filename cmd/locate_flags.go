package cmd

// addLocateFlags adds the various flags for the locate command
func addLocateFlags() {
	// Prevent alphabetical sorting of usage message
	locateCmd.Flags().SortFlags = false

	// Artifact and source file
	locateCmd.Flags().String("artifact", "", ArtifactFlagDescription)
	locateCmd.Flags().String("source", "", "path to the contract source file the artifact was compiled from")

	// Program counter to resolve
	locateCmd.Flags().Int("pc", 0, "program counter to resolve")

	// Optional method identifier of the dispatched call
	locateCmd.Flags().String("method-id", "", "hex method identifier of the dispatched call, used to prefer the ABI name")
}
