package cmd

// addMetadataFlags adds the various flags for the metadata command
func addMetadataFlags() {
	// Prevent alphabetical sorting of usage message
	metadataCmd.Flags().SortFlags = false

	// Artifact
	metadataCmd.Flags().String("artifact", "", ArtifactFlagDescription)

	// Print the bytecode with the trailer removed
	metadataCmd.Flags().Bool("strip", false, "also print the bytecode with the metadata trailer removed")
}
