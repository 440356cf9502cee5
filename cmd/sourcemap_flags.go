package cmd

// addSourcemapFlags adds the various flags for the sourcemap command
func addSourcemapFlags() {
	// Prevent alphabetical sorting of usage message
	sourcemapCmd.Flags().SortFlags = false

	// Compact source map string
	sourcemapCmd.Flags().String("map", "", "compact source map string to decode")

	// Artifact to read the source map from instead
	sourcemapCmd.Flags().String("artifact", "", ArtifactFlagDescription)

	// Re-serialize instead of printing JSON
	sourcemapCmd.Flags().Bool("compact", false, "re-serialize the decoded elements to the compact form instead of printing JSON")
}
