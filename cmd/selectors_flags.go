package cmd

// addSelectorsFlags adds the various flags for the selectors command
func addSelectorsFlags() {
	// Prevent alphabetical sorting of usage message
	selectorsCmd.Flags().SortFlags = false

	// Artifact
	selectorsCmd.Flags().String("artifact", "", ArtifactFlagDescription)

	// Include events, errors, and structs alongside methods
	selectorsCmd.Flags().Bool("all", false, "include events, errors, and structs alongside methods")

	// Cache controls
	selectorsCmd.Flags().String("cache-dir", DefaultCacheDirectory, "working directory for the persistent identifier cache")
	selectorsCmd.Flags().Bool("no-cache", false, "compute the table without reading or writing the persistent cache")
}
