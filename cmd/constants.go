package cmd

// ArtifactFlagDescription describes the --artifact flag shared by commands that read a contract
// artifact JSON file.
const ArtifactFlagDescription = "path to a contract artifact JSON file"

// DefaultCacheDirectory describes the working directory under which the identifier cache database is
// created if no other directory is provided.
const DefaultCacheDirectory = "."
