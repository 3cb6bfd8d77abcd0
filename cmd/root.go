package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// version is injected from main through SetVersion.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "gdrive-mcp",
	Short: "MCP server for Google Docs, Drive and Sheets",
	Long: `gdrive-mcp exposes Google Docs, Drive and Sheets to AI assistants through
the Model Context Protocol.

Document text is returned as segments carrying the exact index ranges the
Docs API uses, so assistants can locate and edit text without recounting
characters.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.SetVersionTemplate(`{{printf "gdrive-mcp version %s\n" .Version}}`)
	rootCmd.AddCommand(newServeCmd(), newVersionCmd(), newGenerateDocsCmd())
}

func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute runs the CLI and exits non-zero on failure. Cobra has already
// printed the error by then.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
