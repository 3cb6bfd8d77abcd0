package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/teemow/gdrive-mcp/internal/server"
)

const categoryOther = "Other"

// toolCategories is ordered as the reference lists them.
var toolCategories = []struct {
	prefixes []string
	title    string
}{
	{[]string{"docs"}, "Google Docs Tools"},
	{[]string{"drive"}, "Google Drive Tools"},
	{[]string{"sheets"}, "Google Sheets Tools"},
	{[]string{"auth", "google"}, "Authentication Tools"},
}

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
		html       bool
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate a reference of every MCP tool from the registered tool
definitions, as markdown or, with --html, as a standalone HTML page.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(outputFile, html)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&html, "html", false, "Render the documentation as HTML")

	return cmd
}

func runGenerateDocs(outputFile string, html bool) error {
	sc, err := server.NewServerContext(context.Background())
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = sc.Shutdown() }()

	all, err := listTools(sc, false)
	if err != nil {
		return err
	}
	readOnly, err := listTools(sc, true)
	if err != nil {
		return err
	}

	writeTools := map[string]bool{}
	for _, tool := range all {
		writeTools[tool.Name] = !slices.ContainsFunc(readOnly, func(t mcp.Tool) bool { return t.Name == tool.Name })
	}

	output := generateToolsMarkdown(all, writeTools)
	if html {
		if output, err = renderHTML(output); err != nil {
			return err
		}
	}

	if outputFile == "" {
		fmt.Print(output)
		return nil
	}
	if err := os.WriteFile(outputFile, []byte(output), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	return nil
}

func listTools(sc *server.ServerContext, readOnly bool) ([]mcp.Tool, error) {
	mcpSrv := mcpserver.NewMCPServer("gdrive-mcp", version, mcpserver.WithToolCapabilities(true))
	if err := registerAllTools(mcpSrv, sc, readOnly); err != nil {
		return nil, err
	}

	var tools []mcp.Tool
	for _, st := range mcpSrv.ListTools() {
		tools = append(tools, st.Tool)
	}
	return tools, nil
}

// renderHTML wraps the rendered markdown in a minimal standalone page.
func renderHTML(markdown string) (string, error) {
	var body bytes.Buffer
	if err := goldmark.New(goldmark.WithExtensions(extension.GFM)).Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}
	return "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>gdrive-mcp tools</title>\n</head>\n<body>\n" +
		body.String() +
		"</body>\n</html>\n", nil
}

func getCategoryFromToolName(name string) string {
	prefix, _, _ := strings.Cut(name, "_")
	for _, c := range toolCategories {
		if slices.Contains(c.prefixes, prefix) {
			return c.title
		}
	}
	return categoryOther
}

// generateToolsMarkdown renders the reference. writeTools marks the tools
// that are only registered when write access is enabled; it may be nil.
func generateToolsMarkdown(tools []mcp.Tool, writeTools map[string]bool) string {
	grouped := map[string][]mcp.Tool{}
	for _, tool := range tools {
		category := getCategoryFromToolName(tool.Name)
		grouped[category] = append(grouped[category], tool)
	}

	var order []string
	for _, c := range toolCategories {
		if len(grouped[c.title]) > 0 {
			order = append(order, c.title)
		}
	}
	if len(grouped[categoryOther]) > 0 {
		order = append(order, categoryOther)
	}

	var b strings.Builder
	b.WriteString("# MCP Tools Reference\n\n")
	b.WriteString("Every tool gdrive-mcp registers, generated from the tool definitions.\n\n")

	b.WriteString("## Table of Contents\n\n")
	for _, title := range order {
		fmt.Fprintf(&b, "- [%s](#%s)\n", title, strings.ToLower(strings.ReplaceAll(title, " ", "-")))
	}

	b.WriteString("\n## Accounts and Offsets\n\n")
	b.WriteString("- Every Google tool takes an optional `account` argument (default `default`). Each call can use a different account.\n")
	b.WriteString("- Document offsets are the UTF-16 indices reported by the Docs API. Ranges are half-open: `startIndex` is inclusive, `endIndex` exclusive.\n")
	b.WriteString("- Write tools are only registered when the server runs with `--yolo`.\n\n")

	for _, title := range order {
		group := grouped[title]
		sort.Slice(group, func(i, j int) bool { return group[i].Name < group[j].Name })

		fmt.Fprintf(&b, "## %s\n\n", title)
		for _, tool := range group {
			writeToolMarkdown(&b, tool, writeTools[tool.Name])
		}
	}
	return b.String()
}

func writeToolMarkdown(b *strings.Builder, tool mcp.Tool, write bool) {
	fmt.Fprintf(b, "### %s\n\n", tool.Name)
	if write {
		b.WriteString("_Write tool._\n\n")
	}
	if tool.Description != "" {
		fmt.Fprintf(b, "%s\n\n", tool.Description)
	}

	props := tool.InputSchema.Properties
	if len(props) == 0 {
		return
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	b.WriteString("**Arguments:**\n")
	for _, name := range names {
		prop, ok := props[name].(map[string]interface{})
		if !ok {
			continue
		}
		required := "optional"
		if slices.Contains(tool.InputSchema.Required, name) {
			required = "required"
		}
		desc, ok := prop["description"].(string)
		if !ok {
			propType, _ := prop["type"].(string)
			if propType == "" {
				propType = "any"
			}
			desc = propType + " parameter"
		}
		fmt.Fprintf(b, "- `%s` (%s): %s\n", name, required, desc)
	}
	b.WriteString("\n")
}
