package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// mcpClient is an MCP client setup knows how to configure.
type mcpClient struct {
	name      string
	title     string
	configDir string
	fileName  string // used with --file-path
}

var mcpClients = []mcpClient{
	{name: "qwen", title: "Qwen", configDir: ".qwen", fileName: "mcp.json"},
	{name: "claude", title: "Claude", configDir: ".claude", fileName: "settings.json"},
	{name: "cursor", title: "Cursor", configDir: ".cursor", fileName: "mcp.json"},
}

// SetupCmd configures MCP for various AI clients.
type SetupCmd struct {
	Qwen     bool   `help:"Configure for Qwen CLI"`
	Claude   bool   `help:"Configure for Claude Code"`
	Cursor   bool   `help:"Configure for Cursor"`
	Local    bool   `help:"Create project-local configuration"`
	Global   bool   `help:"Create global configuration"`
	Watch    bool   `help:"Start the server with --watch" default:"true" negatable:""`
	Format   string `help:"Output format (json|text)" enum:"json,text" default:"json"`
	FilePath string `help:"Custom directory for the configuration file"`
}

// Run executes the setup command.
func (c *SetupCmd) Run(g *Globals, s *Streams) error {
	if c.Format != "json" && c.Format != "text" {
		return fmt.Errorf("invalid format: %s (must be json or text)", c.Format)
	}

	config := generateConfig(g, c.Watch)

	selected := c.selected()
	if len(selected) == 0 {
		return printConfig(s.Out, config, c.Format)
	}

	// If neither local nor global is specified, default to local
	if !c.Local && !c.Global {
		c.Local = true
	}

	for _, client := range selected {
		if c.Global {
			path := getGlobalConfigPath(client)
			if err := writeConfig(path, config, c.Format); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(s.Out, "✓ Created global %s MCP config at %s\n", client.title, path)
		}
		if c.Local {
			path := getLocalConfigPath(".", client)
			if c.FilePath != "" {
				path = filepath.Join(c.FilePath, client.fileName)
			}
			if err := writeConfig(path, config, c.Format); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(s.Out, "✓ Created local %s MCP config at %s\n", client.title, path)
		}
	}
	return nil
}

func (c *SetupCmd) selected() []mcpClient {
	var out []mcpClient
	for _, client := range mcpClients {
		switch {
		case client.name == "qwen" && c.Qwen,
			client.name == "claude" && c.Claude,
			client.name == "cursor" && c.Cursor:
			out = append(out, client)
		}
	}
	return out
}

// generateConfig builds the mcpServers entry. Global flags that were set are
// passed through so the client starts the server against the same store.
func generateConfig(g *Globals, watch bool) map[string]any {
	var args []string
	if g.EnvFile != "" {
		args = append(args, "--env-file", g.EnvFile)
	}
	if g.Backend != "" {
		args = append(args, "--backend", g.Backend)
	}
	if g.Data != "" {
		args = append(args, "--data", g.Data)
	}
	args = append(args, "serve")
	if watch {
		args = append(args, "--watch")
	}

	return map[string]any{
		"mcpServers": map[string]any{
			"graphleague": map[string]any{
				"command": "graphleague",
				"args":    args,
			},
		},
	}
}

// Path helpers

func getLocalConfigPath(basePath string, client mcpClient) string {
	return filepath.Join(basePath, client.configDir, "mcp.json")
}

func getGlobalConfigPath(client mcpClient) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv("HOME")
	}
	return filepath.Join(homeDir, client.configDir, "global", "mcp.json")
}

// Config writers

func printConfig(w io.Writer, config map[string]any, format string) error {
	if format == "json" {
		return printJSON(w, config)
	}
	fmt.Fprintln(w, "# Add this to your MCP client configuration:")
	fmt.Fprintln(w)
	for key, value := range config {
		fmt.Fprintf(w, "%s: %s\n", key, toJSON(value))
	}
	return nil
}

func writeConfig(configPath string, config map[string]any, format string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	var content []byte
	if format == "json" {
		var err error
		content, err = json.MarshalIndent(config, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		content = append(content, '\n')
	} else {
		var sb strings.Builder
		sb.WriteString("# MCP Configuration for GraphLeague\n")
		sb.WriteString("# Generated by graphleague setup\n\n")
		for key, value := range config {
			fmt.Fprintf(&sb, "%s: %s\n", key, toJSON(value))
		}
		content = []byte(sb.String())
	}

	if err := os.WriteFile(configPath, content, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func toJSON(v any) string {
	bytes, _ := json.Marshal(v)
	return string(bytes)
}
