package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// mcpConfig represents the structure of a .mcp.json file.
type mcpConfig struct {
	MCPServers map[string]json.RawMessage `json:"mcpServers"`
}

// belindaMCPEntry is the MCP server configuration for the belinda binary.
// The server reads graph and defaults from belinda.yml in the project.
var belindaMCPEntry = json.RawMessage(`{
  "type": "stdio",
  "command": "belinda",
  "args": ["serve-mcp"]
}`)

// starterConfig is written to belinda.yml by init.
//
//go:embed starter.yml
var starterConfig []byte

// runInit writes a starter belinda.yml and registers the MCP server in
// .mcp.json under projectRoot. Existing files and entries are kept.
func runInit(w io.Writer, projectRoot string) error {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return err
	}

	cfgPath := filepath.Join(abs, "belinda.yml")
	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Fprintf(w, "  skipped %s (exists)\n", dotRelative(abs, cfgPath))
	} else {
		if err := os.WriteFile(cfgPath, starterConfig, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", cfgPath, err)
		}
		fmt.Fprintf(w, "  created %s\n", dotRelative(abs, cfgPath))
	}

	return mergeMCPConfig(w, filepath.Join(abs, ".mcp.json"))
}

// mergeMCPConfig creates or merges the belinda entry into .mcp.json.
func mergeMCPConfig(w io.Writer, mcpPath string) error {
	var cfg mcpConfig

	data, err := os.ReadFile(mcpPath)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", mcpPath, err)
		}
	}

	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]json.RawMessage)
	}

	if _, exists := cfg.MCPServers["belinda"]; exists {
		fmt.Fprintf(w, "  skipped .mcp.json belinda entry (exists)\n")
		return nil
	}

	cfg.MCPServers["belinda"] = belindaMCPEntry

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling .mcp.json: %w", err)
	}

	if err := os.WriteFile(mcpPath, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", mcpPath, err)
	}

	action := "created"
	if data != nil {
		action = "updated"
	}
	fmt.Fprintf(w, "  %s .mcp.json with belinda MCP server\n", action)
	return nil
}

// dotRelative returns a display path relative to the project root, prefixed
// with "./".
func dotRelative(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return "./" + rel
}
