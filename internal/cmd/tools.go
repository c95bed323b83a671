package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	mmcp "github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/dotcommander/azchat/internal/errs"
	"github.com/dotcommander/azchat/internal/present"
)

func newToolsCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List tools exposed by the MCP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rt.cfgErr != nil {
				return rt.cfgErr
			}
			cfg := &rt.cfg
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.MCPTimeout.Std())
			defer cancel()

			token, err := rt.creds(cfg).ToolToken(ctx)
			if err != nil {
				return errs.Wrap(err, "Could not acquire a token for the MCP server.")
			}

			conn, err := rt.dial(ctx, cfg.MCPServerURL, token, cfg.MCPTimeout.Std())
			if err != nil {
				return errs.Wrap(err, "Could not connect to the MCP server.")
			}
			defer func() { closeGuarded("MCP connection", conn.Close()) }()

			tools, err := conn.Tools(ctx)
			if err != nil {
				return errs.Wrap(err, "Could not list tools.")
			}

			printTools(tools)
			return nil
		},
	}
}

func printTools(tools []mmcp.Tool) {
	slices.SortFunc(tools, func(a, b mmcp.Tool) int { return strings.Compare(a.Name, b.Name) })
	styles := present.StdoutStyles()
	for _, tool := range tools {
		fmt.Fprint(os.Stdout, tool.Name)
		if tool.Description != "" {
			fmt.Fprint(os.Stdout, styles.Comment.Render(" "+firstLine(tool.Description)))
		}
		fmt.Fprintln(os.Stdout)
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
