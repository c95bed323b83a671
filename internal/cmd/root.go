// Package cmd wires the azchat CLI.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/spf13/cobra"

	"github.com/dotcommander/azchat/internal/agent"
	"github.com/dotcommander/azchat/internal/auth"
	"github.com/dotcommander/azchat/internal/bridge"
	"github.com/dotcommander/azchat/internal/config"
	"github.com/dotcommander/azchat/internal/mcp"
)

// credentialProvider is the slice of auth.Provider the commands use.
type credentialProvider interface {
	ToolToken(ctx context.Context) (string, error)
	ModelCredential() (azcore.TokenCredential, error)
}

type (
	credsFactory  func(cfg *config.Config) credentialProvider
	dialFunc      func(ctx context.Context, addr, bearerToken string, timeout time.Duration) (agent.ToolConn, error)
	clientFactory func(cfg bridge.Config) (agent.CompletionClient, error)
)

type runtime struct {
	build  BuildInfo
	cfg    config.Config
	cfgErr error

	// Seams for tests; production defaults are set in newRuntime.
	creds         credsFactory
	dial          dialFunc
	clientFactory clientFactory
}

func newRuntime(build BuildInfo, cfg config.Config, cfgErr error) *runtime {
	return &runtime{
		build:  normalizeBuildInfo(build),
		cfg:    cfg,
		cfgErr: cfgErr,
		creds: func(cfg *config.Config) credentialProvider {
			return auth.New(cfg.Scope, cfg.PrivateAuthority)
		},
		dial: func(ctx context.Context, addr, bearerToken string, timeout time.Duration) (agent.ToolConn, error) {
			return mcp.Connect(ctx, addr, bearerToken, timeout)
		},
		clientFactory: func(cfg bridge.Config) (agent.CompletionClient, error) {
			return bridge.New(cfg)
		},
	}
}

// NewRootCmd constructs the Cobra root command.
func NewRootCmd(build BuildInfo, cfg config.Config, cfgErr error) *cobra.Command {
	rt := newRuntime(build, cfg, cfgErr)

	rootCmd := &cobra.Command{
		Use:           "azchat",
		Short:         "Chat with an Azure OpenAI deployment that can call MCP tools.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rt.cfgErr != nil {
				return rt.cfgErr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return rt.runChat(ctx)
		},
	}

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.Version = rt.build.Version
	rootCmd.SetVersionTemplate(versionTemplate(rt.build))

	rootCmd.AddCommand(newToolsCmd(rt))
	rootCmd.AddCommand(newManCmd(rootCmd))

	rootCmd.InitDefaultCompletionCmd()

	return rootCmd
}
