// -- cmd/root.go --
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xkilldash9x/focuskit/internal/config"
	"github.com/xkilldash9x/focuskit/internal/observability"
	"go.uber.org/zap"
)

var (
	cfgFile string
	cfg     config.Config
)

// NewRootCommand builds a fresh command tree. Each invocation gets its own
// instance so flag state cannot leak between runs.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "focusprobe",
		Short:   "Focusprobe inspects focus order and simulates focus trapping on HTML documents.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Runs before any subcommand: load config, bootstrap logging.
			loaded, err := config.Load(cfgFile)
			if err != nil {
				observability.InitializeLogger(config.Default().Logger)
				return err
			}
			cfg = loaded
			observability.InitializeLogger(cfg.Logger)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./focusprobe.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newScanCommand())
	rootCmd.AddCommand(newTabCommand())
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

// Execute runs the CLI with the given context.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger := observability.GetLogger(); logger != nil {
			logger.Error("Command execution failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return err
	}
	return nil
}
