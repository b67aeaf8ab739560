package main

import (
	"github.com/spf13/cobra"

	"dqx0.com/go/web/browzer"
	"dqx0.com/go/web/internal/manifest"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the effective route table as TOML",
	Long: `Load the configured manifest, normalize every path the way the server
does and print the resulting table in match order. Nothing is bound.`,
	Args: cobra.NoArgs,
	RunE: runRoutes,
}

func init() {
	rootCmd.AddCommand(routesCmd)
}

func runRoutes(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	b := browzer.NewRouterBuilder(newLogger(cmd.ErrOrStderr(), cfg))
	if err := registerRoutes(cfg, manifest.RegistrarFunc(b.Add)); err != nil {
		return err
	}
	out, err := manifest.Encode(b.Routes())
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
