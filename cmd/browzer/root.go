package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"dqx0.com/go/web/browzer"
	"dqx0.com/go/web/internal/config"
	"dqx0.com/go/web/internal/manifest"
	"dqx0.com/go/web/internal/obs"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

var (
	cfgFile string
	v       = config.New()
)

var rootCmd = &cobra.Command{
	Use:   "browzer",
	Short: "Tiny HTTP/1.1 server driven by a route manifest",
	Long: `browzer accepts TCP connections, parses HTTP/1.1 request headers and
answers from a table of routes declared in a TOML or YAML manifest.
Connections are handled by a fixed pool of workers.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("browzer version {{.Version}}\n")
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (toml, yaml or json)")
	pf.String("routes", "", "route manifest (.toml, .yaml or .yml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error or off")
	pf.String("log-format", "text", "log format: text or json")
	mustBind("routes", pf.Lookup("routes"))
	mustBind("log.level", pf.Lookup("log-level"))
	mustBind("log.format", pf.Lookup("log-format"))
}

func mustBind(key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// loadConfig resolves flags, environment and the optional config file.
func loadConfig() (*config.Config, error) {
	return config.Load(v, cfgFile)
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	return obs.NewLogger(w, obs.LevelFromString(cfg.Log.Level), obs.Format(cfg.Log.Format))
}

// registerRoutes adds the manifest's routes, or the built-in greeting when
// no manifest is configured.
func registerRoutes(cfg *config.Config, reg manifest.Registrar) error {
	if cfg.Routes == "" {
		return reg.Handle(browzer.MethodGet, "/hello", browzer.HandlerFunc(hello))
	}
	m, err := manifest.Load(cfg.Routes)
	if err != nil {
		return err
	}
	if err := m.Register(reg); err != nil {
		return fmt.Errorf("register %s: %w", cfg.Routes, err)
	}
	return nil
}

func hello(c *browzer.Context) *browzer.Response {
	c.SetHeader("Content-Type", "text/plain; charset=utf-8")
	return c.SendString(browzer.StatusOK, "Hello, World!")
}
