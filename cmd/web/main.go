package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"digitalgeosciences.com/geo-web/internal/config"
	"digitalgeosciences.com/geo-web/internal/content"
	handlersPkg "digitalgeosciences.com/geo-web/internal/handlers"
	"digitalgeosciences.com/geo-web/internal/i18n"
	"digitalgeosciences.com/geo-web/internal/join"
)

var (
	templatesDir = "templates"
	publicDir    = "public"
	localesDir   = "locales"
	// devMode reparses templates on each request and watches content for changes.
	devMode   bool
	tmplCache *templateSet

	i18nBundle    *i18n.Bundle
	contentLoader = content.NewLoader("")
	joinClient    = join.NewClient("")
	joinMode      = join.ModeDiscussion
	analytics     handlersPkg.Analytics
	siteURL       string
	logger        = zap.NewNop()
)

var (
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "web",
	Short: "Digital Geosciences website",
	Long: `Renders the Digital Geosciences site from its content documents.
Without a subcommand the HTTP server is started.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./geo-web.yaml)")
	pf.String("templates", templatesDir, "templates directory")
	pf.String("public", publicDir, "public assets directory")
	pf.String("content", "content", "content directory")
	pf.String("content-url", "", "remote content base URL (overrides --content)")
	pf.Bool("dev", false, "development mode")
	pf.String("addr", "", "HTTP listen address (default :$PORT or :8080)")
	pf.String("join-mode", "", "join section mode: form or discussion")

	rootCmd.AddCommand(serveCmd, exportCmd, checkCmd)
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"templates":   "templates",
	"public":      "public",
	"content":     "content.dir",
	"content-url": "content.base_url",
	"dev":         "dev",
	"addr":        "server.addr",
	"join-mode":   "join.mode",
}

func initializeConfig(cmd *cobra.Command) error {
	v := config.New()
	applyFlags(cmd, v)
	c, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

// applyFlags copies only the flags set on the command line so they take
// precedence over file and environment values.
func applyFlags(cmd *cobra.Command, v *viper.Viper) {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		v.Set(key, f.Value.String())
	}
}

// setup wires the package-level collaborators from the resolved configuration.
func setup(c config.Config, l *zap.Logger) error {
	templatesDir = c.Templates
	publicDir = c.Public
	devMode = c.Dev
	siteURL = c.SiteURL
	analytics = handlersPkg.AnalyticsFromConfig(c.Analytics)
	logger = l

	b, err := i18n.Load(localesDir, "en", []string{"en"})
	if err != nil {
		return err
	}
	i18nBundle = b

	contentLoader = content.NewLoader(c.Content.BaseURL)
	contentLoader.SetContentDir(c.Content.Dir)
	contentLoader.SetCacheTTL(c.Content.CacheTTL)
	contentLoader.SetLogger(l)

	joinClient = join.NewClient(c.Join.Endpoint)
	joinClient.SetTimeout(c.Join.Timeout)
	mode, degraded := c.JoinMode()
	if degraded {
		l.Warn("join form mode requires an endpoint; falling back to discussion")
	}
	joinMode = mode

	if !devMode {
		// Parse templates once in production
		tc, err := parseTemplates()
		if err != nil {
			return fmt.Errorf("parse templates: %w", err)
		}
		tmplCache = tc
	}
	return nil
}

func i18nOrDefault(key, def string) string {
	if i18nBundle == nil {
		return def
	}
	if v := i18nBundle.T(i18nBundle.Fallback(), key); v != key {
		return v
	}
	return def
}

// lang is the document language; the site is English only.
func lang() string {
	if i18nBundle == nil {
		return "en"
	}
	return i18nBundle.Fallback()
}
