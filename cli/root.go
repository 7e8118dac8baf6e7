// Package cli is the bazaar command line client for the LocalChef Bazaar marketplace.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jrsteele09/localchef-bazaar/gateway"
	"github.com/jrsteele09/localchef-bazaar/identity"
	"github.com/jrsteele09/localchef-bazaar/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

type rootOptions struct {
	cfg         config.Config
	settings    Settings
	profile     string
	logLevel    string
	showMetrics bool

	provider identity.Provider // Preset provider, used by tests
	app      *App
}

// Option adjusts the root command
type Option func(*rootOptions)

// WithProvider uses p instead of building a provider from the settings
func WithProvider(p identity.Provider) Option {
	return func(o *rootOptions) {
		o.provider = p
	}
}

// Execute runs the CLI and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer, opts ...Option) int {
	rootCmd := NewRootCmd(config.New(), opts...)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == outputJSON {
			errObj := map[string]any{"error": err.Error()}
			var apiErr *gateway.APIError
			if errors.As(err, &apiErr) {
				errObj["http_status"] = apiErr.HTTPStatus
				errObj["code"] = apiErr.Code
			}
			_ = printJSON(stdout, errObj)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func NewRootCmd(cfg config.Config, opts ...Option) *cobra.Command {
	o := &rootOptions{cfg: cfg}
	for _, opt := range opts {
		opt(o)
	}

	rootCmd := &cobra.Command{
		Use:           "bazaar",
		Short:         "LocalChef Bazaar command line client",
		Long:          "Browse meals, manage orders and run the chef and admin dashboards of LocalChef Bazaar.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.resolve(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if o.app == nil {
				return nil
			}
			defer o.app.Close()
			if o.showMetrics {
				return o.app.writeMetrics(cmd.ErrOrStderr())
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&o.settings.APIURL, "api", cfg.GetAPIURL(), "Marketplace API URL")
	flags.StringVar(&o.settings.PublicAPIURL, "public-api", "", "API URL for endpoints that need no session (defaults to --api)")
	flags.StringVar(&o.settings.Provider, "provider", providerOIDC, "Identity provider (oidc, fake)")
	flags.StringVar(&o.settings.IssuerURL, "issuer", cfg.GetIdentityIssuerURL(), "OpenID Connect issuer URL")
	flags.StringVar(&o.settings.ClientID, "client-id", cfg.GetIdentityClientID(), "OpenID Connect client ID")
	flags.StringVar(&o.settings.DataFolder, "data-dir", cfg.GetDataFolder(), "Folder for the profile config and saved session")
	flags.StringVarP(&o.settings.Output, "output", "o", outputTable, "Output format (table, json)")
	flags.StringVarP(&o.profile, "profile", "p", "", "Config profile to use")
	flags.StringVar(&o.logLevel, "log-level", cfg.GetLogLevel(), "Log level (debug, info, warn, error)")
	flags.BoolVar(&o.showMetrics, "metrics", false, "Print gateway metrics after the command")

	rootCmd.AddCommand(newVersionCmd(cfg))
	rootCmd.AddCommand(newLoginCmd(o))
	rootCmd.AddCommand(newLogoutCmd(o))
	rootCmd.AddCommand(newWhoamiCmd(o))
	rootCmd.AddCommand(newMenuCmd(o))
	rootCmd.AddCommand(newMealsCmd(o))
	rootCmd.AddCommand(newOrdersCmd(o))
	rootCmd.AddCommand(newReviewsCmd(o))
	rootCmd.AddCommand(newStatsCmd(o))
	return rootCmd
}

// resolve applies precedence flag > env > profile > default and sets the log level
func (o *rootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := LoadUserConfig(o.settings.DataFolder)
	if err != nil {
		// Config file is optional
		cfg = &UserConfig{CurrentProfile: "default", Profiles: map[string]Profile{}}
	}
	p := cfg.ActiveProfile(o.profile)

	pick(cmd, "api", "API_URL", p.API, &o.settings.APIURL)
	pick(cmd, "public-api", "PUBLIC_API_URL", p.PublicAPI, &o.settings.PublicAPIURL)
	pick(cmd, "provider", "IDENTITY_PROVIDER", p.Provider, &o.settings.Provider)
	pick(cmd, "issuer", "IDENTITY_ISSUER_URL", p.Issuer, &o.settings.IssuerURL)
	pick(cmd, "client-id", "IDENTITY_CLIENT_ID", p.ClientID, &o.settings.ClientID)
	pick(cmd, "output", "BAZAAR_OUTPUT", p.Output, &o.settings.Output)
	if o.settings.PublicAPIURL == "" {
		o.settings.PublicAPIURL = o.settings.APIURL
	}

	if err := validateOutputFormat(o.settings.Output); err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(o.logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", o.logLevel, err)
	}
	zerolog.SetGlobalLevel(level)
	return nil
}

func pick(cmd *cobra.Command, flag, envVar, profileValue string, target *string) {
	if cmd.Flags().Changed(flag) {
		return
	}
	if v := os.Getenv(envVar); v != "" {
		*target = v
	} else if profileValue != "" {
		*target = profileValue
	}
}

// appFor builds the app on first use within a command
func (o *rootOptions) appFor(cmd *cobra.Command) (*App, error) {
	if o.app != nil {
		return o.app, nil
	}
	app, err := newApp(o.cfg, o.settings, o.provider, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	o.app = app
	return app, nil
}
