package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "0.1.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// options holds the parsed command line
type options struct {
	configFile  string
	category    string
	subcategory string
	authCookie  string
	logLevel    string
	metricsAddr string
	noColor     bool
	notify      bool
	saveAuth    bool
}

// flagMap returns only the flags the user actually set, so unset flags
// never override the config file or environment
func (o *options) flagMap(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := cmd.Flags().Changed

	if changed("category") {
		flags["category"] = o.category
	}
	if changed("subcategory") {
		flags["subcategory"] = o.subcategory
	}
	if changed("auth") {
		flags["auth"] = o.authCookie
	}
	if changed("log-level") {
		flags["log-level"] = o.logLevel
	}
	if changed("metrics-addr") {
		flags["metrics-addr"] = o.metricsAddr
	}
	if changed("no-color") {
		flags["no-color"] = o.noColor
	}
	if changed("notify") {
		flags["notifications"] = o.notify
	}
	return flags
}

func newRootCmd(a *app) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "freegrab",
		Short: "Acquire every free item in the marketplace catalog",
		Long: `freegrab walks the marketplace catalog filtered to free items and purchases
every one the signed-in account does not own yet.

Purchases that fail are retried until they go through. When the marketplace
reports a rate limit the run pauses for 65 seconds before retrying. Press
Ctrl+C to stop at any time.

The session cookie is taken from --auth, FREEGRAB_AUTH, the config file or a
previously saved account, in that order. Without any of these you are
prompted for it.`,
		Example: `  # Everything free
  freegrab --auth "$COOKIE"

  # Only one category, remembering the cookie for next time
  freegrab -c Accessories -s HeadAccessories -a "$COOKIE" --save-auth

  # Expose prometheus metrics while running
  freegrab --metrics-addr :9090`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), opts, opts.flagMap(cmd))
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.category, "category", "c", "", "catalog category to search")
	flags.StringVarP(&opts.subcategory, "subcategory", "s", "", "catalog subcategory to search")
	flags.StringVarP(&opts.authCookie, "auth", "a", "", "session cookie used to purchase items")
	flags.StringVar(&opts.configFile, "config", "", "config file (default is ./.freegrab.yaml or ~/.config/freegrab/config.yaml)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output and hyperlinks")
	flags.BoolVar(&opts.notify, "notify", false, "send desktop notifications")
	flags.BoolVar(&opts.saveAuth, "save-auth", false, "store the session cookie for future runs")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	cmd.SetVersionTemplate(`freegrab {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	return cmd
}
