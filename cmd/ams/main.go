// ams is a terminal console for the asset-management API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/five82/ams/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	var opts app.Options
	flagSet := pflag.NewFlagSet("ams", pflag.ContinueOnError)
	flagSet.StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/ams/config.toml)")
	flagSet.StringVar(&opts.PrefsPath, "prefs", "", "preferences file (default ~/.config/ams/prefs.toml)")
	flagSet.StringVar(&opts.APIBaseURL, "api", "", "API base URL, overrides config and environment")
	flagSet.StringVar(&opts.LogLevel, "log-level", "info", "log level: debug, info, warn or error")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "ams: %v\n", err)
		return 2
	}
	if args := flagSet.Args(); len(args) > 0 {
		fmt.Fprintf(os.Stderr, "ams: unexpected argument %q\n", args[0])
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "ams: %v\n", err)
		return 1
	}
	return 0
}
