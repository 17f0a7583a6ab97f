package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/five82/comanda/internal/app"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("comanda", pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", "", "config file path (default ~/.config/comanda/config.toml)")
	prefsPath := flags.String("prefs", "", "preferences file path (default ~/.config/comanda/prefs.toml)")
	pollSeconds := flags.Int("poll", 0, "health check interval in seconds (default 15)")
	logout := flags.Bool("logout", false, "forget the stored session and exit")
	showVersion := flags.BoolP("version", "v", false, "print version and exit")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "comanda: %v\n", err)
		return 2
	}
	if *showVersion {
		fmt.Println("comanda", version)
		return 0
	}
	if flags.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "comanda: unexpected argument %q\n", flags.Arg(0))
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		Logout:     *logout,
		Version:    version,
	}
	if poll := *pollSeconds; poll > 0 {
		opts.PollEvery = poll
	}

	if err := app.Run(ctx, opts); err != nil {
		if errors.Is(err, app.ErrLoginCancelled) {
			return 130
		}
		fmt.Fprintf(os.Stderr, "comanda: %v\n", err)
		return 1
	}
	if *logout {
		fmt.Println("Sesión cerrada")
	}
	return 0
}
