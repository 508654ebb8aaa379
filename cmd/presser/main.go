package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/presser/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	prefsPath := flag.String("prefs", "", "override prefs path (optional)")
	pollSeconds := flag.Int("poll", 0, "directory refresh interval in seconds (optional, defaults to config)")
	resetEmail := flag.String("reset-password", "", "reset the password for this account email and exit")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{ConfigPath: *configPath, PrefsPath: *prefsPath}
	if poll := *pollSeconds; poll > 0 {
		opts.PollEvery = poll
	}

	if *resetEmail != "" {
		if err := app.ResetPassword(ctx, opts, *resetEmail, os.Stdin, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "presser: %v\n", err)
			return 1
		}
		return 0
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "presser: %v\n", err)
		return 1
	}
	return 0
}
