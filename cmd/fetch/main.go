package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"

	"marketpulse/internal/app"
	"marketpulse/internal/config"
	"marketpulse/internal/logging"
)

func main() {
	_ = godotenv.Load()
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run fetches once and writes indented JSON to out.
func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	var (
		configPath string
		timeout    int
		quote      string
		verbose    bool
	)
	fs.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config file (optional)")
	fs.IntVar(&timeout, "timeout", 0, "overall timeout in seconds (default aggregate.build_timeout_sec)")
	fs.StringVar(&quote, "quote", "", "fetch a single raw quote record instead of a full snapshot")
	fs.BoolVar(&verbose, "v", false, "log fetch failures to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if timeout <= 0 {
		timeout = cfg.Aggregate.BuildTimeoutSec
	}

	level := "error"
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(level, true)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	upstream := app.Upstream(cfg.Yahoo)

	var v any
	if quote != "" {
		rec, err := upstream.Quote(ctx, quote)
		if err != nil {
			return err
		}
		v = rec
	} else {
		snap, err := app.Aggregator(cfg, upstream, logging.Observer{L: logger}).Build(ctx)
		if err != nil {
			return fmt.Errorf("aggregate: %w", err)
		}
		v = snap
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
