// Package cli implements the symbols command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"symbol_backend/internal/app/config"
	"symbol_backend/internal/feature/exchanges/domain/entity"
	"symbol_backend/internal/feature/exchanges/usecase"
	"symbol_backend/internal/platform/logger"
)

// 終了コード
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// SymbolService is the part of the registry the command drives.
type SymbolService interface {
	FetchOne(ctx context.Context, name string) (entity.SymbolList, error)
	FetchAll(ctx context.Context) usecase.BatchResult
}

// Builder wires a SymbolService from the loaded configuration.
// The returned func releases its resources.
type Builder func(ctx context.Context, cfg config.Config, logger *slog.Logger) (SymbolService, func(), error)

type options struct {
	exchange   string
	all        bool
	list       bool
	configDir  string
	revalidate bool
}

// Run parses args, executes the command and returns the process exit code.
// Only an unknown exchange name or invalid flags yield ExitUsage; failed fetches are reported and exit 0.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, build Builder) int {
	var opts options
	fs := pflag.NewFlagSet("symbols", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.exchange, "exchange", "e", "", "Specific exchange to fetch symbols from")
	fs.BoolVarP(&opts.all, "all", "a", false, "Fetch symbols from all exchanges")
	fs.BoolVarP(&opts.list, "list", "l", false, "List the configured exchanges")
	fs.StringVarP(&opts.configDir, "config", "c", "configs", "Directory holding config.yaml and .env")
	fs.BoolVar(&opts.revalidate, "revalidate", false, "Validate cached tickers again")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: symbols [-e NAME | -a | -l] [-c DIR] [--revalidate]")
		fmt.Fprintln(stderr, "Fetch stock symbols from various exchanges.")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return ExitUsage
	}

	cfg, err := config.Load(opts.configDir, slog.New(slog.DiscardHandler))
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return ExitError
	}
	if opts.revalidate {
		cfg.Validator.RevalidateCached = true
	}

	log, closer := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Dir:        cfg.Log.Dir,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	}, stderr)
	defer func() { _ = closer.Close() }()

	switch {
	case opts.list:
		return listExchanges(cfg, stdout, stderr)
	case opts.all:
		return fetchAll(ctx, cfg, build, log, stdout, stderr)
	case opts.exchange != "":
		if !configured(cfg, opts.exchange) {
			log.Error("exchange not found", "exchange", opts.exchange, "available", names(cfg))
			fmt.Fprintf(stderr, "Exchange %s not found. Available exchanges: %v\n", opts.exchange, names(cfg))
			return ExitUsage
		}
		return fetchOne(ctx, cfg, build, log, opts.exchange, stdout, stderr)
	default:
		fs.Usage()
		return ExitOK
	}
}

func fetchOne(ctx context.Context, cfg config.Config, build Builder, log *slog.Logger, name string, stdout, stderr io.Writer) int {
	svc, release, err := build(ctx, cfg, log)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return ExitError
	}
	defer release()

	list, err := svc.FetchOne(ctx, name)
	printList(stdout, stderr, name, list, err)
	return ExitOK
}

func fetchAll(ctx context.Context, cfg config.Config, build Builder, log *slog.Logger, stdout, stderr io.Writer) int {
	svc, release, err := build(ctx, cfg, log)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return ExitError
	}
	defer release()

	res := svc.FetchAll(ctx)
	for _, name := range res.Names() {
		printList(stdout, stderr, name, res.Symbols[name], res.Failures[name])
	}
	return ExitOK
}

func printList(stdout, stderr io.Writer, name string, list entity.SymbolList, err error) {
	fmt.Fprintf(stdout, "\n%s symbols:\n", name)
	if list == nil {
		list = entity.SymbolList{}
	}
	fmt.Fprintln(stdout, []string(list))
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
	}
}

// listExchanges は設定済みの取引所を表形式で出力します。
func listExchanges(cfg config.Config, stdout, stderr io.Writer) int {
	profiles, err := cfg.BuildProfiles()
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return ExitError
	}
	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTABLE\tCOLUMN\tCACHE FILE\tRULE\tURL")
	for _, p := range profiles {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n", p.Name, p.TableIndex, p.TickerColumn, p.CacheFilename, p.Rule, p.SourceURL)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return ExitError
	}
	return ExitOK
}

func configured(cfg config.Config, name string) bool {
	for _, e := range cfg.Exchanges {
		if e.Name == name {
			return true
		}
	}
	return false
}

func names(cfg config.Config) []string {
	out := make([]string, 0, len(cfg.Exchanges))
	for _, e := range cfg.Exchanges {
		out = append(out, e.Name)
	}
	return out
}
