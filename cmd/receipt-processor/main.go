package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/receipt-processor/internal/metrics"
	"github.com/zombor/receipt-processor/internal/receipt"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("receipt-processor")
	var (
		port            = fs.IntLong("port", 8080, "HTTP server port")
		storeType       = fs.StringLong("store", "memory", "Receipt store: 'memory', 'bolt' or 'pebble'")
		dbPath          = fs.StringLong("db", "receipts.db", "BoltDB file path (store=bolt)")
		pebbleDir       = fs.StringLong("pebble-dir", "receipts-pebble", "Pebble data directory (store=pebble)")
		strictPrices    = fs.BoolLong("strict-prices", "Reject receipts with an unparseable item price instead of scoring it as zero")
		logFormat       = fs.StringLong("log-format", "text", "Log format: 'text' or 'json'")
		logLevel        = fs.StringLong("log-level", "info", "Log level: debug, info, warn, error")
		shutdownTimeout = fs.DurationLong("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")
		_               = fs.StringLong("config", "", "Config file (optional)")
		_               = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_PROCESSOR"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(*logFormat, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	slog.Info("Initializing database...", "store", *storeType)
	db, err := openDB(*storeType, *dbPath, *pebbleDir)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	policy := receipt.PriceTolerant
	if *strictPrices {
		policy = receipt.PriceStrict
	}

	receiptService := receipt.NewService(db, policy)
	server := receipt.NewServer(receiptService, metrics.NewRegistry())

	addr := fmt.Sprintf(":%d", *port)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(addr)
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case err := <-errCh:
		if err != nil {
			slog.Error("Server error", "error", err)
			db.Close()
			os.Exit(1)
		}
	}

	slog.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), *shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Shutdown error", "error", err)
	}
}

func openDB(storeType, dbPath, pebbleDir string) (receipt.DB, error) {
	switch storeType {
	case "memory":
		return receipt.NewMemoryDB(), nil
	case "bolt":
		return receipt.NewBoltDB(dbPath)
	case "pebble":
		return receipt.NewPebbleDB(pebbleDir)
	default:
		return nil, fmt.Errorf("invalid store type %q, valid: memory, bolt or pebble", storeType)
	}
}

func newLogger(format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q, valid: text or json", format)
	}
}
