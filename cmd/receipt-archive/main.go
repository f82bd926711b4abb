package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/ivang/receipt-archive/internal/archive"
	"github.com/ivang/receipt-archive/internal/extraction"
	"github.com/ivang/receipt-archive/internal/links"
	"github.com/ivang/receipt-archive/internal/receipt"
	"github.com/ivang/receipt-archive/internal/rules"
	"github.com/ivang/receipt-archive/internal/storage"
	"github.com/ivang/receipt-archive/internal/tags"
	"github.com/ivang/receipt-archive/internal/telegram"
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

	fs := ff.NewFlagSet("receipt-archive")
	var (
		token       = fs.StringLong("token", "", "Telegram bot token (or set RECEIPT_ARCHIVE_TOKEN env var)")
		users       = fs.StringLong("accepted-users", "", "Comma-separated Telegram user ids allowed to submit documents")
		rulesPath   = fs.StringLong("rules", "rules.json", "Tag and link rules file path")
		storagePath = fs.StringLong("storage", "./receipts", "File archive directory path")
		dbPath      = fs.StringLong("db", "receipt-archive.db", "Database file path")
		pgDSN       = fs.StringLong("pg-dsn", "", "PostgreSQL DSN; overrides the embedded database when set")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_ARCHIVE"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if *token == "" {
		slog.Error("Telegram token is required. Set --token flag or RECEIPT_ARCHIVE_TOKEN environment variable")
		os.Exit(1)
	}

	acceptedUsers, err := parseUserIDs(*users)
	if err != nil {
		slog.Error("Invalid --accepted-users value", "error", err)
		os.Exit(1)
	}
	if len(acceptedUsers) == 0 {
		slog.Error("At least one accepted user is required. Set --accepted-users flag or RECEIPT_ARCHIVE_ACCEPTED_USERS environment variable")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load rules and keep them hot-reloading for the process lifetime
	slog.Info("Loading rules...", "path", *rulesPath)
	watcher, err := rules.NewWatcher(*rulesPath)
	if err != nil {
		slog.Error("Failed to load rules", "error", err)
		os.Exit(1)
	}
	defer watcher.Close()
	go watcher.Run(ctx)

	// Initialize the database store
	var db storage.Store
	if *pgDSN != "" {
		slog.Info("Initializing postgres store...")
		pg, err := storage.NewPgStore(ctx, *pgDSN)
		if err != nil {
			slog.Error("Failed to initialize postgres store", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		db = pg
	} else {
		slog.Info("Initializing database...", "path", *dbPath)
		bolt, err := storage.NewBoltStore(*dbPath)
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
		defer bolt.Close()
		db = bolt
	}

	// Initialize the file archive
	slog.Info("Initializing file archive...", "path", *storagePath)
	files, err := storage.NewFileStore(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize file archive", "error", err)
		os.Exit(1)
	}
	store := storage.NewCompositeStore(db, files)

	// Assemble the pipeline
	parser := receipt.NewParser(
		extraction.PDFConverter{},
		extraction.NewRegistry(nil),
		tags.NewResolver(watcher.TagRules),
	)
	service := archive.NewService(parser, store, links.NewResolver(watcher.LinkGroups))

	bot, err := telegram.New(telegram.Config{
		Token:         *token,
		AcceptedUsers: acceptedUsers,
	}, service)
	if err != nil {
		slog.Error("Failed to initialize telegram bot", "error", err)
		os.Exit(1)
	}

	slog.Info("Bot started", "version", version, "accepted_users", len(acceptedUsers))
	bot.Run(ctx)

	slog.Info("Shutting down...")
}

func parseUserIDs(list string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing user id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
