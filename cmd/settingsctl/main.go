// Command settingsctl inspects or clears the local settings database of a
// shell installation.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/divyanshu-patil/appshell/internal/crypto"
	"github.com/divyanshu-patil/appshell/internal/settings"
)

func main() {
	var (
		dbPath  = flag.String("db", os.Getenv("SETTINGS_PATH"), "settings database path (or set SETTINGS_PATH env)")
		hexKey  = flag.String("key", os.Getenv("SETTINGS_ENCRYPTION_KEY"), "hex AES-256 key (or set SETTINGS_ENCRYPTION_KEY env)")
		reset   = flag.Bool("reset", false, "clear all persisted settings")
		verbose = flag.Bool("verbose", false, "verbose logging")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("settings database path required (--db or SETTINGS_PATH env)")
	}

	// Configure logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))

	var cipherSvc crypto.Service = crypto.NoopService{}
	if *hexKey != "" {
		svc, err := crypto.NewAesGcmCryptoService(*hexKey)
		if err != nil {
			log.Fatalf("Invalid encryption key: %v", err)
		}
		cipherSvc = svc
	}

	repo, err := settings.Open(*dbPath, cipherSvc)
	if err != nil {
		log.Fatalf("Failed to open settings database: %v", err)
	}
	defer func() { _ = repo.Close() }()

	ctx := context.Background()

	if *reset {
		if err := repo.Reset(ctx); err != nil {
			log.Fatalf("Reset failed: %v", err)
		}
		slog.Info("Settings cleared", "db", *dbPath)
		return
	}

	loaded, err := repo.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	fmt.Printf("theme preference: %s (dark level %s)\n", loaded.ThemePreference.CurrentTheme, loaded.ThemePreference.DarkLevel)
	if loaded.Server == "" {
		fmt.Println("server: <none>")
	} else {
		fmt.Printf("server: %s\n", loaded.Server)
	}
}
