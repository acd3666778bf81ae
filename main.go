package main

import (
	"fmt"
	"os"

	"github.com/quoteshelf/quoteshelf/internal/auth"
	"github.com/quoteshelf/quoteshelf/internal/config"
	"github.com/quoteshelf/quoteshelf/internal/database"
	"github.com/quoteshelf/quoteshelf/internal/database/likes"
	"github.com/quoteshelf/quoteshelf/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "seed":
		if err := runSeed(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "reconcile-likes":
		if err := runReconcile(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "hash-token":
		if len(args) != 1 {
			fmt.Fprintf(os.Stderr, "Usage: %s hash-token <token>\n", os.Args[0])
			os.Exit(1)
		}
		hash, err := auth.HashAdminToken(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)

	case "-h", "--help", "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runSeed() error {
	cfg := config.NewConfig()
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	created, err := db.SeedSampleQuotes()
	if err != nil {
		return err
	}
	if created == 0 {
		fmt.Println("Database already contains quotes, nothing to seed")
		return nil
	}
	fmt.Printf("Seeded %d sample quotes\n", created)
	return nil
}

func runReconcile() error {
	cfg := config.NewConfig()
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	fixed, err := likes.NewRepository(db.DB).Reconcile()
	if err != nil {
		return err
	}
	fmt.Printf("Reconciled like counters, corrected %d quotes\n", fixed)
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve            Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  seed             Insert sample quotes into an empty database\n")
	fmt.Fprintf(os.Stderr, "  reconcile-likes  Rewrite cached like counters from the like ledger\n")
	fmt.Fprintf(os.Stderr, "  hash-token       Print the bcrypt hash for an admin token\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s help' to show this message.\n", os.Args[0])
}
