package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/loftloot/loftloot/internal/backup"
	"github.com/loftloot/loftloot/internal/store"
)

func runBackup(args []string) {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)
	output := fs.String("output", "", "output file path (default: loftloot-backup-{timestamp}.tar.gz)")
	dbPath := fs.String("db", "loftloot.db", "SQLite feed store to back up")
	configFile := fs.String("config", "", "path to config file to include in backup")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if _, err := os.Stat(*dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "database file not found: %v\n", err)
		os.Exit(1)
	}
	if *output == "" {
		*output = fmt.Sprintf("loftloot-backup-%s.tar.gz", time.Now().Format("20060102-150405"))
	}

	st, err := store.New(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	m, err := backup.Backup(context.Background(), st, *configFile, *output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "backup failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Backup created: %s (%d products)\n", *output, m.Products)
}
