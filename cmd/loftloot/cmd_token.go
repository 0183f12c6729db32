package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/loftloot/loftloot/internal/auth"
	"github.com/loftloot/loftloot/internal/config"
)

func runToken(args []string) {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	configPath := fs.String("config", "", "path to configuration file")
	subject := fs.String("subject", "admin", "token subject")
	role := fs.String("role", auth.RoleAdmin, "token role")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	settings, err := config.Decode(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	authority, err := auth.New(settings.Server.AdminSecret, zap.NewNop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "set server.admin_secret (or LOFTLOOT_SERVER_ADMIN_SECRET): %v\n", err)
		os.Exit(1)
	}
	token, err := authority.Issue(*subject, *role, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
