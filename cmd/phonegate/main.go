package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"phonegate/internal/app"
	"phonegate/internal/config"
	"phonegate/internal/utils"
)

const usage = `Usage: phonegate [serve|migrate|token] [flags]

  serve     run the HTTP server (default)
  migrate   create the verification and users tables
  token     print a signed access token for --user
`

func main() {
	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	fs := pflag.NewFlagSet(cmd, pflag.ExitOnError)
	configPath := fs.StringP("config", "c", config.DefaultPath, "path to the YAML config file")
	logLevel := fs.String("log-level", "", "overrides app.log_level")
	userID := fs.Int("user", 0, "user id for the token command")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.App.LogLevel = *logLevel
	}

	logger, err := app.NewLogger(cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	switch cmd {
	case "serve":
		err = app.Run(cfg, logger)
	case "migrate":
		err = migrate(cfg)
	case "token":
		err = printToken(cfg, *userID, *ttl)
	default:
		fs.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("phonegate failed", zap.String("command", cmd), zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func migrate(cfg *config.Config) error {
	if cfg.Database.Driver == "memory" {
		zap.L().Info("Memory driver has no schema, nothing to migrate")
		return nil
	}
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Migrate(ctx, db); err != nil {
		return err
	}
	zap.L().Info("Migrations applied")
	return nil
}

func printToken(cfg *config.Config, userID int, ttl time.Duration) error {
	if userID <= 0 {
		return fmt.Errorf("--user must be a positive id")
	}
	tok, err := utils.SignAccessToken([]byte(cfg.JWT.Secret), userID, ttl)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}
