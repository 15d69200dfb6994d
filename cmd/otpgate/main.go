// Command otpgate runs the TOTP authenticator HTTP service and its
// maintenance commands.
//
// Usage:
//
//	otpgate [serve]                      start the HTTP API
//	otpgate backup  -out FILE            export secrets, age-encrypted
//	otpgate restore -in FILE [-overwrite] import an export
//	otpgate keygen                       print a new age key pair for backups
//
// Configuration is read from the environment and an optional .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrymomot/otpgate/pkg/config"
)

var errUsage = errors.New("usage: otpgate [serve|backup|restore|keygen]")

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "otpgate:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if err := config.LoadEnv(); err != nil {
		return err
	}
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	cmd := "serve"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		return serve(ctx, cfg)
	case "backup":
		return backup(ctx, cfg, args)
	case "restore":
		return restore(ctx, cfg, args)
	case "keygen":
		return keygen(os.Stdout)
	default:
		return errUsage
	}
}
