package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"filippo.io/age"

	"github.com/dmitrymomot/otpgate/pkg/logger"
	"github.com/dmitrymomot/otpgate/pkg/secretstore"
)

var (
	errNoRecipient = errors.New("SECRET_STORE_BACKUP_RECIPIENT is not set")
	errNoIdentity  = errors.New("SECRET_STORE_BACKUP_IDENTITY is not set")
)

func backup(ctx context.Context, cfg appConfig, args []string) error {
	fs := flag.NewFlagSet("backup", flag.ContinueOnError)
	out := fs.String("out", "", "output file, stdout when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if cfg.Store.BackupRecipient == "" {
		return errNoRecipient
	}
	recipient, err := secretstore.ParseRecipient(cfg.Store.BackupRecipient)
	if err != nil {
		return err
	}

	log := newLogger(cfg)
	b, err := openBackend(ctx, cfg, log, nil)
	if err != nil {
		return err
	}
	defer b.close()
	defer b.store.Close()

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.OpenFile(*out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	n, err := secretstore.Backup(ctx, b.store, w, recipient)
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "backup written", logger.Count(n), slog.String("out", *out))
	return nil
}

func restore(ctx context.Context, cfg appConfig, args []string) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	in := fs.String("in", "", "backup file, stdin when empty")
	overwrite := fs.Bool("overwrite", false, "replace secrets of users that already have one")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if cfg.Store.BackupIdentity == "" {
		return errNoIdentity
	}
	identity, err := secretstore.ParseIdentity(cfg.Store.BackupIdentity)
	if err != nil {
		return err
	}

	log := newLogger(cfg)
	b, err := openBackend(ctx, cfg, log, nil)
	if err != nil {
		return err
	}
	defer b.close()
	defer b.store.Close()

	var r io.Reader = os.Stdin
	if *in != "" {
		f, err := os.Open(*in)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	n, err := secretstore.Restore(ctx, b.store, r, *overwrite, identity)
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "backup restored", logger.Count(n))
	return nil
}

func keygen(w io.Writer) error {
	id, err := age.GenerateX25519Identity()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w,
		"SECRET_STORE_BACKUP_RECIPIENT=%s\nSECRET_STORE_BACKUP_IDENTITY=%s\n",
		id.Recipient().String(), id.String())
	return err
}
