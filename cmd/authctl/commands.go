package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dtroode/auth-service/internal/config"
	"github.com/dtroode/auth-service/internal/credential"
	"github.com/dtroode/auth-service/internal/keys"
	"github.com/dtroode/auth-service/internal/logger"
	"github.com/dtroode/auth-service/internal/model"
	"github.com/dtroode/auth-service/internal/repository"
	"github.com/dtroode/auth-service/internal/service"
)

const minPasswordLength = 6

var errUsage = errors.New("invalid usage")

func genKey(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("genkey", flag.ContinueOnError)
	fs.SetOutput(stderr)
	bits := fs.Int("bits", keys.DefaultKeyBits, "RSA key size")
	out := fs.String("out", "", "write the key to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	data, err := keys.GeneratePEM(*bits)
	if err != nil {
		return err
	}
	key, err := keys.ParsePrivateKey(data)
	if err != nil {
		return err
	}
	provider, err := keys.NewProvider(ctx, key, "")
	if err != nil {
		return err
	}

	if *out == "" {
		if _, err := stdout.Write(data); err != nil {
			return err
		}
	} else if err := os.WriteFile(*out, data, 0o600); err != nil {
		return fmt.Errorf("failed to write key: %w", err)
	}

	fmt.Fprintf(stderr, "generated %d-bit key, kid %s\n", *bits, provider.KeyID())
	return nil
}

func createAdmin(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(stderr)
	email := fs.String("email", "", "admin email (required)")
	firstName := fs.String("first-name", "", "first name")
	lastName := fs.String("last-name", "", "last name")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if strings.TrimSpace(*email) == "" {
		fs.Usage()
		return errUsage
	}

	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}

	password, err := readPassword(stdin, stderr)
	if err != nil {
		return err
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	stores, err := repository.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer stores.Close()

	log := logger.NewWithWriter(stderr, cfg.LogLevel, "text")
	users := service.NewUser(stores.Users, credential.NewBcrypt(credential.DefaultCost), log)

	user, err := users.Create(ctx, service.CreateUserParams{
		FirstName: strings.TrimSpace(*firstName),
		LastName:  strings.TrimSpace(*lastName),
		Email:     strings.TrimSpace(*email),
		Password:  password,
		Role:      model.RoleAdmin,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "admin %s created with id %d\n", user.Email, user.ID)
	return nil
}

// readPassword prompts without echo on a terminal, otherwise reads one line.
func readPassword(stdin io.Reader, stderr io.Writer) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(stderr, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
