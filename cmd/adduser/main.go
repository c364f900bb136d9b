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

	"household-ledger/internal/storage"

	"golang.org/x/term"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	id := fs.Int64("id", 0, "Chat platform user id")
	username := fs.String("user", "", "Chat username (optional)")
	nameFlag := fs.String("name", "", "Display name (optional, will prompt if omitted)")
	dbPath := fs.String("db", "household.db", "Path to database file")
	force := fs.Bool("force", false, "Update the names of an already registered participant")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *id <= 0 {
		fmt.Fprintln(stdout, "Usage: adduser -id <user id> [-user <username>] [-name <display name>] [-db <db_path>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: id")
	}

	name := *nameFlag
	if name == "" {
		fmt.Fprint(stdout, "Display name: ")
		var err error
		name, err = readLine(stdin, stdout)
		if err != nil {
			return fmt.Errorf("failed to read display name: %w", err)
		}
		fmt.Fprintln(stdout)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("display name cannot be empty")
	}

	// Allow overriding db path via env var if not explicitly set via flag (flag default is used)
	if path := os.Getenv("DB_PATH"); path != "" && *dbPath == "household.db" {
		*dbPath = path
	}

	db, err := storage.Open(storage.DriverSQLite, *dbPath, storage.Options{})
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	existing, err := db.GetUser(ctx, *id)
	switch {
	case err == nil && !*force:
		return fmt.Errorf("user %d (%s) already exists", existing.ID, existing.DisplayName())
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		return err
	}

	user, err := db.UpsertUser(ctx, *id, *username, name)
	if err != nil {
		return err
	}

	verb := "registered"
	if existing != nil {
		verb = "updated"
	}
	fmt.Fprintf(stdout, "Participant %s %s with ID %d\n", user.DisplayName(), verb, user.ID)
	return nil
}

func readLine(stdin io.Reader, stdout io.Writer) (string, error) {
	// Check if stdin is a terminal
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		state, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			return "", err
		}
		defer term.Restore(int(f.Fd()), state)
		return term.NewTerminal(struct {
			io.Reader
			io.Writer
		}{f, stdout}, "").ReadLine()
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
