package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/songbook/songbook/internal/auth"
	"github.com/songbook/songbook/internal/model"
	"github.com/songbook/songbook/internal/repository"
	"github.com/songbook/songbook/internal/validation"
)

type output struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"nombre"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "", "User email (required)")
		name        = flag.String("name", "", "Display name")
		migrate     = flag.Bool("migrate", true, "Apply schema migrations first")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	// The password comes from the environment or stdin, never from argv.
	password := os.Getenv("BOOTSTRAP_PASSWORD")
	if password == "" {
		var err error
		password, err = readPassword()
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	}

	login, err := validation.ValidateLogin(validation.LoginRequest{Email: *email, Password: password})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	displayName := strings.TrimSpace(*name)
	if displayName == "" {
		displayName = strings.SplitN(login.Email, "@", 2)[0]
	}

	hash, err := auth.HashPassword(login.Password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL, 10*time.Second)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	if *migrate {
		if _, err := repo.Migrate(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
	}

	user := &model.User{
		Email:        login.Email,
		Name:         displayName,
		PasswordHash: hash,
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			fmt.Fprintf(os.Stderr, "user %s already exists\n", login.Email)
		} else {
			fmt.Fprintln(os.Stderr, "create user:", err)
		}
		os.Exit(1)
	}

	out := output{UserID: user.ID, Email: user.Email, Name: user.Name}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.UserID)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// readPassword reads one line from stdin.
func readPassword() (string, error) {
	fmt.Fprint(os.Stderr, "password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
