// Command addstaff creates a login for the staff desk (ADMIN) or a plain
// USER directly in the database, for bootstrapping the first staff member.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/iliyamo/prepaid-kiosk/internal/database"
	"github.com/iliyamo/prepaid-kiosk/internal/model"
	"github.com/iliyamo/prepaid-kiosk/internal/repository"
	"github.com/iliyamo/prepaid-kiosk/internal/utils"
)

type userCreator interface {
	Create(ctx context.Context, email, password, role string, cost int) (uint64, error)
}

// opener returns the user store and a func releasing it.
type opener func() (userCreator, func() error, error)

func main() {
	_ = godotenv.Load()
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, openMySQL); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer, open opener) error {
	fs := flag.NewFlagSet("addstaff", flag.ContinueOnError)
	fs.SetOutput(stderr)

	email := fs.String("email", "", "Login email")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	role := fs.String("role", model.RoleAdmin, "Role: ADMIN or USER")
	cost := fs.Int("cost", bcryptCost(), "bcrypt cost (default from BCRYPT_COST)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*email) == "" {
		fmt.Fprintln(stdout, "Usage: addstaff -email <email> [-password <password>] [-role ADMIN|USER]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: email")
	}
	r := strings.ToUpper(strings.TrimSpace(*role))
	if r != model.RoleAdmin && r != model.RoleUser {
		return fmt.Errorf("unknown role %q", *role)
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}
	if err := utils.CheckPassword(password); err != nil {
		return err
	}

	users, closeFn, err := open()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := users.Create(ctx, *email, password, r, *cost)
	if errors.Is(err, repository.ErrEmailExists) {
		return fmt.Errorf("user %s already exists", *email)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	fmt.Fprintf(stdout, "%s %s created with ID %d\n", r, strings.ToLower(strings.TrimSpace(*email)), id)
	return nil
}

func bcryptCost() int {
	if n, err := strconv.Atoi(os.Getenv("BCRYPT_COST")); err == nil && n > 0 {
		return n
	}
	return 12
}

func openMySQL() (userCreator, func() error, error) {
	db, err := database.Open(os.Getenv("DB_USER"), os.Getenv("DB_PASS"),
		os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_NAME"))
	if err != nil {
		return nil, nil, err
	}
	return repository.NewUserRepo(db), db.Close, nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
