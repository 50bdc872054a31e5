package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/booklend/booklend/internal/auth"
	"github.com/booklend/booklend/internal/config"
	"github.com/booklend/booklend/internal/database"
	"github.com/booklend/booklend/internal/database/users"
)

// CreateAdminCommand bootstraps an administrator account. There is no
// self-registration for administrators, so this is the only way in.
type CreateAdminCommand struct {
	Name         string
	DatabasePath string
	BcryptCost   int
}

func NewCreateAdminCommand() *CreateAdminCommand {
	return &CreateAdminCommand{}
}

func (cmd *CreateAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)

	fs.StringVar(&cmd.Name, "name", "", "Administrator account name (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.IntVar(&cmd.BcryptCost, "cost", config.DefaultBcryptCost, "Bcrypt cost for the password hash")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-admin -name <name> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an administrator account. The password is prompted for\n")
		fmt.Fprintf(os.Stderr, "interactively and never echoed.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Name == "" {
		return fmt.Errorf("required flag -name not provided")
	}
	return nil
}

func (cmd *CreateAdminCommand) Run() error {
	password, err := readPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	hash, err := auth.HashPassword(password, cmd.BcryptCost)
	if err != nil {
		return err
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := users.NewRepository(db.DB)
	if _, err := repo.CreateAdministrator(cmd.Name, hash); err != nil {
		if errors.Is(err, users.ErrAdminExists) || errors.Is(err, users.ErrUserExists) {
			return fmt.Errorf("the name %q is already taken", cmd.Name)
		}
		return fmt.Errorf("failed to create administrator: %w", err)
	}

	fmt.Printf("Administrator %q created\n", cmd.Name)
	return nil
}

// readPassword reads a password from the terminal with echo disabled.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}
