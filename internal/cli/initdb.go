package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/booklend/booklend/internal/config"
	"github.com/booklend/booklend/internal/database"
)

// InitDBCommand creates the database schema.
type InitDBCommand struct {
	DatabasePath string
	Drop         bool
}

func NewInitDBCommand() *InitDBCommand {
	return &InitDBCommand{}
}

func (cmd *InitDBCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("initdb", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.BoolVar(&cmd.Drop, "drop", false, "Drop existing tables before recreating the schema")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s initdb [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create the database schema. Safe to run repeatedly; existing data is\n")
		fmt.Fprintf(os.Stderr, "kept unless -drop is given.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *InitDBCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if cmd.Drop {
		fmt.Println("Dropping existing tables")
		if err := db.Reset(); err != nil {
			return fmt.Errorf("failed to reset database: %w", err)
		}
	}

	fmt.Printf("Database ready at %s\n", cmd.DatabasePath)
	return nil
}
