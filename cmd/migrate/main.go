package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	appmigrations "github.com/wolfman30/contractor-leads/migrations"
)

// migrator is the part of *migrate.Migrate the commands drive.
type migrator interface {
	Up() error
	Steps(n int) error
	Force(version int) error
	Version() (uint, bool, error)
	Close() (error, error)
}

type openFunc func(databaseURL string) (migrator, error)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(openPostgres).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(open openFunc) *cobra.Command {
	var databaseURL string
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply the lead queue and content schema migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres URL (defaults to DATABASE_URL)")

	// withMigrator opens the database, runs fn and closes both drivers.
	withMigrator := func(fn func(m migrator, out io.Writer) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			url := strings.TrimSpace(databaseURL)
			if url == "" {
				url = strings.TrimSpace(os.Getenv("DATABASE_URL"))
			}
			if url == "" {
				return errors.New("DATABASE_URL is required")
			}
			m, err := open(url)
			if err != nil {
				return err
			}
			defer func() { _, _ = m.Close() }()
			return fn(m, cmd.OutOrStdout())
		}
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(m migrator, out io.Writer) error {
			if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("migrate up: %w", err)
			}
			return printVersion(m, out, "migrations complete")
		}),
	}

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(m migrator, out io.Writer) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("migrate down: %w", err)
			}
			return printVersion(m, out, fmt.Sprintf("rolled back %d migration(s)", steps))
		}),
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")

	forceCmd := &cobra.Command{
		Use:   "force <version>",
		Short: "Mark the schema as clean at version after a failed migration",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(_ *cobra.Command, args []string) error {
			_, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			version, _ := strconv.Atoi(args[0])
			return withMigrator(func(m migrator, out io.Writer) error {
				if err := m.Force(version); err != nil {
					return fmt.Errorf("force version: %w", err)
				}
				fmt.Fprintf(out, "forced version to %d\n", version)
				return nil
			})(cmd, args)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(m migrator, out io.Writer) error {
			return printVersion(m, out, "")
		}),
	}

	root.AddCommand(upCmd, downCmd, forceCmd, versionCmd)
	return root
}

func printVersion(m migrator, out io.Writer, prefix string) error {
	if prefix != "" {
		fmt.Fprintln(out, prefix)
	}
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		fmt.Fprintln(out, "schema version: none")
		return nil
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Fprintf(out, "schema version: %d (%s)\n", version, state)
	return nil
}

func openPostgres(databaseURL string) (migrator, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db driver: %w", err)
	}
	srcDriver, err := iofs.New(appmigrations.FS, ".")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("source driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", srcDriver, "postgres", dbDriver)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}
