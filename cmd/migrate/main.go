package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/ManuelReschke/contapp-relay/internal/pkg/config"
	"github.com/ManuelReschke/contapp-relay/internal/pkg/env"
)

const usage = `Usage: migrate <command> [arg]
Commands:
  up        apply all pending migrations
  down [N]  roll back N migrations (default 1)
  goto V    migrate to version V
  force V   set version V and clear the dirty flag
  status    print the current version`

var errUsage = errors.New(usage)

// migrator is the part of *migrate.Migrate the commands need.
type migrator interface {
	Up() error
	Steps(n int) error
	Migrate(version uint) error
	Force(version int) error
	Version() (version uint, dirty bool, err error)
}

func main() {
	env.SetupEnvFile()

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	db := config.LoadDatabase()
	if db.User == "" || db.Name == "" {
		log.Fatal("DB_USER and DB_NAME are required")
	}
	log.Printf("migrating %s@%s:%s/%s", db.User, db.Host, db.Port, db.Name)

	m, err := migrate.New("file://"+env.GetEnv("MIGRATIONS_DIR", "migrations"), migrationURL(db))
	if err != nil {
		log.Fatalf("init migrations: %v", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Printf("close migrations: %v, %v", srcErr, dbErr)
		}
	}()

	msg, err := run(m, os.Args[1:])
	if errors.Is(err, errUsage) {
		fmt.Println(usage)
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
	log.Println(msg)
}

// run executes one command and returns the line to print.
func run(m migrator, args []string) (string, error) {
	if len(args) == 0 {
		return "", errUsage
	}

	switch args[0] {
	case "up":
		if err := m.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				return "no change: database is up to date", nil
			}
			return "", fmt.Errorf("up: %w", err)
		}
		return "migrations applied", nil

	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return "", fmt.Errorf("down: invalid step count %q", args[1])
			}
			steps = n
		}
		if err := m.Steps(-steps); err != nil {
			return "", fmt.Errorf("down %d: %w", steps, err)
		}
		return fmt.Sprintf("rolled back %d migration(s)", steps), nil

	case "goto":
		v, err := versionArg(args)
		if err != nil {
			return "", err
		}
		if err := m.Migrate(uint(v)); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				return fmt.Sprintf("no change: already at version %d", v), nil
			}
			return "", fmt.Errorf("goto %d: %w", v, err)
		}
		return fmt.Sprintf("migrated to version %d", v), nil

	case "force":
		v, err := versionArg(args)
		if err != nil {
			return "", err
		}
		if err := m.Force(int(v)); err != nil {
			return "", fmt.Errorf("force %d: %w", v, err)
		}
		return fmt.Sprintf("forced version %d", v), nil

	case "status":
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return "no migrations applied yet", nil
		}
		if err != nil {
			return "", fmt.Errorf("status: %w", err)
		}
		if dirty {
			return fmt.Sprintf("version %d (dirty)", v), nil
		}
		return fmt.Sprintf("version %d", v), nil
	}

	return "", errUsage
}

func versionArg(args []string) (uint64, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%s: version required", args[0])
	}
	v, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid version %q", args[0], args[1])
	}
	return v, nil
}

func migrationURL(db config.DatabaseConfig) string {
	return fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s?multiStatements=true",
		db.User, db.Password, db.Host, db.Port, db.Name)
}
