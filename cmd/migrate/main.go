// Команда migrate управляет схемой базы данных: применяет, откатывает миграции
// и снимает "dirty"-состояние после неудачной миграции.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/lib/pq"

	"github.com/yourusername/lesson-api/internal/config"
	"github.com/yourusername/lesson-api/internal/pkg/logger"
	"github.com/yourusername/lesson-api/pkg/database"
)

func main() {
	cmd := flag.String("cmd", "up", "up | down | force | version")
	version := flag.Int("version", -1, "версия для force")
	steps := flag.Int("steps", 0, "количество шагов для down (0 = откатить все)")
	path := flag.String("path", "", "каталог миграций (по умолчанию из конфигурации)")
	dsn := flag.String("dsn", "", "строка подключения PostgreSQL (по умолчанию из DATABASE_* переменных)")
	flag.Parse()

	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	dbCfg := databaseConfigFromEnv()
	if *dsn == "" {
		*dsn = dbCfg.PostgresConnectionString()
	}
	if *path == "" {
		*path = dbCfg.MigrationsPath
	}

	if err := run(*cmd, *dsn, *path, *version, *steps, log); err != nil {
		log.Error("Migration command failed", "cmd", *cmd, "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(cmd, dsn, path string, version, steps int, log *logger.Logger) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := database.NewMigrator(db, path)
	if err != nil {
		return err
	}

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	case "force":
		if version < 0 {
			return fmt.Errorf("force requires -version")
		}
		err = m.Force(version)
	case "version":
		v, dirty, verr := m.Version()
		if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
			return verr
		}
		log.Info("Current schema version", "version", v, "dirty", dirty)
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("No migrations to apply", "cmd", cmd)
		return nil
	}
	if err != nil {
		return err
	}
	log.Info("Migration command completed", "cmd", cmd)
	return nil
}

// databaseConfigFromEnv читает только параметры базы данных: команде не нужны остальные секции
func databaseConfigFromEnv() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:           envOr("DATABASE_HOST", "localhost"),
		Port:           envOr("DATABASE_PORT", "5432"),
		User:           envOr("DATABASE_USER", "postgres"),
		Password:       os.Getenv("DATABASE_PASSWORD"),
		DBName:         envOr("DATABASE_DBNAME", "lesson_db"),
		SSLMode:        envOr("DATABASE_SSLMODE", "disable"),
		MigrationsPath: envOr("DATABASE_MIGRATIONS_PATH", database.DefaultMigrationsPath),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
