package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/yourusername/quizmaster-api/internal/config"
)

const usage = `Использование: migrate [-config path] <команда>

Команды:
  up             применить все новые миграции
  down [N]       откатить N миграций (по умолчанию 1)
  force VERSION  сбросить dirty-состояние и выставить версию
  version        показать текущую версию`

func main() {
	configPath := flag.String("config", "", "путь к config.yaml (по умолчанию CONFIG_PATH или config/config.yaml)")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	path := *configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config/config.yaml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Отдельное подключение через lib/pq, без GORM: утилита должна работать и при сломанной схеме
	db, err := sql.Open("postgres", cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal(err)
	}

	migrationsPath := cfg.Database.MigrationsPath
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		log.Fatal(err)
	}

	if err := run(m, flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func run(m *migrate.Migrate, args []string) error {
	switch args[0] {
	case "up":
		return ignoreNoChange(m.Up())

	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid number of steps: %q", args[1])
			}
			steps = n
		}
		return ignoreNoChange(m.Steps(-steps))

	case "force":
		if len(args) < 2 {
			return errors.New("force requires a version")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version: %q", args[1])
		}
		if err := m.Force(version); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
		log.Printf("Версия миграций принудительно выставлена в %d", version)
		return nil

	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Println("Миграции ещё не применялись")
			return nil
		}
		if err != nil {
			return err
		}
		log.Printf("Версия: %d, dirty: %t", version, dirty)
		return nil
	}

	flag.Usage()
	return fmt.Errorf("unknown command %q", args[0])
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		log.Println("Изменений в миграциях не найдено")
		return nil
	}
	if err == nil {
		log.Println("Миграции успешно применены")
	}
	return err
}
