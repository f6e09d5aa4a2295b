package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"signal_bot/pkg/db"
	"signal_bot/pkg/logger"
)

const createVersions = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    name       TEXT PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// collectFiles все файлы по glob-шаблонам, без дублей, по имени.
func collectFiles(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	files := make([]string, 0)
	for _, pattern := range patterns {
		f, err := filepath.Glob(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "get file glob %q", pattern)
		}
		for _, name := range f {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			files = append(files, name)
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return filepath.Base(files[i]) < filepath.Base(files[j])
	})
	return files, nil
}

func apply(ctx context.Context, tm db.TxManager, file string) (bool, error) {
	name := filepath.Base(file)
	body, err := os.ReadFile(file)
	if err != nil {
		return false, errors.Wrapf(err, "read %s", file)
	}

	applied := false
	err = tm.RunMaster(ctx, func(ctxTx context.Context, tx db.Transaction) error {
		var exists bool
		if err := tx.QueryRow(ctxTx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, name).Scan(&exists); err != nil {
			return errors.Wrap(err, "check version")
		}
		if exists {
			return nil
		}
		if _, err := tx.Exec(ctxTx, string(body)); err != nil {
			return errors.Wrapf(err, "exec %s", name)
		}
		if _, err := tx.Exec(ctxTx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
			return errors.Wrap(err, "save version")
		}
		applied = true
		return nil
	})
	return applied, err
}

func loadConfig() error {
	viper.SetConfigName(".migrate")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetDefault("source", []string{"migrations/*.sql"})
	viper.SetDefault("timeout", "1m")
	if err := viper.BindEnv("dsn", "DATABASE_DSN"); err != nil {
		return err
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errors.Wrap(err, "read .migrate.yaml")
		}
	}
	if viper.GetString("dsn") == "" {
		return errors.New("dsn is empty: set DATABASE_DSN or dsn in .migrate.yaml")
	}
	return nil
}

func main() {
	logger.SetServiceName("migrate")
	if _, err := logger.Init(logger.Config{Level: "info"}); err != nil {
		panic(err)
	}
	if err := loadConfig(); err != nil {
		logger.Fatal("config: %v", err)
	}

	files, err := collectFiles(viper.GetStringSlice("source"))
	if err != nil {
		logger.Fatal("%v", err)
	}
	if len(files) == 0 {
		logger.Warn("no migration files for %v", viper.GetStringSlice("source"))
		return
	}

	timeout, err := time.ParseDuration(viper.GetString("timeout"))
	if err != nil {
		logger.Fatal("timeout: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pool, err := db.NewPool(ctx, db.PoolConfig{DSN: viper.GetString("dsn"), MaxConns: 1})
	if err != nil {
		logger.Fatal("pool: %v", err)
	}
	tm := db.NewPgTxManager(pool)
	defer tm.Close()

	if _, err := tm.Conn().Exec(ctx, createVersions); err != nil {
		logger.Fatal("schema_migrations: %v", err)
	}

	for _, file := range files {
		ok, err := apply(ctx, tm, file)
		if err != nil {
			logger.Fatal("%v", err)
		}
		if ok {
			fmt.Printf("%s applied\n", file)
		} else {
			fmt.Printf("%s already applied\n", file)
		}
	}
	fmt.Println("done")
}
