package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// RunMigrations применяет SQL-файлы вида NNN_название.sql из каталога
// migrationsDir в порядке номеров. Каждый файл выполняется в отдельной
// транзакции, выполненные версии запоминаются в таблице migrations.
func RunMigrations(db *pgxpool.Pool, migrationsDir string, logger *zap.Logger) error {
	ctx := context.Background()

	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS migrations (
			version VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("ошибка при создании таблицы миграций: %w", err)
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("ошибка при чтении директории миграций: %w", err)
	}

	var pending []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		pending = append(pending, entry.Name())
	}
	sort.Strings(pending)

	for _, file := range pending {
		version, name, ok := strings.Cut(file, "_")
		if !ok {
			logger.Warn("неверный формат имени файла миграции", zap.String("file", file))
			continue
		}
		name = strings.TrimSuffix(name, ".sql")

		if applied[version] {
			continue
		}

		if err := applyMigration(ctx, db, filepath.Join(migrationsDir, file), version, name); err != nil {
			return err
		}
		logger.Info("миграция выполнена", zap.String("version", version), zap.String("name", name))
	}

	return nil
}

func appliedVersions(ctx context.Context, db *pgxpool.Pool) (map[string]bool, error) {
	rows, err := db.Query(ctx, "SELECT version FROM migrations")
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении списка выполненных миграций: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("ошибка при сканировании записи о миграции: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при обработке результатов запроса: %w", err)
	}

	return applied, nil
}

func applyMigration(ctx context.Context, db *pgxpool.Pool, path, version, name string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ошибка при чтении файла миграции %s: %w", path, err)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return fmt.Errorf("ошибка при выполнении миграции %s: %w", version, err)
	}

	_, err = tx.Exec(ctx,
		"INSERT INTO migrations (version, name, applied_at) VALUES ($1, $2, $3)",
		version, name, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("ошибка при записи информации о выполненной миграции: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка при коммите транзакции: %w", err)
	}

	return nil
}
