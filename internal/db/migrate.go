package db

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
	"parish-app-go/migrations"
	"parish-app-go/pkg/logger"
)

type appliedMigration struct {
	Filename string
	Checksum string
}

// Migrate applies the embedded schema migrations that are not yet recorded.
func Migrate(db *gorm.DB, log logger.Logger) error {
	return MigrateFS(db, migrations.FS, log)
}

// MigrateFS applies every *.sql file at the root of source. A recorded file
// whose contents changed since it was applied is reported and left alone.
func MigrateFS(db *gorm.DB, source fs.FS, log logger.Logger) error {
	if err := ensureSchemaMigrations(db); err != nil {
		return fmt.Errorf("schema_migrations: %w", err)
	}

	files, err := fs.Glob(source, "*.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)

	applied, err := loadApplied(db)
	if err != nil {
		return err
	}

	count := 0
	for _, name := range files {
		contents, err := fs.ReadFile(source, name)
		if err != nil {
			return err
		}
		sql := strings.TrimSpace(string(contents))
		if sql == "" {
			continue
		}
		sum := checksum(sql)

		if previous, ok := applied[name]; ok {
			if previous != "" && previous != sum {
				log.Warn("db: applied migration was modified", "file", name)
			}
			continue
		}

		started := time.Now()
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(sql).Error; err != nil {
				return err
			}
			return tx.Exec(
				"INSERT INTO schema_migrations (filename, checksum, applied_at) VALUES (?, ?, ?)",
				name, sum, time.Now().UTC(),
			).Error
		})
		if err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}

		log.Info("db: migration applied", "file", name, "took_ms", time.Since(started).Milliseconds())
		count++
	}

	log.Info("db: migrations up to date", "applied", count, "total", len(files))
	return nil
}

func ensureSchemaMigrations(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`).Error; err != nil {
		return err
	}
	return db.Exec(`ALTER TABLE schema_migrations ADD COLUMN IF NOT EXISTS checksum TEXT NOT NULL DEFAULT ''`).Error
}

func loadApplied(db *gorm.DB) (map[string]string, error) {
	var rows []appliedMigration
	if err := db.Raw("SELECT filename, checksum FROM schema_migrations").Scan(&rows).Error; err != nil {
		return nil, err
	}

	applied := make(map[string]string, len(rows))
	for _, row := range rows {
		applied[row.Filename] = row.Checksum
	}
	return applied, nil
}

func checksum(sql string) string {
	sum := sha256.Sum256([]byte(sql))
	return hex.EncodeToString(sum[:])
}
