// Package database, mute audit kayıtlarının tutulduğu SQLite dosyasını açar
// ve şemayı günceller.
//
// Mute durumu bellekte yaşar (repository.MuteRegistry); burada sadece
// moderatörlerin geçmişe dönük baktığı audit trail vardır.
package database

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver, CGO gerekmez
)

// DB, audit veritabanı bağlantısı.
type DB struct {
	Conn *sql.DB
}

// New, dbPath'teki SQLite dosyasını açar (dizini yoksa oluşturur) ve
// migrationsFS içindeki henüz uygulanmamış .sql dosyalarını çalıştırır.
func New(dbPath string, migrationsFS fs.FS) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Audit yazımları seyrek ve tek yazıcı yeterli: "database is locked" görülmez.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{Conn: conn}
	applied, err := db.migrate(migrationsFS)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Printf("[database] opened %s (%d new migrations)", dbPath, applied)
	return db, nil
}

// Close, bağlantıyı kapatır.
func (db *DB) Close() error {
	return db.Conn.Close()
}

// migrate, schema_migrations'ta kaydı olmayan dosyaları isim sırasıyla uygular
// ve uygulanan dosya sayısını döner.
//
// Her dosya kendi kaydıyla birlikte tek transaction'da çalışır. SQLite DDL'i
// de geri aldığı için yarıda kalan bir dosya iz bırakmaz; bir sonraki
// açılışta baştan çalışır.
func (db *DB) migrate(migrationsFS fs.FS) (int, error) {
	if _, err := db.Conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename   TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return 0, fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	files, err := migrationFiles(migrationsFS)
	if err != nil {
		return 0, err
	}

	done, err := db.appliedMigrations()
	if err != nil {
		return 0, err
	}

	count := 0
	for _, file := range files {
		if done[file] {
			continue
		}

		content, err := fs.ReadFile(migrationsFS, file)
		if err != nil {
			return count, fmt.Errorf("failed to read migration %s: %w", file, err)
		}
		if err := db.applyMigration(file, string(content)); err != nil {
			return count, err
		}

		log.Printf("[database] migration applied: %s", file)
		count++
	}

	return count, nil
}

// migrationFiles, FS kökündeki .sql dosyalarını sıralı döner (001_, 002_, ...).
func migrationFiles(migrationsFS fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	slices.Sort(files)
	return files, nil
}

func (db *DB) appliedMigrations() (map[string]bool, error) {
	rows, err := db.Conn.Query("SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query schema_migrations: %w", err)
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		done[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate migration rows: %w", err)
	}
	return done, nil
}

// applyMigration, bir dosyanın statement'larını ve schema_migrations kaydını
// aynı transaction'da çalıştırır. Hata olursa hiçbiri kalıcı olmaz.
func (db *DB) applyMigration(file, content string) error {
	tx, err := db.Conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration %s: %w", file, err)
	}
	defer tx.Rollback()

	for i, stmt := range splitStatements(content) {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute migration %s (statement %d): %w", file, i+1, err)
		}
	}

	if _, err := tx.Exec("INSERT INTO schema_migrations (filename) VALUES (?)", file); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", file, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", file, err)
	}
	return nil
}

// splitStatements, SQL metnini ';' ile böler. Tek tırnaklı literal içindeki
// ';' ve '' escape'i bölmeye sebep olmaz. "--" ile başlayan satır yorumları atlanır.
func splitStatements(sql string) []string {
	var (
		statements []string
		current    strings.Builder
		inString   bool
	)

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			statements = append(statements, s)
		}
		current.Reset()
	}

	for i := 0; i < len(sql); i++ {
		ch := sql[i]

		switch {
		case !inString && ch == '-' && i+1 < len(sql) && sql[i+1] == '-':
			// Yorum satır sonuna kadar.
			for i < len(sql) && sql[i] != '\n' {
				i++
			}
			current.WriteByte('\n')
			continue
		case ch == '\'' && inString && i+1 < len(sql) && sql[i+1] == '\'':
			current.WriteString("''")
			i++
			continue
		case ch == '\'':
			inString = !inString
		case ch == ';' && !inString:
			flush()
			continue
		}

		current.WriteByte(ch)
	}
	flush()

	return statements
}
