package repository

import (
	"database/sql"
	_ "embed"
	"fmt"
)

// Definisi skema statis. Dieksekusi sekali saat startup,
// bukan bagian dari penanganan request.
//
//go:embed schema.sql
var schemaSQL string

// CreateTablesIfNotExist menjalankan bootstrap skema.
func CreateTablesIfNotExist(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// DropAllTables menghapus semua tabel. Hanya dipakai oleh test.
func DropAllTables(db *sql.DB) error {
	query := `
    DROP TABLE IF EXISTS tasks;
    DROP TABLE IF EXISTS categories;
    DROP TABLE IF EXISTS users;
    `
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("dropping tables: %w", err)
	}
	return nil
}
