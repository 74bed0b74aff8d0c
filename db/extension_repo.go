package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dicemill/outgunned/domain"
)

var _ domain.ExtensionRepository = (*Repository)(nil)

// ErrNoExtension is returned when an extension is not found by name.
var ErrNoExtension = errors.New("extension not found")

type dbExtension struct {
	Name        string    `db:"name"`
	Command     string    `db:"command"`
	Author      string    `db:"author"`
	Description string    `db:"description"`
	LuaContent  string    `db:"lua_content"`
	Enabled     bool      `db:"enabled"`
	CreatedAt   time.Time `db:"created_at"`
}

func toDomainExtension(row *dbExtension) domain.Extension {
	return domain.Extension{
		Name:        row.Name,
		Command:     row.Command,
		Author:      row.Author,
		Description: row.Description,
		LuaContent:  row.LuaContent,
		Enabled:     row.Enabled,
		CreatedAt:   row.CreatedAt,
	}
}

// CreateExtension implements the domain.ExtensionRepository interface.
func (repo *Repository) CreateExtension(extension domain.Extension) error {
	createdAt := extension.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `INSERT INTO extension(name, command, author, description, lua_content, enabled, created_at)
		      VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := repo.dbConn.Exec(query,
		extension.Name, extension.Command, extension.Author,
		extension.Description, extension.LuaContent, extension.Enabled, createdAt)
	if err != nil {
		return fmt.Errorf("creating extension %s: %w", extension.Name, err)
	}

	return nil
}

// GetExtensions implements the domain.ExtensionRepository interface.
func (repo *Repository) GetExtensions() ([]domain.Extension, error) {
	var rows []*dbExtension
	query := `SELECT name, command, author, description, lua_content, enabled, created_at
		      FROM extension ORDER BY name`

	err := repo.dbConn.Select(&rows, query)
	if err != nil {
		return nil, fmt.Errorf("retrieving extensions: %w", err)
	}

	extensions := make([]domain.Extension, len(rows))
	for i, row := range rows {
		extensions[i] = toDomainExtension(row)
	}

	return extensions, nil
}

// GetExtension implements the domain.ExtensionRepository interface.
func (repo *Repository) GetExtension(name string) (domain.Extension, error) {
	var row dbExtension
	query := `SELECT name, command, author, description, lua_content, enabled, created_at
		      FROM extension WHERE name = ?`

	err := repo.dbConn.Get(&row, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Extension{}, ErrNoExtension
	}
	if err != nil {
		return domain.Extension{}, fmt.Errorf("retrieving extension %s: %w", name, err)
	}

	return toDomainExtension(&row), nil
}

// UpdateLuaCode implements the domain.ExtensionRepository interface.
func (repo *Repository) UpdateLuaCode(name string, code string) error {
	query := `UPDATE extension SET lua_content = ? WHERE name = ?`

	result, err := repo.dbConn.Exec(query, code, name)
	if err != nil {
		return fmt.Errorf("updating lua code for extension %s: %w", name, err)
	}

	return checkExtensionAffected(result, name)
}

// SetExtensionEnabled implements the domain.ExtensionRepository interface.
func (repo *Repository) SetExtensionEnabled(name string, enabled bool) error {
	query := `UPDATE extension SET enabled = ? WHERE name = ?`

	result, err := repo.dbConn.Exec(query, enabled, name)
	if err != nil {
		return fmt.Errorf("toggling extension %s: %w", name, err)
	}

	return checkExtensionAffected(result, name)
}

// RemoveExtension implements the domain.ExtensionRepository interface.
func (repo *Repository) RemoveExtension(name string) error {
	query := `DELETE FROM extension WHERE name = ?`

	result, err := repo.dbConn.Exec(query, name)
	if err != nil {
		return fmt.Errorf("removing extension %s: %w", name, err)
	}

	return checkExtensionAffected(result, name)
}

func checkExtensionAffected(result sql.Result, name string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected for extension %s: %w", name, err)
	}
	if rowsAffected == 0 {
		return ErrNoExtension
	}
	return nil
}
