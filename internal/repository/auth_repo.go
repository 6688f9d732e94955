package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"irrigation_node/internal/models"
)

type OperatorRepository struct {
	db *sql.DB
}

func NewOperatorRepository(db *sql.DB) *OperatorRepository {
	return &OperatorRepository{db: db}
}

// Ensure implementation of Authorization interface at compile time.
var _ Authorization = (*OperatorRepository)(nil)

const (
	insertOperatorSQL           = `INSERT INTO operators (username, password_hash) VALUES (?, ?)`
	selectOperatorByUsernameSQL = `SELECT id, username, password_hash, last_login_at FROM operators WHERE username = ?`
	updateOperatorLoginSQL      = `UPDATE operators SET last_login_at = ? WHERE id = ?`
	selectOperatorsSQL          = `SELECT id, username, last_login_at FROM operators ORDER BY username ASC`
)

// Create inserts a new operator and returns its ID.
func (r *OperatorRepository) Create(username, passwordHash string) (int, error) {
	res, err := r.db.Exec(insertOperatorSQL, username, passwordHash)
	if err != nil {
		return 0, fmt.Errorf("insert operator %q: %w", username, err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for operator %q: %w", username, err)
	}
	return int(lastID), nil
}

// GetByUsername fetches an operator by username. Returns (nil, nil) if not found.
func (r *OperatorRepository) GetByUsername(username string) (*models.Operator, error) {
	var u models.Operator
	var last sql.NullTime
	err := r.db.QueryRow(selectOperatorByUsernameSQL, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &last)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select operator %q: %w", username, err)
	}
	u.LastLoginAt = nullTime(last)
	return &u, nil
}

// TouchLogin stamps a successful sign-in. An unknown id is an error.
func (r *OperatorRepository) TouchLogin(id int, at time.Time) error {
	res, err := r.db.Exec(updateOperatorLoginSQL, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("update operator %d login: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update operator %d login: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update operator %d login: %w", id, sql.ErrNoRows)
	}
	return nil
}

// List returns every operator ordered by username, without password hashes.
func (r *OperatorRepository) List() ([]models.Operator, error) {
	rows, err := r.db.Query(selectOperatorsSQL)
	if err != nil {
		return nil, fmt.Errorf("list operators: %w", err)
	}
	defer rows.Close()

	var out []models.Operator
	for rows.Next() {
		var u models.Operator
		var last sql.NullTime
		if err := rows.Scan(&u.ID, &u.Username, &last); err != nil {
			return nil, fmt.Errorf("scan operator: %w", err)
		}
		u.LastLoginAt = nullTime(last)
		out = append(out, u)
	}
	return out, rows.Err()
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
