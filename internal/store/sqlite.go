package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        username TEXT PRIMARY KEY,
        password TEXT
    );

    CREATE TABLE IF NOT EXISTS history (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        username TEXT,
        title TEXT,
        question TEXT,
        answer TEXT
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// User methods

func (s *SQLiteStore) CreateUser(username, password string) error {
	_, err := s.db.Exec("INSERT INTO users (username, password) VALUES (?, ?)", username, password)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// VerifyUser reports whether a row matches both fields exactly.
// A mismatch is not an error; the caller decides how to surface it.
func (s *SQLiteStore) VerifyUser(username, password string) (bool, error) {
	var found string
	err := s.db.QueryRow("SELECT username FROM users WHERE username = ? AND password = ?", username, password).Scan(&found)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to query user: %w", err)
	}
	return true, nil
}

// Thread methods

func (s *SQLiteStore) CreateThread(username, title, question, answer string) (int64, error) {
	res, err := s.db.Exec("INSERT INTO history (username, title, question, answer) VALUES (?, ?, ?, ?)",
		username, title, question, answer)
	if err != nil {
		return 0, fmt.Errorf("failed to insert thread: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read thread id: %w", err)
	}
	return id, nil
}

// AppendToThread concatenates a Q/A fragment onto the thread's answer.
// Title and question are left untouched.
func (s *SQLiteStore) AppendToThread(id int64, question, answer string) error {
	fragment := fmt.Sprintf("\n\nQ: %s\nA: %s", question, answer)
	res, err := s.db.Exec("UPDATE history SET answer = answer || ? WHERE id = ?", fragment, id)
	if err != nil {
		return fmt.Errorf("failed to execute thread append: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrThreadNotFound
	}
	return nil
}

func (s *SQLiteStore) ListThreads(username string) ([]Thread, error) {
	rows, err := s.db.Query("SELECT id, title, question, answer FROM history WHERE username = ? ORDER BY id", username)
	if err != nil {
		return nil, fmt.Errorf("failed to query threads: %w", err)
	}
	defer rows.Close()

	var threads []Thread
	for rows.Next() {
		var t Thread
		if err := rows.Scan(&t.ID, &t.Title, &t.Question, &t.Answer); err != nil {
			return nil, fmt.Errorf("failed to scan thread row: %w", err)
		}
		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate thread rows: %w", err)
	}
	return threads, nil
}

// DeleteThread removes the record if present. Deleting an id that does
// not exist is a no-op success, not an error.
func (s *SQLiteStore) DeleteThread(id int64) error {
	_, err := s.db.Exec("DELETE FROM history WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}
	return nil
}
