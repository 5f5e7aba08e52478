// Package sqldb implements storage.Driver over database/sql. It is database
// agnostic and is embedded by the sqlite and postgres drivers, which supply
// the connection and a Dialect.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/wingman/pkg/dating"
	"github.com/papercomputeco/wingman/pkg/storage"
)

// Dialect describes what differs between SQL backends.
type Dialect struct {
	// Schema holds the statements creating the tables. Each must be
	// idempotent.
	Schema []string

	// Placeholders rewrites the "?" placeholders of a query into the
	// backend's form.
	Placeholders func(query string) string

	// IsUniqueViolation reports whether err was caused by a unique
	// constraint.
	IsUniqueViolation func(err error) bool
}

// Dollar rewrites "?" placeholders into "$1", "$2", ... as postgres expects.
func Dollar(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Driver provides storage operations on a *sql.DB.
type Driver struct {
	DB      *sql.DB
	dialect Dialect
}

// New wraps db. Call Migrate before use.
func New(db *sql.DB, dialect Dialect) *Driver {
	if dialect.Placeholders == nil {
		dialect.Placeholders = func(q string) string { return q }
	}
	if dialect.IsUniqueViolation == nil {
		dialect.IsUniqueViolation = func(error) bool { return false }
	}
	return &Driver{DB: db, dialect: dialect}
}

// Migrate creates any missing tables and indexes.
func (d *Driver) Migrate(ctx context.Context) error {
	for _, stmt := range d.dialect.Schema {
		if _, err := d.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func (d *Driver) q(query string) string {
	return d.dialect.Placeholders(query)
}

func now() time.Time {
	return time.Now().UTC()
}

const userColumns = "id, name, email, sex, age, description, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*dating.User, error) {
	u := &dating.User{}
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Sex, &u.Age, &u.Description, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

// CreateUser registers a new user.
func (d *Driver) CreateUser(ctx context.Context, reg dating.Registration) (*dating.User, error) {
	hash, err := storage.HashPassword(reg.Password)
	if err != nil {
		return nil, err
	}
	email := storage.NormalizeEmail(reg.Email)

	u := &dating.User{
		Name:      reg.Name,
		Email:     email,
		Sex:       reg.Sex,
		Age:       reg.Age,
		CreatedAt: now(),
	}
	err = d.DB.QueryRowContext(ctx, d.q(
		"INSERT INTO users (name, email, sex, age, description, password_hash, created_at) "+
			"VALUES (?, ?, ?, ?, '', ?, ?) RETURNING id"),
		u.Name, u.Email, u.Sex, u.Age, hash, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		if d.dialect.IsUniqueViolation(err) {
			return nil, storage.ConflictError{Field: "email", Value: email}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// GetUser retrieves a user by id.
func (d *Driver) GetUser(ctx context.Context, id int64) (*dating.User, error) {
	row := d.DB.QueryRowContext(ctx, d.q("SELECT "+userColumns+" FROM users WHERE id = ?"), id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{Kind: "user", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email.
func (d *Driver) GetUserByEmail(ctx context.Context, email string) (*dating.User, error) {
	email = storage.NormalizeEmail(email)
	row := d.DB.QueryRowContext(ctx, d.q("SELECT "+userColumns+" FROM users WHERE email = ?"), email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{Kind: "user", ID: email}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// Authenticate checks an email and password pair.
func (d *Driver) Authenticate(ctx context.Context, email, password string) (*dating.User, error) {
	var hash string
	u := &dating.User{}
	err := d.DB.QueryRowContext(ctx, d.q("SELECT "+userColumns+", password_hash FROM users WHERE email = ?"),
		storage.NormalizeEmail(email)).
		Scan(&u.ID, &u.Name, &u.Email, &u.Sex, &u.Age, &u.Description, &u.CreatedAt, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	match, err := storage.CheckPassword(hash, password)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, storage.ErrInvalidCredentials
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

// UpdateUser replaces the profile fields of an existing user.
func (d *Driver) UpdateUser(ctx context.Context, upd dating.ProfileUpdate) (*dating.User, error) {
	email := storage.NormalizeEmail(upd.Email)

	query := "UPDATE users SET name = ?, email = ?, sex = ?, age = ?"
	args := []any{upd.Name, email, upd.Sex, upd.Age}
	if upd.Password != "" {
		hash, err := storage.HashPassword(upd.Password)
		if err != nil {
			return nil, err
		}
		query += ", password_hash = ?"
		args = append(args, hash)
	}
	query += " WHERE id = ?"
	args = append(args, upd.UserID)

	res, err := d.DB.ExecContext(ctx, d.q(query), args...)
	if err != nil {
		if d.dialect.IsUniqueViolation(err) {
			return nil, storage.ConflictError{Field: "email", Value: email}
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if n == 0 {
		return nil, storage.NotFoundError{Kind: "user", ID: upd.UserID}
	}
	return d.GetUser(ctx, upd.UserID)
}

// SetDescription stores the profile description of a user.
func (d *Driver) SetDescription(ctx context.Context, userID int64, description string) error {
	res, err := d.DB.ExecContext(ctx, d.q("UPDATE users SET description = ? WHERE id = ?"), description, userID)
	if err != nil {
		return fmt.Errorf("failed to set description: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set description: %w", err)
	}
	if n == 0 {
		return storage.NotFoundError{Kind: "user", ID: userID}
	}
	return nil
}

func (d *Driver) userExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := d.DB.QueryRowContext(ctx, d.q("SELECT 1 FROM users WHERE id = ?"), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return true, nil
}

// CreateChatWindow opens a new chat window.
func (d *Driver) CreateChatWindow(ctx context.Context, w dating.NewChatWindow) (*dating.ChatWindow, error) {
	w = storage.Defaults(w)

	ok, err := d.userExists(ctx, w.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, storage.NotFoundError{Kind: "user", ID: w.UserID}
	}

	cw := &dating.ChatWindow{
		ID:        uuid.NewString(),
		UserID:    w.UserID,
		Title:     w.Title,
		Mode:      w.Mode,
		CreatedAt: now(),
	}
	_, err = d.DB.ExecContext(ctx, d.q(
		"INSERT INTO chat_windows (id, user_id, title, mode, created_at) VALUES (?, ?, ?, ?, ?)"),
		cw.ID, cw.UserID, cw.Title, string(cw.Mode), cw.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat window: %w", err)
	}
	return cw, nil
}

// ListChatWindows returns the chat windows of a user, newest first.
func (d *Driver) ListChatWindows(ctx context.Context, userID int64) ([]*dating.ChatWindow, error) {
	ok, err := d.userExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, storage.NotFoundError{Kind: "user", ID: userID}
	}

	rows, err := d.DB.QueryContext(ctx, d.q(
		"SELECT id, user_id, title, mode, created_at FROM chat_windows "+
			"WHERE user_id = ? ORDER BY created_at DESC, seq DESC"), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat windows: %w", err)
	}
	defer rows.Close()

	out := []*dating.ChatWindow{}
	for rows.Next() {
		cw := &dating.ChatWindow{}
		var mode string
		if err := rows.Scan(&cw.ID, &cw.UserID, &cw.Title, &mode, &cw.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat window: %w", err)
		}
		cw.Mode = dating.Mode(mode)
		cw.CreatedAt = cw.CreatedAt.UTC()
		out = append(out, cw)
	}
	return out, rows.Err()
}

// PutResponse stores a generated response.
func (d *Driver) PutResponse(ctx context.Context, r *dating.Response) error {
	if r == nil {
		return errors.New("cannot store nil response")
	}

	var userID sql.NullInt64
	if r.UserID != 0 {
		ok, err := d.userExists(ctx, r.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return storage.NotFoundError{Kind: "user", ID: r.UserID}
		}
		userID = sql.NullInt64{Int64: r.UserID, Valid: true}
	}

	var windowID sql.NullString
	if r.ChatWindowID != "" {
		var one int
		err := d.DB.QueryRowContext(ctx, d.q("SELECT 1 FROM chat_windows WHERE id = ?"), r.ChatWindowID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return storage.NotFoundError{Kind: "chat window", ID: r.ChatWindowID}
		}
		if err != nil {
			return fmt.Errorf("failed to check chat window: %w", err)
		}
		windowID = sql.NullString{String: r.ChatWindowID, Valid: true}
	}

	createdAt := now()
	err := d.DB.QueryRowContext(ctx, d.q(
		"INSERT INTO responses (user_id, chat_window_id, prompt, response, created_at) "+
			"VALUES (?, ?, ?, ?, ?) RETURNING id"),
		userID, windowID, r.Prompt, r.Response, createdAt).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("failed to store response: %w", err)
	}
	r.CreatedAt = createdAt
	return nil
}

// ListResponses returns stored responses newest first.
func (d *Driver) ListResponses(ctx context.Context, userID int64) ([]*dating.Response, error) {
	query := "SELECT id, user_id, chat_window_id, prompt, response, created_at FROM responses"
	var args []any
	if userID != 0 {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := d.DB.QueryContext(ctx, d.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	defer rows.Close()

	out := []*dating.Response{}
	for rows.Next() {
		r := &dating.Response{}
		var (
			uid sql.NullInt64
			wid sql.NullString
		)
		if err := rows.Scan(&r.ID, &uid, &wid, &r.Prompt, &r.Response, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		r.UserID = uid.Int64
		r.ChatWindowID = wid.String
		r.CreatedAt = r.CreatedAt.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (d *Driver) Close() error {
	return d.DB.Close()
}
