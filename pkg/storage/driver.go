// Package storage
package storage

import (
	"context"
	"strings"

	"github.com/papercomputeco/wingman/pkg/dating"
)

// Driver defines the interface for persisting and retrieving wingman users,
// chat windows and generated responses in a storage backend.
//
// Requests handed to a Driver are expected to be validated already; drivers
// only enforce what the backend itself must guarantee (existence, unique
// emails, ordering).
type Driver interface {
	// CreateUser registers a new user. The password is hashed before it is
	// stored. Returns a ConflictError when the email is already taken.
	CreateUser(ctx context.Context, reg dating.Registration) (*dating.User, error)

	// GetUser retrieves a user by id.
	GetUser(ctx context.Context, id int64) (*dating.User, error)

	// GetUserByEmail retrieves a user by email, compared in normalized form.
	GetUserByEmail(ctx context.Context, email string) (*dating.User, error)

	// Authenticate returns the user owning email if password matches,
	// ErrInvalidCredentials otherwise.
	Authenticate(ctx context.Context, email, password string) (*dating.User, error)

	// UpdateUser replaces the profile fields of an existing user. An empty
	// password keeps the current one.
	UpdateUser(ctx context.Context, upd dating.ProfileUpdate) (*dating.User, error)

	// SetDescription stores the dating profile description of a user.
	SetDescription(ctx context.Context, userID int64, description string) error

	// CreateChatWindow opens a new chat window for an existing user.
	CreateChatWindow(ctx context.Context, w dating.NewChatWindow) (*dating.ChatWindow, error)

	// ListChatWindows returns the chat windows of a user, newest first.
	ListChatWindows(ctx context.Context, userID int64) ([]*dating.ChatWindow, error)

	// PutResponse stores a generated response and fills in its ID and
	// CreatedAt. A zero UserID stores an anonymous response.
	PutResponse(ctx context.Context, r *dating.Response) error

	// ListResponses returns stored responses newest first. A zero userID
	// lists the responses of every user.
	ListResponses(ctx context.Context, userID int64) ([]*dating.Response, error)

	// Close closes the store and releases any resources.
	Close() error
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Defaults fills in the optional fields of a new chat window.
func Defaults(w dating.NewChatWindow) dating.NewChatWindow {
	if strings.TrimSpace(w.Title) == "" {
		w.Title = DefaultChatTitle
	}
	if w.Mode == "" {
		w.Mode = dating.ModeBasic
	}
	return w
}

// DefaultChatTitle names chat windows created without a title.
const DefaultChatTitle = "New chat"
