// Package inmemory provides a map-backed storage driver. Nothing survives a
// restart; it backs tests and the offline preset.
package inmemory

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/wingman/pkg/dating"
	"github.com/papercomputeco/wingman/pkg/storage"
)

type userRecord struct {
	user dating.User
	hash string
}

// Driver implements storage.Driver using in-memory maps.
type Driver struct {
	// mu guards every map and counter below
	mu sync.RWMutex

	users   map[int64]*userRecord
	byEmail map[string]int64
	windows map[string]*dating.ChatWindow

	// windowOrder and responses keep insertion order, oldest first
	windowOrder []string
	responses   []*dating.Response

	nextUserID     int64
	nextResponseID int64

	now func() time.Time
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		users:   make(map[int64]*userRecord),
		byEmail: make(map[string]int64),
		windows: make(map[string]*dating.ChatWindow),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateUser registers a new user.
func (d *Driver) CreateUser(_ context.Context, reg dating.Registration) (*dating.User, error) {
	hash, err := storage.HashPassword(reg.Password)
	if err != nil {
		return nil, err
	}
	email := storage.NormalizeEmail(reg.Email)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, taken := d.byEmail[email]; taken {
		return nil, storage.ConflictError{Field: "email", Value: email}
	}

	d.nextUserID++
	rec := &userRecord{
		user: dating.User{
			ID:        d.nextUserID,
			Name:      reg.Name,
			Email:     email,
			Sex:       reg.Sex,
			Age:       reg.Age,
			CreatedAt: d.now(),
		},
		hash: hash,
	}
	d.users[rec.user.ID] = rec
	d.byEmail[email] = rec.user.ID

	u := rec.user
	return &u, nil
}

// GetUser retrieves a user by id.
func (d *Driver) GetUser(_ context.Context, id int64) (*dating.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rec, ok := d.users[id]
	if !ok {
		return nil, storage.NotFoundError{Kind: "user", ID: id}
	}
	u := rec.user
	return &u, nil
}

// GetUserByEmail retrieves a user by email.
func (d *Driver) GetUserByEmail(_ context.Context, email string) (*dating.User, error) {
	email = storage.NormalizeEmail(email)

	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byEmail[email]
	if !ok {
		return nil, storage.NotFoundError{Kind: "user", ID: email}
	}
	u := d.users[id].user
	return &u, nil
}

// Authenticate checks an email and password pair.
func (d *Driver) Authenticate(_ context.Context, email, password string) (*dating.User, error) {
	d.mu.RLock()
	id, ok := d.byEmail[storage.NormalizeEmail(email)]
	var rec userRecord
	if ok {
		rec = *d.users[id]
	}
	d.mu.RUnlock()

	if !ok {
		return nil, storage.ErrInvalidCredentials
	}
	match, err := storage.CheckPassword(rec.hash, password)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, storage.ErrInvalidCredentials
	}
	return &rec.user, nil
}

// UpdateUser replaces the profile fields of an existing user.
func (d *Driver) UpdateUser(_ context.Context, upd dating.ProfileUpdate) (*dating.User, error) {
	var hash string
	if upd.Password != "" {
		var err error
		if hash, err = storage.HashPassword(upd.Password); err != nil {
			return nil, err
		}
	}
	email := storage.NormalizeEmail(upd.Email)

	d.mu.Lock()
	defer d.mu.Unlock()

	rec, ok := d.users[upd.UserID]
	if !ok {
		return nil, storage.NotFoundError{Kind: "user", ID: upd.UserID}
	}
	if owner, taken := d.byEmail[email]; taken && owner != upd.UserID {
		return nil, storage.ConflictError{Field: "email", Value: email}
	}

	delete(d.byEmail, rec.user.Email)
	d.byEmail[email] = rec.user.ID

	rec.user.Name = upd.Name
	rec.user.Email = email
	rec.user.Sex = upd.Sex
	rec.user.Age = upd.Age
	if hash != "" {
		rec.hash = hash
	}

	u := rec.user
	return &u, nil
}

// SetDescription stores the profile description of a user.
func (d *Driver) SetDescription(_ context.Context, userID int64, description string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec, ok := d.users[userID]
	if !ok {
		return storage.NotFoundError{Kind: "user", ID: userID}
	}
	rec.user.Description = description
	return nil
}

// CreateChatWindow opens a new chat window.
func (d *Driver) CreateChatWindow(_ context.Context, w dating.NewChatWindow) (*dating.ChatWindow, error) {
	w = storage.Defaults(w)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.users[w.UserID]; !ok {
		return nil, storage.NotFoundError{Kind: "user", ID: w.UserID}
	}

	cw := &dating.ChatWindow{
		ID:        uuid.NewString(),
		UserID:    w.UserID,
		Title:     w.Title,
		Mode:      w.Mode,
		CreatedAt: d.now(),
	}
	d.windows[cw.ID] = cw
	d.windowOrder = append(d.windowOrder, cw.ID)

	out := *cw
	return &out, nil
}

// ListChatWindows returns the chat windows of a user, newest first.
func (d *Driver) ListChatWindows(_ context.Context, userID int64) ([]*dating.ChatWindow, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if _, ok := d.users[userID]; !ok {
		return nil, storage.NotFoundError{Kind: "user", ID: userID}
	}

	out := []*dating.ChatWindow{}
	for i := len(d.windowOrder) - 1; i >= 0; i-- {
		cw := d.windows[d.windowOrder[i]]
		if cw.UserID == userID {
			c := *cw
			out = append(out, &c)
		}
	}
	slices.SortStableFunc(out, func(a, b *dating.ChatWindow) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// PutResponse stores a generated response.
func (d *Driver) PutResponse(_ context.Context, r *dating.Response) error {
	if r == nil {
		return errors.New("cannot store nil response")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if r.UserID != 0 {
		if _, ok := d.users[r.UserID]; !ok {
			return storage.NotFoundError{Kind: "user", ID: r.UserID}
		}
	}
	if r.ChatWindowID != "" {
		if _, ok := d.windows[r.ChatWindowID]; !ok {
			return storage.NotFoundError{Kind: "chat window", ID: r.ChatWindowID}
		}
	}

	d.nextResponseID++
	r.ID = d.nextResponseID
	r.CreatedAt = d.now()

	stored := *r
	d.responses = append(d.responses, &stored)
	return nil
}

// ListResponses returns stored responses newest first.
func (d *Driver) ListResponses(_ context.Context, userID int64) ([]*dating.Response, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := []*dating.Response{}
	for i := len(d.responses) - 1; i >= 0; i-- {
		r := d.responses[i]
		if userID == 0 || r.UserID == userID {
			c := *r
			out = append(out, &c)
		}
	}
	slices.SortStableFunc(out, func(a, b *dating.Response) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}
