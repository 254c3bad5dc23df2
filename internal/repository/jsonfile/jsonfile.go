// Package jsonfile stores users as an indented JSON array in a single file.
//
// The whole collection lives in memory and every successful Create rewrites
// the file. Writes are serialized behind a mutex and land through a temp
// file plus rename, so a crash mid-write never leaves a truncated file and
// two concurrent registrations cannot overwrite each other.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/tripnosis/tripnosis/internal/domain"
)

// record is the on-disk shape of a user.
type record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}

// DB is a file-backed user store.
type DB struct {
	path string

	mu    sync.RWMutex
	users []record
}

// New opens the store at path, loading any existing records.
// A missing or unreadable file yields an empty store; the file is only
// created on the first successful write.
func New(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: store path is empty", domain.ErrInvalidInput)
	}
	db := &DB{path: path}
	db.users = db.load()
	return db, nil
}

// Migrate is a no-op; the file format carries no schema.
func (d *DB) Migrate(ctx context.Context) error {
	return nil
}

// Users returns the repository view of the store.
func (d *DB) Users() domain.UserRepository {
	return NewUserRepository(d)
}

// Close releases nothing; it exists to satisfy domain.Database.
func (d *DB) Close() error {
	return nil
}

// Path returns the backing file path.
func (d *DB) Path() string {
	return d.path
}

// Len returns the number of stored records.
func (d *DB) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users)
}

func (d *DB) load() []record {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("read users file, starting empty", "path", d.path, "error", err)
		}
		return nil
	}

	var users []record
	if err := json.Unmarshal(data, &users); err != nil {
		slog.Warn("decode users file, starting empty", "path", d.path, "error", err)
		return nil
	}
	return users
}

// write persists users atomically. Callers must hold d.mu for writing.
func (d *DB) write(users []record) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}

	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(d.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, d.path); err != nil {
		return fmt.Errorf("replace users file: %w", err)
	}
	return nil
}

// UserRepository implements domain.UserRepository on top of DB.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a repository backed by db.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	user.Email = domain.NormalizeEmail(user.Email)

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if indexByEmail(r.db.users, user.Email) >= 0 {
		return domain.ErrDuplicateEmail
	}

	next := append(slices.Clip(r.db.users), toRecord(user))
	if err := r.db.write(next); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	r.db.users = next
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, rec := range r.db.users {
		if rec.ID == id {
			return rec.toUser(), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	if i := indexByEmail(r.db.users, domain.NormalizeEmail(email)); i >= 0 {
		return r.db.users[i].toUser(), nil
	}
	return nil, domain.ErrNotFound
}

// indexByEmail returns the first record whose email matches, or -1.
func indexByEmail(users []record, normalized string) int {
	return slices.IndexFunc(users, func(rec record) bool {
		return domain.NormalizeEmail(rec.Email) == normalized
	})
}

func toRecord(u *domain.User) record {
	return record{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.PasswordHash,
		CreatedAt: u.CreatedAt.UTC(),
	}
}

func (rec record) toUser() *domain.User {
	return &domain.User{
		ID:           rec.ID,
		Name:         rec.Name,
		Email:        rec.Email,
		PasswordHash: rec.Password,
		CreatedAt:    rec.CreatedAt,
	}
}
