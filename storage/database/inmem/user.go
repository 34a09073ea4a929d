package inmemdb

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/avaliacao/core"
	"github.com/trezcool/avaliacao/core/user"
)

type userTable struct {
	mutex sync.RWMutex
	table map[string]*user.User
}

// DB is a process-local store for users, used where no SQL database is wanted.
type DB struct {
	user *userTable
}

func New() *DB {
	return &DB{user: &userTable{table: make(map[string]*user.User)}}
}

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) find(pred func(u *user.User) bool) (*user.User, bool) {
	for _, u := range repo.db.table {
		if pred(u) {
			return u, true
		}
	}
	return nil, false
}

func (repo *userRepository) CheckEmailUniqueness(_ context.Context, email string, _ ...core.DBExecutor) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if _, ok := repo.find(func(u *user.User) bool { return u.Email == email }); ok {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User, _ ...core.DBExecutor) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr.ID = uuid.New().String()
	repo.db.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string, _ ...core.DBExecutor) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if usr, ok := repo.db.table[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string, _ ...core.DBExecutor) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if usr, ok := repo.find(func(u *user.User) bool { return u.Email == email }); ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdatePassword(_ context.Context, id string, hash []byte, updatedAt time.Time, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr, ok := repo.db.table[id]
	if !ok {
		return user.ErrNotFound
	}
	usr.PasswordHash = hash
	usr.UpdatedAt = updatedAt
	return nil
}

func (repo *userRepository) UpdateLastLogin(_ context.Context, id string, lastLogin time.Time, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr, ok := repo.db.table[id]
	if !ok {
		return user.ErrNotFound
	}
	usr.LastLogin = lastLogin
	return nil
}

// SetUserActive toggles an account. There is no API for it, tests use it to deactivate users.
func (db *DB) SetUserActive(id string, active bool) {
	db.user.mutex.Lock()
	defer db.user.mutex.Unlock()

	if usr, ok := db.user.table[id]; ok {
		usr.IsActive = active
	}
}
