package boiledrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/trezcool/avaliacao/core"
	"github.com/trezcool/avaliacao/core/user"
)

const userColumns = `id, name, email, is_active, password_hash, created_at, updated_at, last_login`

// userRow is the app_user table as bound by sqlboiler.
type userRow struct {
	ID           string     `boil:"id"`
	Name         string     `boil:"name"`
	Email        string     `boil:"email"`
	IsActive     bool       `boil:"is_active"`
	PasswordHash null.Bytes `boil:"password_hash"`
	CreatedAt    time.Time  `boil:"created_at"`
	UpdatedAt    time.Time  `boil:"updated_at"`
	LastLogin    null.Time  `boil:"last_login"`
}

type userRepository struct {
	exec     core.DBExecutor
	bindType int
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{exec: db, bindType: sqlx.BindType(db.DriverName())}
}

func (repo userRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

// raw builds a sqlboiler query from a statement written with "?" placeholders.
func (repo userRepository) raw(query string, args ...interface{}) *queries.Query {
	return queries.Raw(sqlx.Rebind(repo.bindType, query), args...)
}

func (repo userRepository) boil(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Name:         usr.Name,
		Email:        usr.Email,
		IsActive:     usr.IsActive,
		PasswordHash: null.BytesFrom(usr.PasswordHash),
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (repo userRepository) unboil(row userRow) user.User {
	return user.User{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		IsActive:     row.IsActive,
		PasswordHash: row.PasswordHash.Bytes,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
		LastLogin:    row.LastLogin.Time.UTC(),
	}
}

// trapNoRowsErr maps "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) getUser(ctx context.Context, exec []core.DBExecutor, where string, arg interface{}) (user.User, error) {
	var row userRow
	err := repo.raw(`SELECT `+userColumns+` FROM app_user WHERE `+where+` = ?`, arg).
		Bind(ctx, repo.getExec(exec), &row)
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "selecting user")
	}
	return repo.unboil(row), nil
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, exec ...core.DBExecutor) error {
	var n int
	err := repo.raw(`SELECT COUNT(*) FROM app_user WHERE email = ?`, email).
		QueryRowContext(ctx, repo.getExec(exec)).
		Scan(&n)
	if err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if n > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	usr.ID = uuid.New().String()
	row := repo.boil(usr)
	_, err := repo.raw(
		`INSERT INTO app_user (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.Name, row.Email, row.IsActive, row.PasswordHash, row.CreatedAt, row.UpdatedAt, row.LastLogin,
	).ExecContext(ctx, repo.getExec(exec))
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return repo.unboil(row), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string, exec ...core.DBExecutor) (user.User, error) {
	return repo.getUser(ctx, exec, "id", id)
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (user.User, error) {
	return repo.getUser(ctx, exec, "email", email)
}

func (repo userRepository) update(ctx context.Context, exec []core.DBExecutor, query string, args ...interface{}) error {
	res, err := repo.raw(query, args...).ExecContext(ctx, repo.getExec(exec))
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo userRepository) UpdatePassword(ctx context.Context, id string, hash []byte, updatedAt time.Time, exec ...core.DBExecutor) error {
	return repo.update(ctx, exec,
		`UPDATE app_user SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, updatedAt.UTC(), id,
	)
}

func (repo userRepository) UpdateLastLogin(ctx context.Context, id string, lastLogin time.Time, exec ...core.DBExecutor) error {
	return repo.update(ctx, exec,
		`UPDATE app_user SET last_login = ? WHERE id = ?`,
		lastLogin.UTC(), id,
	)
}
