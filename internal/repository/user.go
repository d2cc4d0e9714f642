package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/taskmanager/taskmanager-go/internal/model"
)

// mysqlDuplicateEntry is the MySQL error number for a unique key violation.
const mysqlDuplicateEntry = 1062

const userColumns = `id, name, email, password_hash, age, created_at, updated_at`

// MySQLUserRepository handles user persistence on MySQL. Session tokens live
// in the user_tokens table.
type MySQLUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new MySQLUserRepository.
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

// Create inserts a new user and sets the generated ID and timestamps on it.
func (r *MySQLUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, name, email, password_hash, age, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`

	id := uuid.NewString()
	ts := now()
	_, err := r.db.ExecContext(ctx, query, id, user.Name, user.Email, user.PasswordHash, user.Age, ts, ts)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	user.ID = id
	user.CreatedAt = ts
	user.UpdatedAt = ts
	return nil
}

// GetByID retrieves a user by ID.
func (r *MySQLUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.getOne(ctx, query, id)
}

// GetByEmail retrieves a user by email address.
func (r *MySQLUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return r.getOne(ctx, query, email)
}

// GetByToken retrieves a user by ID, provided token is one of its active sessions.
func (r *MySQLUserRepository) GetByToken(ctx context.Context, id, token string) (*model.User, error) {
	query := `SELECT u.id, u.name, u.email, u.password_hash, u.age, u.created_at, u.updated_at
		FROM users u JOIN user_tokens t ON t.user_id = u.id
		WHERE u.id = ? AND t.token = ? LIMIT 1`
	return r.getOne(ctx, query, id, token)
}

// Update writes the mutable profile fields of user.
func (r *MySQLUserRepository) Update(ctx context.Context, user *model.User) error {
	query := `UPDATE users SET name = ?, email = ?, password_hash = ?, age = ?, updated_at = ? WHERE id = ?`

	ts := now()
	result, err := r.db.ExecContext(ctx, query, user.Name, user.Email, user.PasswordHash, user.Age, ts, user.ID)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("updating user: %w", err)
	}
	if err := expectAffected(result, ErrUserNotFound); err != nil {
		return err
	}

	user.UpdatedAt = ts
	return nil
}

// Delete removes a user and its session tokens in one transaction.
func (r *MySQLUserRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_tokens WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("deleting tokens: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if err := expectAffected(result, ErrUserNotFound); err != nil {
		return err
	}

	return tx.Commit()
}

// AddToken records token as an active session of the user.
func (r *MySQLUserRepository) AddToken(ctx context.Context, id, token string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO user_tokens (user_id, token) VALUES (?, ?)`, id, token)
	if err != nil {
		if isForeignKeyError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("inserting token: %w", err)
	}
	return nil
}

// RemoveToken revokes a single session.
func (r *MySQLUserRepository) RemoveToken(ctx context.Context, id, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE user_id = ? AND token = ?`, id, token)
	if err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	return nil
}

// ClearTokens revokes every session of the user.
func (r *MySQLUserRepository) ClearTokens(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE user_id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting tokens: %w", err)
	}
	return nil
}

// SetAvatar stores or, with nil data, clears the user's avatar.
func (r *MySQLUserRepository) SetAvatar(ctx context.Context, id string, data []byte) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET avatar = ?, updated_at = ? WHERE id = ?`, data, now(), id)
	if err != nil {
		return fmt.Errorf("updating avatar: %w", err)
	}
	return expectAffected(result, ErrUserNotFound)
}

// GetAvatar returns the stored avatar bytes.
func (r *MySQLUserRepository) GetAvatar(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT avatar FROM users WHERE id = ?`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("selecting avatar: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrAvatarNotFound
	}
	return data, nil
}

func (r *MySQLUserRepository) getOne(ctx context.Context, query string, args ...any) (*model.User, error) {
	user := &model.User{}
	var age sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &age, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("selecting user: %w", err)
	}

	if age.Valid {
		v := int(age.Int64)
		user.Age = &v
	}
	return user, nil
}

// expectAffected maps "no row matched" to notFound.
func expectAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func isDuplicateEntryError(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

// isForeignKeyError reports a child row insert whose parent does not exist (1452).
func isForeignKeyError(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1452
}
