package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskmanager/taskmanager-go/internal/model"
)

func newUserRepoWithMock(t *testing.T) (*MySQLUserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMySQLUserRepository(db), mock
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "age", "created_at", "updated_at"})
}

func TestMySQLUserCreate_Success(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	mock.ExpectExec(`^INSERT INTO users \(id, name, email, password_hash, age, created_at, updated_at\)`).
		WithArgs(sqlmock.AnyArg(), "Lucas", "lucas@example.com", "hash", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &model.User{Name: "Lucas", Email: "lucas@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), u))

	assert.Len(t, u.ID, 36)
	assert.False(t, u.CreatedAt.IsZero())
	assert.Equal(t, u.CreatedAt, u.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLUserCreate_DuplicateEmail(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	mock.ExpectExec(`^INSERT INTO users`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'lucas@example.com' for key 'uq_users_email'"})

	err := repo.Create(context.Background(), &model.User{Name: "Lucas", Email: "lucas@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestMySQLUserCreate_DBError(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	mock.ExpectExec(`^INSERT INTO users`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &model.User{Name: "Lucas", Email: "lucas@example.com"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateEmail)
	assert.Contains(t, err.Error(), "db down")
}

func TestMySQLUserGetByEmail(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM users WHERE email = \?`).
		WithArgs("lucas@example.com").
		WillReturnRows(userRows().AddRow("u-1", "Lucas", "lucas@example.com", "hash", int64(23), ts, ts))

	u, err := repo.GetByEmail(context.Background(), "lucas@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	require.NotNil(t, u.Age)
	assert.Equal(t, 23, *u.Age)

	mock.ExpectQuery(`FROM users WHERE email = \?`).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMySQLUserGetByID_NullAge(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	ts := time.Now().UTC()

	mock.ExpectQuery(`FROM users WHERE id = \?`).
		WithArgs("u-1").
		WillReturnRows(userRows().AddRow("u-1", "Lucas", "lucas@example.com", "hash", nil, ts, ts))

	u, err := repo.GetByID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Nil(t, u.Age)
}

func TestMySQLUserGetByToken(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	ts := time.Now().UTC()

	mock.ExpectQuery(`FROM users u JOIN user_tokens t ON t.user_id = u.id WHERE u.id = \? AND t.token = \?`).
		WithArgs("u-1", "tok").
		WillReturnRows(userRows().AddRow("u-1", "Lucas", "lucas@example.com", "hash", nil, ts, ts))

	u, err := repo.GetByToken(context.Background(), "u-1", "tok")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)

	mock.ExpectQuery(`JOIN user_tokens`).
		WithArgs("u-1", "revoked").
		WillReturnRows(userRows())

	_, err = repo.GetByToken(context.Background(), "u-1", "revoked")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMySQLUserUpdate(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	age := 30
	u := &model.User{ID: "u-1", Name: "New", Email: "new@example.com", PasswordHash: "hash", Age: &age}

	mock.ExpectExec(`^UPDATE users SET name = \?, email = \?, password_hash = \?, age = \?, updated_at = \? WHERE id = \?`).
		WithArgs("New", "new@example.com", "hash", 30, sqlmock.AnyArg(), "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), u))
	assert.False(t, u.UpdatedAt.IsZero())

	mock.ExpectExec(`^UPDATE users SET name`).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Update(context.Background(), u), ErrUserNotFound)

	mock.ExpectExec(`^UPDATE users SET name`).WillReturnError(&mysql.MySQLError{Number: 1062})
	assert.ErrorIs(t, repo.Update(context.Background(), u), ErrDuplicateEmail)
}

func TestMySQLUserDelete(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`^DELETE FROM user_tokens WHERE user_id = \?`).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`^DELETE FROM users WHERE id = \?`).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "u-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLUserDelete_NotFoundRollsBack(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`^DELETE FROM user_tokens`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`^DELETE FROM users`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.Delete(context.Background(), "ghost"), ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLUserTokens(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	ctx := context.Background()

	mock.ExpectExec(`^INSERT INTO user_tokens \(user_id, token\)`).WithArgs("u-1", "tok").WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.AddToken(ctx, "u-1", "tok"))

	mock.ExpectExec(`^INSERT INTO user_tokens`).WillReturnError(&mysql.MySQLError{Number: 1452})
	assert.ErrorIs(t, repo.AddToken(ctx, "ghost", "tok"), ErrUserNotFound)

	mock.ExpectExec(`^DELETE FROM user_tokens WHERE user_id = \? AND token = \?`).WithArgs("u-1", "tok").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.RemoveToken(ctx, "u-1", "tok"))

	mock.ExpectExec(`^DELETE FROM user_tokens WHERE user_id = \?$`).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 3))
	require.NoError(t, repo.ClearTokens(ctx, "u-1"))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLUserAvatar(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	ctx := context.Background()

	mock.ExpectExec(`^UPDATE users SET avatar = \?`).WithArgs([]byte("png"), sqlmock.AnyArg(), "u-1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetAvatar(ctx, "u-1", []byte("png")))

	mock.ExpectQuery(`^SELECT avatar FROM users WHERE id = \?`).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"avatar"}).AddRow([]byte("png")))
	data, err := repo.GetAvatar(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	mock.ExpectQuery(`^SELECT avatar FROM users`).WithArgs("u-2").
		WillReturnRows(sqlmock.NewRows([]string{"avatar"}).AddRow(nil))
	_, err = repo.GetAvatar(ctx, "u-2")
	assert.ErrorIs(t, err, ErrAvatarNotFound)

	mock.ExpectQuery(`^SELECT avatar FROM users`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)
	_, err = repo.GetAvatar(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestIsDuplicateEntryError(t *testing.T) {
	assert.False(t, isDuplicateEntryError(nil))
	assert.False(t, isDuplicateEntryError(ErrUserNotFound))
	assert.False(t, isDuplicateEntryError(&mysql.MySQLError{Number: 1452}))
	assert.True(t, isDuplicateEntryError(&mysql.MySQLError{Number: 1062}))
}
