package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"members/internal/members/codec"
	"members/internal/members/models"
	"members/pkg/platform/sentinel"
)

var columns = []string{"id", "name", "section", "phone_number", "email", "roles"}

func setupMockDB(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgres(db, nil), mock
}

func TestPostgresStore_CreateEncodesRoles(t *testing.T) {
	s, mock := setupMockDB(t)
	phone := "555-0100"

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO members (name, section, phone_number, email, roles)")).
		WithArgs("Ana", "Alto", phone, nil, "Singer,Council").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(1), "Ana", "Alto", phone, nil, "Singer,Council"))

	created, err := s.Create(context.Background(), models.Draft{
		Name:        "Ana",
		Section:     models.SectionAlto,
		PhoneNumber: &phone,
		Roles:       models.RoleSet{models.RoleCouncil, models.RoleSinger},
	})
	require.NoError(t, err)
	assert.Equal(t, models.MemberID(1), created.ID)
	assert.Equal(t, models.RoleSet{models.RoleSinger, models.RoleCouncil}, created.Roles)
	require.NotNil(t, created.PhoneNumber)
	assert.Equal(t, phone, *created.PhoneNumber)
	assert.Nil(t, created.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		s, mock := setupMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM members WHERE id = $1")).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(3), "Bo", "Bass", nil, "bo@example.com", ""))

		m, err := s.FindByID(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, "Bo", m.Name)
		assert.Empty(t, m.Roles)
		require.NotNil(t, m.Email)
		assert.Equal(t, "bo@example.com", *m.Email)
	})

	t.Run("missing row maps to not found", func(t *testing.T) {
		s, mock := setupMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM members WHERE id = $1")).
			WithArgs(int64(9)).
			WillReturnError(sql.ErrNoRows)

		_, err := s.FindByID(context.Background(), 9)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("unknown stored role is a format error", func(t *testing.T) {
		s, mock := setupMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM members WHERE id = $1")).
			WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(4), "Cy", "Tenor", nil, nil, "Singer,Drummer"))

		_, err := s.FindByID(context.Background(), 4)
		var fe *codec.FormatError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "Drummer", fe.Token)
	})

	t.Run("unknown stored section fails", func(t *testing.T) {
		s, mock := setupMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM members WHERE id = $1")).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(5), "Di", "Baritone", nil, nil, ""))

		_, err := s.FindByID(context.Background(), 5)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestPostgresStore_FindByRole(t *testing.T) {
	s, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE $1 = ANY(string_to_array(roles, ','))")).
		WithArgs("Council").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(2), "Bo", "Bass", nil, nil, "Singer,Council").
			AddRow(int64(3), "Cy", "Tenor", nil, nil, "Council"))

	members, err := s.FindByRole(context.Background(), models.RoleCouncil)
	require.NoError(t, err)
	require.Len(t, members, 2)
	for _, m := range members {
		assert.True(t, m.Roles.Contains(models.RoleCouncil))
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateReplacesEveryColumn(t *testing.T) {
	s, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE members")).
		WithArgs(int64(1), "Ana", "Soprano", nil, nil, "").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(1), "Ana", "Soprano", nil, nil, ""))

	updated, err := s.Update(context.Background(), 1, models.Draft{Name: "Ana", Section: models.SectionSoprano})
	require.NoError(t, err)
	assert.Empty(t, updated.Roles)
	assert.Equal(t, models.SectionSoprano, updated.Section)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateMissing(t *testing.T) {
	s, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE members")).
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := s.Update(context.Background(), 8, models.Draft{Name: "X", Section: models.SectionBass})
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPostgresStore_DeleteReturnsRemovedRow(t *testing.T) {
	s, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM members WHERE id = $1 RETURNING")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(1), "Ana", "Alto", nil, nil, "Singer"))

	deleted, err := s.Delete(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.MemberID(1), deleted.ID)
	assert.Equal(t, models.RoleSet{models.RoleSinger}, deleted.Roles)
}

func TestPostgresStore_DeleteUndecodableRow(t *testing.T) {
	s, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM members WHERE id = $1 RETURNING")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(7), "Ana", "Alto", nil, nil, "Singer,Janitor"))

	_, err := s.Delete(context.Background(), 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrCorrupt)
	assert.NotErrorIs(t, err, sentinel.ErrNotFound)
	var formatErr *codec.FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "Janitor", formatErr.Token)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DriverErrorsAreWrapped(t *testing.T) {
	s, mock := setupMockDB(t)
	driverErr := errors.New("connection refused")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name")).WillReturnError(driverErr)

	_, err := s.List(context.Background())
	assert.ErrorIs(t, err, driverErr)
	assert.Contains(t, err.Error(), "list members")
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS members")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Migrate(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}
