package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/securemath/securemath-api/internal/models"
)

func newDeviceRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestDeviceRepositoryExists(t *testing.T) {
	db, mock, cleanup := newDeviceRepoMock(t)
	defer cleanup()

	repo := NewDeviceRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM registered_devices")).
		WithArgs("stu1", "hash1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.Exists(context.Background(), "stu1", "hash1")
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeviceRepositoryRegisterUnderLimit(t *testing.T) {
	db, mock, cleanup := newDeviceRepoMock(t)
	defer cleanup()

	repo := NewDeviceRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock")).
		WithArgs("stu1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM registered_devices")).
		WithArgs("stu1", "hash1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM registered_devices")).
		WithArgs("stu1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO registered_devices")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	admitted, err := repo.RegisterIfUnderLimit(context.Background(), &models.RegisteredDevice{
		StudentID:       "stu1",
		FingerprintHash: "hash1",
	}, 2)
	require.NoError(t, err)
	require.True(t, admitted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeviceRepositoryRegisterAtLimit(t *testing.T) {
	db, mock, cleanup := newDeviceRepoMock(t)
	defer cleanup()

	repo := NewDeviceRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock")).
		WithArgs("stu1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM registered_devices")).
		WithArgs("stu1", "hash3").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM registered_devices")).
		WithArgs("stu1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectCommit()

	admitted, err := repo.RegisterIfUnderLimit(context.Background(), &models.RegisteredDevice{
		StudentID:       "stu1",
		FingerprintHash: "hash3",
	}, 2)
	require.NoError(t, err)
	require.False(t, admitted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeviceRepositoryRegisterLostRace(t *testing.T) {
	db, mock, cleanup := newDeviceRepoMock(t)
	defer cleanup()

	repo := NewDeviceRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock")).
		WithArgs("stu1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	// An identical fingerprint won the lock first; the device is registered.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM registered_devices")).
		WithArgs("stu1", "hash1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectCommit()

	admitted, err := repo.RegisterIfUnderLimit(context.Background(), &models.RegisteredDevice{
		StudentID:       "stu1",
		FingerprintHash: "hash1",
	}, 2)
	require.NoError(t, err)
	require.True(t, admitted)
	require.NoError(t, mock.ExpectationsWereMet())
}
