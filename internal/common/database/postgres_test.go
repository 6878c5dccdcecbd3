package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresClient_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	client := &PostgresClient{DB: db}

	mock.ExpectPing()
	require.NoError(t, client.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	err = client.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres ping failed")

	mock.ExpectClose()
	require.NoError(t, client.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteClient_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	client := &SQLiteClient{DB: db}

	mock.ExpectPing().WillReturnError(errors.New("database is locked"))
	err = client.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite ping failed")

	mock.ExpectClose()
	require.NoError(t, client.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewSQLite_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "board.db")

	client, err := NewSQLite(context.Background(), path)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.DB.Exec(`CREATE TABLE probe (id TEXT PRIMARY KEY)`)
	require.NoError(t, err)
	assert.FileExists(t, path)
}
