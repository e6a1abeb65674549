package sqlstore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klu2500030136/lptd-app/core"
)

func newMockStore(t *testing.T, driver string) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return New(sqlx.NewDb(mockDB, driver)), mock
}

func TestStore_Migrate(t *testing.T) {
	s, mock := newMockStore(t, "sqlite3")
	mock.ExpectExec(createTableQuery).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.NoError(t, s.Migrate(context.Background()))
}

func TestStore_Get(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		query   string
		rows    *sqlmock.Rows
		err     error
		want    []byte
		wantErr error
	}{
		{
			name:   "sqlite3 found",
			driver: "sqlite3",
			query:  `SELECT value FROM kv_pairs WHERE name = ?`,
			rows:   sqlmock.NewRows([]string{"value"}).AddRow(`[{"id":1}]`),
			want:   []byte(`[{"id":1}]`),
		},
		{
			name:   "postgres found",
			driver: "postgres",
			query:  `SELECT value FROM kv_pairs WHERE name = $1`,
			rows:   sqlmock.NewRows([]string{"value"}).AddRow(`[]`),
			want:   []byte(`[]`),
		},
		{
			name:    "missing",
			driver:  "sqlite3",
			query:   `SELECT value FROM kv_pairs WHERE name = ?`,
			rows:    sqlmock.NewRows([]string{"value"}),
			wantErr: core.ErrKeyNotFound,
		},
		{
			name:    "db error",
			driver:  "postgres",
			query:   `SELECT value FROM kv_pairs WHERE name = $1`,
			err:     sql.ErrConnDone,
			wantErr: sql.ErrConnDone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t, tt.driver)
			exp := mock.ExpectQuery(tt.query).WithArgs("users")
			if tt.err != nil {
				exp.WillReturnError(tt.err)
			} else {
				exp.WillReturnRows(tt.rows)
			}

			got, err := s.Get(context.Background(), "users")
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_Set(t *testing.T) {
	s, mock := newMockStore(t, "postgres")
	mock.ExpectExec(`INSERT INTO kv_pairs (name, value) VALUES ($1, $2) ON CONFLICT (name) DO UPDATE SET value = excluded.value`).
		WithArgs("marks", `[]`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, s.Set(context.Background(), "marks", []byte(`[]`)))
}

func TestStore_Delete(t *testing.T) {
	s, mock := newMockStore(t, "sqlite3")
	mock.ExpectExec(`DELETE FROM kv_pairs WHERE name = ?`).
		WithArgs("currentUser").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.NoError(t, s.Delete(context.Background(), "currentUser"))

	mock.ExpectExec(`DELETE FROM kv_pairs WHERE name = ?`).
		WithArgs("currentUser").
		WillReturnError(sql.ErrConnDone)
	assert.Error(t, s.Delete(context.Background(), "currentUser"))
}
