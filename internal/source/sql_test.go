package source

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name     string
		spec     Spec
		expected string
		wantErr  error
	}{
		{
			name:     "query wins",
			spec:     Spec{Table: "members", Query: "  SELECT id FROM members  "},
			expected: "SELECT id FROM members",
		},
		{
			name:     "table",
			spec:     Spec{Table: "members"},
			expected: `SELECT * FROM "members"`,
		},
		{
			name:     "schema qualified with limit",
			spec:     Spec{Table: "public.members", Limit: 50},
			expected: `SELECT * FROM "public"."members" LIMIT 50`,
		},
		{
			name:     "quotes escaped",
			spec:     Spec{Table: `we"ird`},
			expected: `SELECT * FROM "we""ird"`,
		},
		{
			name:    "nothing to read",
			spec:    Spec{},
			wantErr: ErrNoTable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildQuery(tt.spec)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestQueryRows(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		expectErr string
		rows      int
	}{
		{
			name: "rows in result order",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"name", "id", "avatar"}).
					AddRow("alice", int64(1), []byte("a.png")).
					AddRow("bob", int64(2), nil)
				mock.ExpectQuery("SELECT").WillReturnRows(rows)
			},
			rows: 2,
		},
		{
			name: "query error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)
			},
			expectErr: "query failed",
		},
		{
			name: "row error",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id"}).
					AddRow(int64(1)).
					RowError(0, assert.AnError)
				mock.ExpectQuery("SELECT").WillReturnRows(rows)
			},
			expectErr: "error iterating rows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			tt.setupMock(mock)

			ds, err := QueryRows(context.Background(), db, "SELECT * FROM members")
			if tt.expectErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, ds.Rows, tt.rows)

			require.Len(t, ds.Columns, 3)
			assert.Equal(t, "name", ds.Columns[0].Key)
			assert.Equal(t, "Avatar", ds.Columns[2].Header)

			assert.Equal(t, "alice", ds.Rows[0]["name"])
			assert.Equal(t, int64(1), ds.Rows[0]["id"])
			assert.Equal(t, "a.png", ds.Rows[0]["avatar"])
			assert.Nil(t, ds.Rows[1]["avatar"])
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLoad_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "members.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE members (id INTEGER PRIMARY KEY, name TEXT, role TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO members (id, name, role) VALUES (1, 'Ada', 'admin'), (2, 'Grace', 'viewer'), (3, 'Linus', 'viewer')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	ctx := context.Background()

	ds, err := Load(ctx, Spec{Path: path, Table: "members"})
	require.NoError(t, err)
	require.Len(t, ds.Rows, 3)
	assert.Equal(t, []string{"id", "name", "role"}, []string{ds.Columns[0].Key, ds.Columns[1].Key, ds.Columns[2].Key})
	assert.EqualValues(t, 1, ds.Rows[0]["id"])
	assert.Equal(t, "Ada", ds.Rows[0]["name"])

	ds, err = Load(ctx, Spec{Path: path, Table: "members", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, ds.Rows, 2)

	ds, err = Load(ctx, Spec{Path: path, Query: "SELECT name FROM members WHERE role = 'viewer' ORDER BY name"})
	require.NoError(t, err)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "Grace", ds.Rows[0]["name"])
}
