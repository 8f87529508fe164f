package migrations

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"battle-analytics/internal/storage/postgres"
)

func TestStatements(t *testing.T) {
	input := `
-- header comment; not a statement
CREATE TABLE a (x UInt8) ENGINE = Memory;

INSERT INTO a VALUES ('x;y'), ('it''s; fine'); -- trailing; comment
`
	stmts := Statements(input)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (x UInt8) ENGINE = Memory", stmts[0])
	assert.Equal(t, "INSERT INTO a VALUES ('x;y'), ('it''s; fine')", stmts[1])
}

func TestStatements_Empty(t *testing.T) {
	assert.Empty(t, Statements("-- nothing here\n\n;;"))
}

func TestLoad_OrdersByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"db/010_later.sql":  {Data: []byte("SELECT 10")},
		"db/002_second.sql": {Data: []byte("SELECT 2")},
		"db/001_first.sql":  {Data: []byte("SELECT 1")},
		"db/README.md":      {Data: []byte("ignored")},
	}

	ms, err := load(fsys, "db")
	require.NoError(t, err)
	require.Len(t, ms, 3)
	assert.Equal(t, []int{1, 2, 10}, []int{ms[0].Version, ms[1].Version, ms[2].Version})
	assert.Equal(t, "first", ms[0].Name)
	assert.Equal(t, "SELECT 10", ms[2].SQL)
}

func TestLoad_RejectsBadNames(t *testing.T) {
	tests := map[string]fstest.MapFS{
		"no version":   {"db/markets.sql": {Data: []byte("x")}},
		"zero version": {"db/000_markets.sql": {Data: []byte("x")}},
		"missing name": {"db/001_.sql": {Data: []byte("x")}},
		"duplicate":    {"db/001_a.sql": {Data: []byte("x")}, "db/1_b.sql": {Data: []byte("y")}},
	}
	for name, fsys := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := load(fsys, "db")
			assert.Error(t, err)
		})
	}
}

func TestPending(t *testing.T) {
	all := []Migration{{Version: 1, Name: "a"}, {Version: 2, Name: "b"}, {Version: 3, Name: "c"}}
	got := pending(all, map[int]bool{2: true})
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "c", got[1].Name)
}

func TestEmbeddedMigrations(t *testing.T) {
	pg, err := Postgres()
	require.NoError(t, err)
	require.NotEmpty(t, pg)
	assert.Equal(t, 1, pg[0].Version)
	assert.Equal(t, "markets", pg[0].Name)

	ch, err := Clickhouse()
	require.NoError(t, err)
	require.Len(t, ch, 1)
	assert.Equal(t, "native_transfers", ch[0].Name)
	assert.Len(t, Statements(ch[0].SQL), 1)
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://default@localhost:9000/battles")
	require.NoError(t, err)
	assert.Equal(t, "battles", db)

	_, err = databaseFromDSN("clickhouse://localhost:9000")
	assert.Error(t, err)
}

func TestRunPostgresMigrations_AppliesOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	pool, err := postgres.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	names, err := RunPostgresMigrations(ctx, pool)
	require.NoError(t, err)
	assert.Equal(t, []string{"markets"}, names)

	names, err = RunPostgresMigrations(ctx, pool)
	require.NoError(t, err)
	assert.Empty(t, names, "second run applies nothing")

	var count int
	require.NoError(t, pool.QueryRow(ctx, "SELECT count(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)

	var exists bool
	require.NoError(t, pool.QueryRow(ctx, "SELECT to_regclass('markets') IS NOT NULL").Scan(&exists))
	assert.True(t, exists)
}
