//go:build integration

package testhelpers

import (
	"context"
	"testing"
)

func TestTestDB_MigratedSchema(t *testing.T) {
	testDB := GetTestDB(t)

	ctx := context.Background()

	// Every table the migrations create must exist.
	tables := []string{"users", "teams", "team_members", "projects", "comments", "user_follows"}
	for _, table := range tables {
		var exists bool
		err := testDB.DB.Pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1)",
			table).Scan(&exists)
		if err != nil {
			t.Fatalf("failed to check table %s: %v", table, err)
		}
		if !exists {
			t.Errorf("expected table %s after migrations", table)
		}
	}
}
