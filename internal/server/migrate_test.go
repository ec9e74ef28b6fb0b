package server

import "testing"

func TestMigrateRequiresDSN(t *testing.T) {
	t.Parallel()
	if err := Migrate("file://migrations", "", "up", 0); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}
