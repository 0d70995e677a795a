package db

import (
	"context"
	"testing"
)

func TestInitAndMigrateInMemory(t *testing.T) {
	conn, err := Init("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { Close(conn) })

	ctx := context.Background()
	if err := RunMigrations(ctx, conn.DB, "sqlite"); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	var count int
	err = conn.Get(&count, "SELECT COUNT(*) FROM eaten_products")
	if err != nil {
		t.Fatalf("eaten_products not created: %v", err)
	}

	if err := MigrateDown(ctx, conn.DB, "sqlite"); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}
	if err := conn.Get(&count, "SELECT COUNT(*) FROM eaten_products"); err == nil {
		t.Error("eaten_products still exists after MigrateDown()")
	}
}

func TestRunMigrationsUnknownDriver(t *testing.T) {
	conn, err := Init("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { Close(conn) })

	if err := RunMigrations(context.Background(), conn.DB, "mysql"); err == nil {
		t.Error("RunMigrations() expected error for driver without migrations")
	}
}
