//go:build integration

package repository

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/bitelog/bite/internal/db"
	"github.com/bitelog/bite/internal/model"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func skipIfNoDocker(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}
}

func TestEatenProductPostgres(t *testing.T) {
	skipIfNoDocker(t)
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "bite",
				"POSTGRES_PASSWORD": "bite",
				"POSTGRES_DB":       "bite",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Host() error = %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("MappedPort() error = %v", err)
	}

	dsn := fmt.Sprintf("postgres://bite:bite@%s:%s/bite?sslmode=disable", host, port.Port())
	conn, err := db.Init("pgx", dsn)
	if err != nil {
		t.Fatalf("db.Init() error = %v", err)
	}
	t.Cleanup(func() { db.Close(conn) })

	if err := db.RunMigrations(ctx, conn.DB, "pgx"); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	repo := NewEatenProductRepository(conn)
	kcal := int64(250)
	id, err := repo.Create(ctx, &model.EatenProduct{
		UserID:    "pg-user",
		Name:      "Плов",
		Unit:      model.UnitGrams,
		Kcalories: &kcal,
		Date:      "2024-06-01",
		ImageURL:  "https://cdn.example.com/images/pg-user/photo-1.jpg",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.ByID(ctx, "pg-user", id)
	if err != nil {
		t.Fatalf("ByID() error = %v", err)
	}
	if got.Kcalories == nil || *got.Kcalories != 250 || got.Date != "2024-06-01" {
		t.Errorf("ByID() = %+v", got)
	}

	_, err = repo.Create(ctx, &model.EatenProduct{
		UserID: "pg-user", Name: "x", Unit: model.UnitGrams, Date: "01.06.2024",
		ImageURL: "https://cdn.example.com/x.jpg", CreatedAt: time.Now().UTC(),
	})
	if err == nil {
		t.Error("Create() accepted a malformed date")
	}
}
