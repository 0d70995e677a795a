package cmd

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bitelog/bite/internal/db"
	"github.com/bitelog/bite/internal/identity"
	"github.com/bitelog/bite/internal/model"
	"github.com/bitelog/bite/internal/repository"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func TestParseCmd(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantKind     string
		wantAccepted bool
	}{
		{
			name:         "fenced",
			input:        "Вот ответ:\n```json\n{\"food_name\":\"Банан\",\"calories\":105,\"confidence\":\"high\"}\n```",
			wantKind:     "ok",
			wantAccepted: true,
		},
		{
			name:         "prose",
			input:        "Looks like a banana",
			wantKind:     "fallback",
			wantAccepted: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ParseCmd()
			var out bytes.Buffer
			c.SetIn(strings.NewReader(tt.input))
			c.SetOut(&out)
			c.SetArgs([]string{})

			if err := c.Execute(); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}

			var got parseOutput
			if err := json.Unmarshal(out.Bytes(), &got); err != nil {
				t.Fatalf("output is not JSON: %v", err)
			}
			if got.Kind != tt.wantKind || got.Accepted != tt.wantAccepted {
				t.Errorf("got %+v", got)
			}
		})
	}
}

func TestCompressCmd(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.jpg")

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for x := range 32 {
		for y := range 32 {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(in, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	c := CompressCmd()
	c.SetOut(&bytes.Buffer{})
	c.SetArgs([]string{in, out})
	if err := c.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Error("output is not a JPEG")
	}
}

func TestTokenCmd(t *testing.T) {
	c := TokenCmd()
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetArgs([]string{"user-42", "--secret", "s3cret"})
	if err := c.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	user, err := identity.NewJWTProvider("s3cret").User(t.Context(), strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("issued token rejected: %v", err)
	}
	if user.ID != "user-42" {
		t.Errorf("ID = %q", user.ID)
	}
}

func TestTokenCmdNeedsSecret(t *testing.T) {
	c := TokenCmd()
	c.SetOut(&bytes.Buffer{})
	c.SetErr(&bytes.Buffer{})
	c.SetArgs([]string{"user-42"})
	if err := c.Execute(); err == nil {
		t.Error("Execute() expected error without --secret")
	}
}

func run(t *testing.T, c *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&bytes.Buffer{})
	c.SetArgs(args)
	err := c.Execute()
	return out.String(), err
}

func TestMigrateAndLogCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bite.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_CONNECTION", path)

	if _, err := run(t, MigrateCmd(), "up"); err != nil {
		t.Fatalf("migrate up error = %v", err)
	}

	conn, err := db.Init("sqlite", path)
	if err != nil {
		t.Fatalf("db.Init() error = %v", err)
	}
	repo := repository.NewEatenProductRepository(conn)
	value, kcal := int64(118), int64(105)
	for _, p := range []*model.EatenProduct{
		{UserID: "user-1", Name: "Банан", Value: &value, Unit: model.UnitGrams, Kcalories: &kcal, Date: "2024-03-10", ImageURL: "https://cdn/u/1.jpg", CreatedAt: time.Now().UTC()},
		{UserID: "user-1", Name: "Чай", Unit: model.UnitGrams, Date: "2024-03-11", ImageURL: "https://cdn/u/2.jpg", CreatedAt: time.Now().UTC()},
		{UserID: "user-2", Name: "Суп", Unit: model.UnitGrams, Date: "2024-03-10", ImageURL: "https://cdn/u/3.jpg", CreatedAt: time.Now().UTC()},
	} {
		if _, err := repo.Create(context.Background(), p); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	_ = conn.Close()

	out, err := run(t, LogCmd(), "user-1", "--date", "2024-03-10")
	if err != nil {
		t.Fatalf("log error = %v", err)
	}
	for _, want := range []string{"NAME", "Банан", "118г", "105", "https://cdn/u/1.jpg"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	for _, unwanted := range []string{"Чай", "Суп"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("log output contains %q from another day or user:\n%s", unwanted, out)
		}
	}

	if _, err := run(t, LogCmd(), "user-1", "--date", "10.03.2024"); err == nil {
		t.Error("log accepted a malformed date")
	}

	if _, err := run(t, MigrateCmd(), "down"); err != nil {
		t.Fatalf("migrate down error = %v", err)
	}
	if _, err := run(t, LogCmd(), "user-1", "--date", "2024-03-10"); err == nil {
		t.Error("log succeeded after the table was dropped")
	}
}
