package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PASSWORD", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("SHUTDOWN_TIMEOUT", "")
	c := Load()
	if c.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr default")
	}
	if c.DatabaseURL != "" {
		t.Fatalf("DatabaseURL default")
	}
	if c.Password != "1234" {
		t.Fatalf("Password default")
	}
	if len(c.AllowedOrigins) != 1 || c.AllowedOrigins[0] != "*" {
		t.Fatalf("AllowedOrigins default: %v", c.AllowedOrigins)
	}
	if c.ShutdownTimeout != 15*time.Second {
		t.Fatalf("ShutdownTimeout default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/inventory")
	t.Setenv("PASSWORD", "hunter2")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SHUTDOWN_TIMEOUT", "2")
	c := Load()
	if c.HTTPAddr != ":9090" {
		t.Fatalf("HTTPAddr env")
	}
	if c.DatabaseURL != "postgres://localhost/inventory" {
		t.Fatalf("DatabaseURL env")
	}
	if c.Password != "hunter2" {
		t.Fatalf("Password env")
	}
	if len(c.AllowedOrigins) != 2 || c.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("AllowedOrigins env: %v", c.AllowedOrigins)
	}
	if c.ShutdownTimeout != 2*time.Second {
		t.Fatalf("ShutdownTimeout env")
	}
}
