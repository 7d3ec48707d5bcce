package database_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/JaimeStill/tariff/pkg/database"
)

func testConfig() database.Config {
	return database.Config{
		Host:            "localhost",
		Port:            5432,
		Name:            "tariff",
		User:            "tariff",
		SSLMode:         "disable",
		MaxOpenConns:    42,
		MaxIdleConns:    7,
		ConnMaxLifetime: "10m",
		ConnTimeout:     "3s",
	}
}

func TestNewSetsPoolParams(t *testing.T) {
	cfg := testConfig()
	sys, err := database.New(&cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	conn := sys.Connection()
	defer conn.Close()

	if got := conn.Stats().MaxOpenConnections; got != 42 {
		t.Errorf("MaxOpenConnections = %d, want 42", got)
	}
}

func TestNotReadyBeforeStart(t *testing.T) {
	cfg := testConfig()
	sys, err := database.New(&cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer sys.Connection().Close()

	if sys.Ready() {
		t.Error("Ready() should be false before Start")
	}
	if err := sys.Check(); !errors.Is(err, database.ErrNotReady) {
		t.Errorf("Check() = %v, want ErrNotReady", err)
	}
}
