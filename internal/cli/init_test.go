package cli

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"go.uber.org/goleak"

	"churchledger/internal/log"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("os/signal.signal_recv"))
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("CHURCHLEDGER_TEST_KEY=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHURCHLEDGER_TEST_KEY", "")
	os.Unsetenv("CHURCHLEDGER_TEST_KEY")

	LoadEnvFile(path)
	if got := os.Getenv("CHURCHLEDGER_TEST_KEY"); got != "from-dotenv" {
		t.Errorf("CHURCHLEDGER_TEST_KEY = %q", got)
	}

	// Missing files are ignored.
	LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoadAndValidateConfig_CollectsErrors(t *testing.T) {
	t.Setenv("SECRET_KEY", "")
	t.Setenv("PORT", "not-a-port")

	if _, err := LoadAndValidateConfig(log.Discard()); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestOpenStore(t *testing.T) {
	t.Setenv("SECRET_KEY", "test")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "db", "church.db"))

	cfg, err := LoadAndValidateConfig(log.Discard())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	store, err := OpenStore(context.Background(), log.Discard(), cfg)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestGracefulShutdown_Signal(t *testing.T) {
	ctx, cancel := GracefulShutdown(context.Background(), log.Discard())
	defer cancel()

	if err := syscall.Kill(os.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("kill: %v", err)
	}
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled after SIGTERM")
	}
}

func TestGracefulShutdown_CancelReleasesHandler(t *testing.T) {
	ctx, cancel := GracefulShutdown(context.Background(), log.Discard())
	cancel()
	<-ctx.Done()
}
