package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/Paintersrp/retag/internal/bulk"
	"github.com/Paintersrp/retag/internal/config"
)

func TestSessionOpensOnce(t *testing.T) {
	calls := 0
	s := &Session{open: func() (*State, error) {
		calls++
		return &State{}, nil
	}}

	a, err := s.Open()
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	b, _ := s.Open()
	if calls != 1 || a != b {
		t.Fatalf("expected a single open, got %d calls", calls)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func TestCloseWithoutOpen(t *testing.T) {
	if err := NewSession().Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func TestNewStateReadsSettings(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	home := t.TempDir()
	vaultDir := t.TempDir()
	t.Setenv("HOME", home)

	path := config.GetConfigPath(home)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	data := "vaultdir: " + vaultDir + "\nworkers: 3\nstamp_updated: true\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	st, err := NewState()
	if err != nil {
		t.Fatalf("NewState returned error: %v", err)
	}
	defer st.Close()

	if st.Vault != vaultDir || st.Store.Root() != vaultDir {
		t.Fatalf("vault = %q (store %q), want %q", st.Vault, st.Store.Root(), vaultDir)
	}

	want := bulk.Options{AutoRefresh: true, StampUpdated: true, Workers: 3}
	got := st.BulkOptions()
	if got.AutoRefresh != want.AutoRefresh || got.StampUpdated != want.StampUpdated || got.Workers != want.Workers {
		t.Fatalf("BulkOptions = %+v, want %+v", got, want)
	}
}

func TestNewStateRequiresVault(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("HOME", t.TempDir())

	if _, err := NewState(); err == nil {
		t.Fatal("expected error without a vault directory")
	}
}
