package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/akmonengine/probe/collision"
	"github.com/akmonengine/probe/filter"
	log "github.com/sirupsen/logrus"
)

func TestSaveDefaultAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.toml")

	if err := SaveDefault(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := SaveDefault(path); err == nil {
		t.Error("expected an error when the file exists")
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != DefaultSettings() {
		t.Errorf("expected the default settings, got %+v", s)
	}
}

func TestLoadPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.toml")
	data := "[Query]\nOverlapDedupThreshold = 10\nDefaultChannel = \"Pawn\"\n\n[Log]\nLevel = \"debug\"\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Query.OverlapDedupThreshold != 10 {
		t.Errorf("expected threshold 10, got %d", s.Query.OverlapDedupThreshold)
	}
	if s.MTD.MaxJitterAttempts != collision.DefaultMaxJitterAttempts {
		t.Errorf("expected missing keys to keep defaults, got %d", s.MTD.MaxJitterAttempts)
	}

	cfg, err := s.CollisionConfig(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DefaultChannel != filter.Pawn || cfg.OverlapDedupThreshold() != 10 {
		t.Errorf("unexpected config %+v", cfg)
	}

	level, err := s.LogLevel()
	if err != nil || level != log.DebugLevel {
		t.Errorf("expected debug level, got %v (%v)", level, err)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected an error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "broken.toml")
	os.WriteFile(path, []byte("[Query\n"), 0644)
	if _, err := Load(path); err == nil {
		t.Error("expected a decoding error")
	}

	s := DefaultSettings()
	s.Query.DefaultChannel = "Nothing"
	if _, err := s.CollisionConfig(nil); err == nil {
		t.Error("expected an unknown channel error")
	}
}
