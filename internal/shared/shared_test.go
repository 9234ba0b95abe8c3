package shared

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique IDs")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("GenerateID() = %q is not a UUID: %v", a, err)
	}
}

func TestMarshal(t *testing.T) {
	v := map[string]int{"userId": 7}

	t.Run("JSON compact", func(t *testing.T) {
		data, err := MarshalJSON(v, false)
		if err != nil {
			t.Fatalf("MarshalJSON() error = %v", err)
		}
		if string(data) != `{"userId":7}` {
			t.Errorf("MarshalJSON() = %s", data)
		}
	})

	t.Run("JSON pretty", func(t *testing.T) {
		data, err := MarshalJSON(v, true)
		if err != nil {
			t.Fatalf("MarshalJSON() error = %v", err)
		}
		if !strings.Contains(string(data), "\n  \"userId\": 7") {
			t.Errorf("MarshalJSON() not indented: %s", data)
		}
	})

	t.Run("YAML", func(t *testing.T) {
		data, err := MarshalYAML(v)
		if err != nil {
			t.Fatalf("MarshalYAML() error = %v", err)
		}
		if strings.TrimSpace(string(data)) != "userId: 7" {
			t.Errorf("MarshalYAML() = %q", data)
		}
	})
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "promo.log")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	logger.Info("hello", "scope", "default")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") || !strings.Contains(string(data), "scope=default") {
		t.Errorf("unexpected log contents: %q", data)
	}
}

func TestOpenBrowser(t *testing.T) {
	t.Run("unsupported platform", func(t *testing.T) {
		original := getRuntime
		t.Cleanup(func() { getRuntime = original })
		getRuntime = func() string { return "plan9" }

		err := OpenBrowser("https://example.com/cover.jpg")
		if err == nil || !strings.Contains(err.Error(), "unsupported platform: plan9") {
			t.Errorf("expected unsupported platform error, got %v", err)
		}
	})

	t.Run("known platforms have an opener", func(t *testing.T) {
		for _, goos := range []string{"darwin", "linux", "windows"} {
			if len(openers[goos]) == 0 {
				t.Errorf("no opener for %s", goos)
			}
		}
	})
}
