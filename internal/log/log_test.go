package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bsvtx.log")
	if err := Init("info", true, path); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Logger.Info().Str("sink", "file").Msg("file sink check")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"message":"file sink check"`) {
		t.Fatalf("log file contents = %q, want a JSON record", data)
	}
}
