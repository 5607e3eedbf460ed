package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/fulmenhq/catmigrate/pkg/buildinfo"
)

func TestVersion(t *testing.T) {
	out, err := execCommand(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v\n%s", err, out)
	}
	if out != "catmigrate "+buildinfo.BinaryVersion+"\n" {
		t.Errorf("unexpected version output: %q", out)
	}
}

func TestVersion_Extended(t *testing.T) {
	out, err := execCommand(t, "version", "--extended")
	if err != nil {
		t.Fatalf("version --extended failed: %v\n%s", err, out)
	}
	for _, want := range []string{"Commit:", "Go: go", "Platform:"} {
		if !strings.Contains(out, want) {
			t.Errorf("extended output missing %q:\n%s", want, out)
		}
	}
}

func TestVersion_JSON(t *testing.T) {
	out, err := execCommand(t, "version", "--format", "json")
	if err != nil {
		t.Fatalf("version --format json failed: %v\n%s", err, out)
	}
	var v map[string]any
	if json.Unmarshal([]byte(out), &v) != nil {
		t.Fatalf("version output is not valid JSON: %s", out)
	}
	for _, key := range []string{"version", "goVersion", "platform", "arch"} {
		if _, ok := v[key].(string); !ok {
			t.Errorf("expected %s field in JSON", key)
		}
	}
}

func TestVersion_Flag(t *testing.T) {
	out, err := execCommand(t, "--version")
	if err != nil {
		t.Fatalf("--version failed: %v", err)
	}
	if !strings.HasPrefix(out, "catmigrate ") {
		t.Errorf("unexpected --version output: %q", out)
	}
}

func TestVersion_BadFormat(t *testing.T) {
	if _, err := execCommand(t, "version", "--format", "xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
