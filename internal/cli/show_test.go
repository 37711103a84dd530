package cli

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRunShow(t *testing.T) {
	t.Run("table redacts secrets", func(t *testing.T) {
		buf := setupCLI(t, NewMockDeps().Build())
		sitePath := writeSite(t, t.TempDir(), "p1abc")

		if err := runShow(nil, []string{sitePath}); err != nil {
			t.Fatalf("runShow failed: %v", err)
		}

		out := buf.String()
		if strings.Contains(out, "dbsecret") {
			t.Error("database password must be redacted")
		}
		for _, want := range []string{"Site:        p1abc", "Environment: local", "********", "tmp_path", "/tmp/p1abc"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q:\n%s", want, out)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		buf := setupCLI(t, NewMockDeps().Build())
		jsonOutput = true
		sitePath := writeSite(t, t.TempDir(), "p1abc")

		if err := runShow(nil, []string{sitePath}); err != nil {
			t.Fatalf("runShow failed: %v", err)
		}

		var vars map[string]any
		if err := json.Unmarshal(buf.Bytes(), &vars); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if vars["sid"] != "p1abc" || vars["path"] != "mysite" {
			t.Errorf("unexpected vars %v", vars)
		}
		if vars["pw"] != "********" {
			t.Errorf("pw = %v, want redacted", vars["pw"])
		}
	})

	t.Run("missing file", func(t *testing.T) {
		setupCLI(t, NewMockDeps().Build())
		if err := runShow(nil, []string{"/nonexistent/site.yaml"}); err == nil {
			t.Error("expected error")
		}
	})
}

func TestFormatValue(t *testing.T) {
	testCases := []struct {
		name  string
		value interface{}
		want  string
	}{
		{name: "string", value: "abc", want: "abc"},
		{name: "int", value: 10800, want: "10800"},
		{name: "list", value: []string{"a", "b"}, want: "[a, b]"},
		{name: "empty list", value: []string{}, want: "[]"},
		{
			name:  "map",
			value: map[string]any{"port": 3306, "master": "db1", "slaves": []string{"db2"}},
			want:  "master=db1 port=3306 slaves=[db2]",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatValue(tc.value); got != tc.want {
				t.Errorf("formatValue() = %q, want %q", got, tc.want)
			}
		})
	}
}
