package buildinfo

import (
	"strings"
	"testing"
)

func TestGetPrefersLdflags(t *testing.T) {
	oldV, oldC := Version, Commit
	Version, Commit = "v1.2.3", "abc123"
	defer func() { Version, Commit = oldV, oldC }()

	info := Get()
	if info.Version != "v1.2.3" || info.Commit != "abc123" {
		t.Errorf("Get() = %+v, want the stamped version and commit", info)
	}
}

func TestInfoString(t *testing.T) {
	s := Info{Version: "v0.4.0", Commit: "deadbeef", Date: "2025-01-02", Modified: true}.String()
	for _, want := range []string{"version: v0.4.0", "commit: deadbeef (modified)", "built: 2025-01-02"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}

func TestTemplate(t *testing.T) {
	tmpl := Template()
	if !strings.HasPrefix(tmpl, "{{.Name}} version: ") || !strings.HasSuffix(tmpl, "\n") {
		t.Errorf("Template() = %q", tmpl)
	}
}
