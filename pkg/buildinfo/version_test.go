package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func restore(t *testing.T) {
	t.Helper()
	v, c, d := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = v, c, d })
}

func TestFill(t *testing.T) {
	moduleInfo := debug.BuildInfo{
		Main:     debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
	}
	develInfo := debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}

	tests := []struct {
		name        string
		ldVersion   string
		ldCommit    string
		info        debug.BuildInfo
		wantVersion string
		wantCommit  string
	}{
		{"module version and revision", "dev", "none", moduleInfo, "v0.3.1", "abc123"},
		{"devel build keeps dev", "dev", "none", develInfo, "dev", "none"},
		{"ldflags win", "v1.0.0", "fff", moduleInfo, "v1.0.0", "fff"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restore(t)
			Version, Commit = tt.ldVersion, tt.ldCommit
			fill(&tt.info)
			if Version != tt.wantVersion || Commit != tt.wantCommit {
				t.Errorf("got %s/%s, want %s/%s", Version, Commit, tt.wantVersion, tt.wantCommit)
			}
		})
	}
}

func TestTemplate(t *testing.T) {
	restore(t)
	Version, Commit, Date = "v1.2.3", "abc", "2026-01-01"
	got := Template()
	for _, want := range []string{"{{.Name}} version v1.2.3", "commit: abc", "built: 2026-01-01"} {
		if !strings.Contains(got, want) {
			t.Errorf("Template() = %q, missing %q", got, want)
		}
	}
	if !strings.HasPrefix(String(), "version: v1.2.3\n") {
		t.Errorf("String() = %q", String())
	}
}
