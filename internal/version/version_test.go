package version

import (
	"runtime/debug"
	"testing"
)

func withBuildInfo(t *testing.T, bi *debug.BuildInfo) {
	t.Helper()
	prev := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
	t.Cleanup(func() { readBuildInfo = prev })
}

func withLdflags(t *testing.T, version, commit, buildTime string) {
	t.Helper()
	pv, pc, pb := Version, Commit, BuildTime
	Version, Commit, BuildTime = version, commit, buildTime
	t.Cleanup(func() { Version, Commit, BuildTime = pv, pc, pb })
}

func TestResolveLdflagsWin(t *testing.T) {
	withLdflags(t, "v1.2.3", "abcdef0123456789", "2026-01-01")
	withBuildInfo(t, &debug.BuildInfo{
		Main: debug.Module{Version: "v9.9.9"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "ffffffff"},
		},
	})

	info := Resolve()
	if info.Version != "v1.2.3" || info.Commit != "abcdef0123456789" || info.BuildTime != "2026-01-01" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if got := String(); got != "v1.2.3 (abcdef012345)" {
		t.Fatalf("String() = %q", got)
	}
}

func TestResolveFromBuildInfo(t *testing.T) {
	withLdflags(t, "", "", "")
	withBuildInfo(t, &debug.BuildInfo{
		GoVersion: "go1.26",
		Main:      debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-10-01T00:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	})

	info := Resolve()
	if info.Version != devel {
		t.Fatalf("version = %q, want %q", info.Version, devel)
	}
	if info.BuildTime != "2026-10-01T00:00:00Z" || info.GoVersion != "go1.26" || !info.Modified {
		t.Fatalf("unexpected info: %+v", info)
	}
	if got := String(); got != "devel (0123456789ab-dirty)" {
		t.Fatalf("String() = %q", got)
	}
}

func TestResolveWithoutBuildInfo(t *testing.T) {
	withLdflags(t, "", "", "")
	withBuildInfo(t, nil)

	if got := String(); got != devel {
		t.Fatalf("String() = %q", got)
	}
}
