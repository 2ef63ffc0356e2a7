package version

import (
	"runtime"
	"runtime/debug"
	"testing"
)

func TestGetInfo(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	defer func() {
		Version, Commit, Date = origVersion, origCommit, origDate
	}()

	Version = "1.0.0"
	Commit = "abc123def456"
	Date = "2024-01-01T12:00:00Z"

	info := GetInfo()

	if info.Version != "1.0.0" {
		t.Errorf("GetInfo().Version = %v, want 1.0.0", info.Version)
	}
	if info.Commit != "abc123def456" {
		t.Errorf("GetInfo().Commit = %v, want abc123def456", info.Commit)
	}
	if info.Date != "2024-01-01T12:00:00Z" {
		t.Errorf("GetInfo().Date = %v, want 2024-01-01T12:00:00Z", info.Date)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GetInfo().GoVersion = %v, want %v", info.GoVersion, runtime.Version())
	}
	if want := runtime.GOOS + "/" + runtime.GOARCH; info.Platform != want {
		t.Errorf("GetInfo().Platform = %v, want %v", info.Platform, want)
	}
}

func TestApplyBuildSettings(t *testing.T) {
	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2025-02-03T04:05:06Z"},
		{Key: "GOOS", Value: "linux"},
	}

	tests := []struct {
		name       string
		info       Info
		wantCommit string
		wantDate   string
	}{
		{
			name:       "fills unknown values",
			info:       Info{Commit: "unknown", Date: "unknown"},
			wantCommit: "0123456789abcdef",
			wantDate:   "2025-02-03T04:05:06Z",
		},
		{
			name:       "keeps ldflags values",
			info:       Info{Commit: "feedface", Date: "2024-01-01"},
			wantCommit: "feedface",
			wantDate:   "2024-01-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := tt.info
			applyBuildSettings(&info, settings)
			if info.Commit != tt.wantCommit || info.Date != tt.wantDate {
				t.Errorf("got commit=%q date=%q, want %q %q", info.Commit, info.Date, tt.wantCommit, tt.wantDate)
			}
		})
	}
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{
			name: "long commit is shortened",
			info: Info{Version: "1.0.0", Commit: "abc123def456", Date: "2024-01-01", GoVersion: "go1.22.0", Platform: "linux/amd64"},
			want: "buildmon 1.0.0 (abc123de) built 2024-01-01 with go1.22.0 for linux/amd64",
		},
		{
			name: "short commit kept",
			info: Info{Version: "dev", Commit: "abc", Date: "unknown", GoVersion: "go1.24.6", Platform: "darwin/arm64"},
			want: "buildmon dev (abc) built unknown with go1.24.6 for darwin/arm64",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.String(); got != tt.want {
				t.Errorf("Info.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInfoShort(t *testing.T) {
	if got := (Info{Version: "2.3.4"}).Short(); got != "2.3.4" {
		t.Errorf("Short() = %q, want 2.3.4", got)
	}
}
