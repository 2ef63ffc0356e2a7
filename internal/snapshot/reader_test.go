package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func newTestReader(dir string, env map[string]string) *Reader {
	r := NewReader(dir)
	r.Now = fixedNow
	r.Getenv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	return r
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestHash(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "00000000"},
		{"a", "00000061"},
		{"ab", "00000c21"},
		{"hello world", "6aefe2c4"},
		{`{"name":"app"}`, "75da1e04"},
		{"héllo 😀", "179170f5"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Hash(tt.input))
		})
	}
}

func TestHash_StableAndFixedWidth(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "content")
		h := Hash(s)
		if h != Hash(s) {
			t.Fatalf("hash of %q is not stable", s)
		}
		if len(h) != 8 {
			t.Fatalf("hash %q is not 8 hex digits", h)
		}
	})
}

func TestRead_AbsentFilesAreNil(t *testing.T) {
	snap := newTestReader(t.TempDir(), nil).Read()

	assert.Nil(t, snap.PackageJSONHash)
	assert.Nil(t, snap.TSConfigHash)
	assert.Nil(t, snap.TSConfigBuildHash)
	assert.Nil(t, snap.FrameworkConfigHash)
	assert.Nil(t, snap.DependenciesHash)
	require.NotNil(t, snap.EnvVarsHash, "environment is always fingerprinted")
	assert.Equal(t, fixedNow(), snap.Timestamp)
}

func TestRead_PresentFilesAreHashed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"name":"app","dependencies":{"next":"15.0.0"}}`)
	writeFile(t, dir, "tsconfig.json", "")
	writeFile(t, dir, "tsconfig.build.json", `{"extends":"./tsconfig.json"}`)
	writeFile(t, dir, "next.config.mjs", "export default {}")

	snap := newTestReader(dir, nil).Read()

	require.NotNil(t, snap.PackageJSONHash)
	assert.Equal(t, Hash(`{"name":"app","dependencies":{"next":"15.0.0"}}`), *snap.PackageJSONHash)
	require.NotNil(t, snap.TSConfigHash, "empty content is present, not absent")
	assert.Equal(t, "00000000", *snap.TSConfigHash)
	require.NotNil(t, snap.TSConfigBuildHash)
	require.NotNil(t, snap.FrameworkConfigHash)
	assert.Equal(t, Hash("export default {}"), *snap.FrameworkConfigHash)
	require.NotNil(t, snap.DependenciesHash)
}

func TestRead_FrameworkConfigPrefersFirstCandidate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "next.config.ts", "ts")
	writeFile(t, dir, "next.config.js", "js")

	r := newTestReader(dir, nil)
	assert.Equal(t, "next.config.js", r.FrameworkConfigPath())
	assert.Equal(t, Hash("js"), *r.Read().FrameworkConfigHash)
}

func TestRead_InvalidManifestHasNoDependencyHash(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", "{broken")

	snap := newTestReader(dir, nil).Read()
	require.NotNil(t, snap.PackageJSONHash)
	assert.Nil(t, snap.DependenciesHash)
}

func TestRead_DependencyHashIgnoresOtherFields(t *testing.T) {
	dir1, dir2 := t.TempDir(), t.TempDir()
	writeFile(t, dir1, "package.json", `{"version":"1.0.0","dependencies":{"react":"19"}}`)
	writeFile(t, dir2, "package.json", `{"version":"2.0.0","dependencies":{"react":"19"}}`)

	a := newTestReader(dir1, nil).Read()
	b := newTestReader(dir2, nil).Read()

	assert.NotEqual(t, *a.PackageJSONHash, *b.PackageJSONHash)
	assert.Equal(t, *a.DependenciesHash, *b.DependenciesHash)
}

func TestRead_EnvironmentFingerprint(t *testing.T) {
	dir := t.TempDir()

	unset := newTestReader(dir, nil).Read()
	empty := newTestReader(dir, map[string]string{"NODE_ENV": ""}).Read()
	prod := newTestReader(dir, map[string]string{"NODE_ENV": "production"}).Read()
	ignored := newTestReader(dir, map[string]string{"HOME": "/root"}).Read()

	assert.NotEqual(t, *unset.EnvVarsHash, *empty.EnvVarsHash, "unset and empty differ")
	assert.NotEqual(t, *empty.EnvVarsHash, *prod.EnvVarsHash)
	assert.Equal(t, *unset.EnvVarsHash, *ignored.EnvVarsHash, "variables outside the allow-list are ignored")
}

func TestEnvJSON_Order(t *testing.T) {
	r := newTestReader(t.TempDir(), map[string]string{"NEXT_PUBLIC_ENABLE_CMS": "true"})
	r.EnvVars = []string{"NODE_ENV", "NEXT_PUBLIC_ENABLE_CMS"}

	assert.Equal(t, `{"NODE_ENV":null,"NEXT_PUBLIC_ENABLE_CMS":"true"}`, r.envJSON())
}
