//go:build !ios && !android && (amd64 || arm64)

package scgo

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/obinnaokechukwu/scgo/internal/bindings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnose(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(bindings.FrameworkDirEnv, dir)

	d := Diagnose()
	assert.Equal(t, runtime.GOOS, d.GOOS)
	assert.Equal(t, runtime.GOARCH, d.GOARCH)
	assert.Equal(t, OSRelease(), d.OSRelease)
	assert.Equal(t, IsLoaded(), d.Loaded)
	require.NotEmpty(t, d.SearchPaths)
	assert.Equal(t, dir, d.SearchPaths[0])

	require.Len(t, d.Frameworks, 2)
	assert.Equal(t, "CoreFoundation", d.Frameworks[0].Name)
	assert.Equal(t, "SystemConfiguration", d.Frameworks[1].Name)
	if runtime.GOOS != "darwin" {
		for _, f := range d.Frameworks {
			assert.Empty(t, f.Path, f.Name)
		}
	}
}

func TestDiagnoseFrameworkDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(bindings.FrameworkDirEnv, dir)
	bin := filepath.Join(dir, "SystemConfiguration.framework", "SystemConfiguration")
	require.NoError(t, os.MkdirAll(filepath.Dir(bin), 0o755))
	require.NoError(t, os.WriteFile(bin, nil, 0o644))

	d := Diagnose()
	assert.Equal(t, bin, d.Frameworks[1].Path)
}
