package scan_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cmus-go/playcore/internal/input"
	"github.com/cmus-go/playcore/internal/input/wavplugin"
	"github.com/cmus-go/playcore/internal/library"
	"github.com/cmus-go/playcore/internal/scan"
	"github.com/cmus-go/playcore/internal/trackstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProber struct{}

func (fakeProber) Duration(string) (int, error)                 { return 1, nil }
func (fakeProber) Comments(string) (map[string]string, error) { return map[string]string{}, nil }

func Test_ScanDir_AddsRecognisedFilesOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.wav"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.wav"), []byte("x"), 0o644))

	reg := input.NewRegistry()
	reg.Register(wavplugin.New())
	store := trackstore.New(fakeProber{}, nil)
	lib := library.New([]string{"artist", "album", "tracknumber", "filename"})

	s := scan.New(reg, store, lib)
	require.NoError(t, s.ScanDir(dir, func() bool { return false }))

	assert.Equal(t, 2, lib.Count())
}

func Test_ScanDir_StopsEarlyWhenCancelled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.wav"), []byte("x"), 0o644))

	reg := input.NewRegistry()
	reg.Register(wavplugin.New())
	store := trackstore.New(fakeProber{}, nil)
	lib := library.New([]string{"artist"})

	s := scan.New(reg, store, lib)
	require.NoError(t, s.ScanDir(dir, func() bool { return true }))

	assert.Equal(t, 0, lib.Count())
}
