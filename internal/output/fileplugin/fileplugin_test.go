package fileplugin_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cmus-go/playcore/internal/output/fileplugin"
	"github.com/cmus-go/playcore/internal/sampleformat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Plugin_Write_AppendsRawBytesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pcm")
	p := fileplugin.New(path)

	require.NoError(t, p.Open(sampleformat.CD))
	n, err := p.Write([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	require.NoError(t, p.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, got)
}

func Test_Plugin_Drop_TruncatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pcm")
	p := fileplugin.New(path)
	require.NoError(t, p.Open(sampleformat.CD))

	_, err := p.Write([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	require.NoError(t, p.Drop())
	_, err = p.Write([]byte{9, 9})
	require.NoError(t, err)
	require.NoError(t, p.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 9}, got)
}

func Test_Plugin_Write_BeforeOpen_Errors(t *testing.T) {
	p := fileplugin.New(filepath.Join(t.TempDir(), "out.pcm"))
	_, err := p.Write([]byte{1})
	assert.Error(t, err)
}
