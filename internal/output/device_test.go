package output_test

import (
	"path/filepath"
	"testing"

	"github.com/cmus-go/playcore/internal/output"
	"github.com/cmus-go/playcore/internal/output/fileplugin"
	"github.com/cmus-go/playcore/internal/sampleformat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Device_SelectDefault_PicksRegisteredPlugin(t *testing.T) {
	dev := output.NewDevice()
	p := fileplugin.New(filepath.Join(t.TempDir(), "out.pcm"))
	dev.Register(p, nil)

	require.NoError(t, dev.SelectDefault())
	assert.Equal(t, "file", dev.ActiveName())
	assert.Equal(t, output.Closed, dev.State())
}

func Test_Device_EnsureFormat_OpensAndIsIdempotent(t *testing.T) {
	dev := output.NewDevice()
	p := fileplugin.New(filepath.Join(t.TempDir(), "out.pcm"))
	dev.Register(p, nil)
	require.NoError(t, dev.SelectDefault())

	sf := sampleformat.CD
	require.NoError(t, dev.EnsureFormat(sf))
	assert.Equal(t, output.Prepared, dev.State())

	// Same format again must not reopen (state unaffected by a second call).
	require.NoError(t, dev.EnsureFormat(sf))
	assert.Equal(t, output.Prepared, dev.State())
}

func Test_Device_EnsureFormat_ReopensOnFormatChange(t *testing.T) {
	dev := output.NewDevice()
	p := fileplugin.New(filepath.Join(t.TempDir(), "out.pcm"))
	dev.Register(p, nil)
	require.NoError(t, dev.SelectDefault())

	require.NoError(t, dev.EnsureFormat(sampleformat.CD))
	mono := sampleformat.Format{Rate: 44100, Bits: 16, Channels: 1, Signed: true}
	require.NoError(t, dev.EnsureFormat(mono))
	assert.Equal(t, output.Prepared, dev.State())
}

func Test_Device_Write_TransitionsToRunning(t *testing.T) {
	dev := output.NewDevice()
	p := fileplugin.New(filepath.Join(t.TempDir(), "out.pcm"))
	dev.Register(p, nil)
	require.NoError(t, dev.SelectDefault())
	require.NoError(t, dev.EnsureFormat(sampleformat.CD))

	n, err := dev.Write(make([]byte, 64))
	require.NoError(t, err)
	assert.Equal(t, 64, n)
	assert.Equal(t, output.Running, dev.State())
}

func Test_Device_PauseUnpause_RoundTrip(t *testing.T) {
	dev := output.NewDevice()
	p := fileplugin.New(filepath.Join(t.TempDir(), "out.pcm"))
	dev.Register(p, nil)
	require.NoError(t, dev.SelectDefault())
	require.NoError(t, dev.EnsureFormat(sampleformat.CD))
	_, err := dev.Write(make([]byte, 16))
	require.NoError(t, err)

	require.NoError(t, dev.Pause())
	assert.Equal(t, output.Paused, dev.State())
	require.NoError(t, dev.Unpause())
	assert.Equal(t, output.Running, dev.State())
}

func Test_Device_BufferSpace_IsClampedTo1024Frames(t *testing.T) {
	dev := output.NewDevice()
	p := fileplugin.New(filepath.Join(t.TempDir(), "out.pcm"))
	dev.Register(p, nil)
	require.NoError(t, dev.SelectDefault())
	require.NoError(t, dev.EnsureFormat(sampleformat.CD))

	space, err := dev.BufferSpace()
	require.NoError(t, err)
	assert.Equal(t, 1024*sampleformat.CD.FrameSize(), space)
}

func Test_Device_Close_ResetsToClosed(t *testing.T) {
	dev := output.NewDevice()
	p := fileplugin.New(filepath.Join(t.TempDir(), "out.pcm"))
	dev.Register(p, nil)
	require.NoError(t, dev.SelectDefault())
	require.NoError(t, dev.EnsureFormat(sampleformat.CD))

	require.NoError(t, dev.Close())
	assert.Equal(t, output.Closed, dev.State())
}

type fakeMixer struct {
	left, right, max int
}

func (m *fakeMixer) Open() (int, error)             { return m.max, nil }
func (m *fakeMixer) Close() error                   { return nil }
func (m *fakeMixer) GetVolume() (int, int, error)   { return m.left, m.right, nil }
func (m *fakeMixer) SetVolume(l, r int) error       { m.left, m.right = l, r; return nil }
func (m *fakeMixer) SetOption(k, v string) error    { return nil }
func (m *fakeMixer) GetOption(k string) (string, error) { return "", nil }

func Test_Device_Volume_ScalesToPercent(t *testing.T) {
	dev := output.NewDevice()
	p := fileplugin.New(filepath.Join(t.TempDir(), "out.pcm"))
	mix := &fakeMixer{max: 255}
	dev.Register(p, mix)
	require.NoError(t, dev.SelectDefault())

	require.NoError(t, dev.SetVolume(50, 100))
	l, r, err := dev.GetVolume()
	require.NoError(t, err)
	assert.Equal(t, 50, l)
	assert.Equal(t, 100, r)
}
