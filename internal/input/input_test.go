package input_test

import (
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/cmus-go/playcore/internal/input"
	"github.com/cmus-go/playcore/internal/input/wavplugin"
	"github.com/cmus-go/playcore/internal/sampleformat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWAVFixture(t *testing.T, path string, seconds int, sf sampleformat.Format) {
	t.Helper()
	dataSize := sf.SecondSize() * seconds

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	f.WriteString("RIFF")
	binary.Write(f, binary.LittleEndian, uint32(36+dataSize))
	f.WriteString("WAVE")

	f.WriteString("fmt ")
	binary.Write(f, binary.LittleEndian, uint32(16))
	binary.Write(f, binary.LittleEndian, uint16(1))
	binary.Write(f, binary.LittleEndian, uint16(sf.Channels))
	binary.Write(f, binary.LittleEndian, uint32(sf.Rate))
	binary.Write(f, binary.LittleEndian, uint32(sf.Rate*sf.FrameSize()))
	binary.Write(f, binary.LittleEndian, uint16(sf.FrameSize()))
	binary.Write(f, binary.LittleEndian, uint16(sf.Bits))

	f.WriteString("data")
	binary.Write(f, binary.LittleEndian, uint32(dataSize))
	f.Write(make([]byte, dataSize))
}

func newOpener() *input.Opener {
	reg := input.NewRegistry()
	reg.Register(wavplugin.New())
	return input.NewOpener(reg)
}

func Test_Opener_OpensWAV_ReportsFormatAndDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tone.wav")
	writeWAVFixture(t, path, 2, sampleformat.CD)

	o := newOpener()
	src, err := o.Open(path)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, sampleformat.CD.Channels, src.Format().Channels)
	assert.Equal(t, sampleformat.CD.Rate, src.Format().Rate)

	dur, err := src.Duration()
	require.NoError(t, err)
	assert.Equal(t, 2, dur)
}

func Test_Opener_UnrecognizedExtension_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "track.xyz")
	require.NoError(t, os.WriteFile(path, []byte("not audio"), 0o644))

	o := newOpener()
	_, err := o.Open(path)
	require.Error(t, err)
}

func Test_Opener_PLSPlaylist_RedirectsToTarget(t *testing.T) {
	dir := t.TempDir()
	wavPath := filepath.Join(dir, "tone.wav")
	writeWAVFixture(t, wavPath, 1, sampleformat.CD)

	plsPath := filepath.Join(dir, "station.pls")
	body := "[playlist]\nFile1=tone.wav\nTitle1=Tone\nLength1=-1\nNumberOfEntries=1\nVersion=2\n"
	require.NoError(t, os.WriteFile(plsPath, []byte(body), 0o644))

	o := newOpener()
	src, err := o.Open(plsPath)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, sampleformat.CD.Channels, src.Format().Channels)
}

func Test_Opener_PLPlaylist_SkipsCommentsAndBlankLines(t *testing.T) {
	dir := t.TempDir()
	wavPath := filepath.Join(dir, "tone.wav")
	writeWAVFixture(t, wavPath, 1, sampleformat.CD)

	plPath := filepath.Join(dir, "station.pl")
	body := "# a comment\n\ntone.wav\n"
	require.NoError(t, os.WriteFile(plPath, []byte(body), 0o644))

	o := newOpener()
	src, err := o.Open(plPath)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, sampleformat.CD.Rate, src.Format().Rate)
}

func Test_Opener_RemoteICYHeaders_SurfaceAsComments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("icy-name", "Test Station")
		w.Header().Set("icy-genre", "Chiptune")
		w.Header().Set("Content-Type", "audio/wav")
		writeWAVBody(w)
	}))
	defer srv.Close()

	o := newOpener()
	src, err := o.Open(srv.URL)
	require.NoError(t, err)
	defer src.Close()

	comments, err := src.ReadComments()
	require.NoError(t, err)
	assert.Equal(t, "Test Station", comments["icy-name"])
	assert.Equal(t, "Chiptune", comments["icy-genre"])
}

func writeWAVBody(w http.ResponseWriter) {
	sf := sampleformat.CD
	dataSize := sf.SecondSize()

	w.Write([]byte("RIFF"))
	binary.Write(w, binary.LittleEndian, uint32(36+dataSize))
	w.Write([]byte("WAVE"))

	w.Write([]byte("fmt "))
	binary.Write(w, binary.LittleEndian, uint32(16))
	binary.Write(w, binary.LittleEndian, uint16(1))
	binary.Write(w, binary.LittleEndian, uint16(sf.Channels))
	binary.Write(w, binary.LittleEndian, uint32(sf.Rate))
	binary.Write(w, binary.LittleEndian, uint32(sf.Rate*sf.FrameSize()))
	binary.Write(w, binary.LittleEndian, uint16(sf.FrameSize()))
	binary.Write(w, binary.LittleEndian, uint16(sf.Bits))

	w.Write([]byte("data"))
	binary.Write(w, binary.LittleEndian, uint32(dataSize))
	w.Write(make([]byte, dataSize))
}
