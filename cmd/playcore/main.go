// Command playcore is a headless CLI front-end over the playback core: it
// scans a music directory, opens a file or the first scanned track, and
// plays it to the selected output device while printing status lines.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/cmus-go/playcore/internal/config"
	"github.com/cmus-go/playcore/internal/input"
	"github.com/cmus-go/playcore/internal/input/flacplugin"
	"github.com/cmus-go/playcore/internal/input/mp3plugin"
	"github.com/cmus-go/playcore/internal/input/wavplugin"
	"github.com/cmus-go/playcore/internal/library"
	"github.com/cmus-go/playcore/internal/logging"
	"github.com/cmus-go/playcore/internal/output"
	"github.com/cmus-go/playcore/internal/output/fileplugin"
	"github.com/cmus-go/playcore/internal/player"
	"github.com/cmus-go/playcore/internal/sampleformat"
	"github.com/cmus-go/playcore/internal/scan"
	"github.com/cmus-go/playcore/internal/trackstore"
	"github.com/cmus-go/playcore/internal/worker"
	"github.com/spf13/pflag"
)

func main() {
	var (
		musicDir = pflag.StringP("music-dir", "m", "", "Directory to scan for tracks (overrides config)")
		play     = pflag.StringP("play", "p", "", "Play a specific file instead of the first scanned track")
		volume   = pflag.IntP("volume", "v", -1, "Initial volume 0..100 (overrides config)")
		sinkFile = pflag.StringP("sink", "s", "", "Write raw PCM to this file instead of the audio device")
		help     = pflag.BoolP("help", "h", false, "Display help text")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - headless playback-core CLI.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		return
	}

	logging.Init(slog.LevelInfo)
	cfg := config.Load()
	if *musicDir != "" {
		cfg.MusicDir = *musicDir
	}
	if *volume >= 0 {
		cfg.InitialVolume = *volume
	}

	slog.Info("starting playcore", "music_dir", cfg.MusicDir, "buffer_seconds", cfg.BufferSeconds)

	registry := input.NewRegistry()
	registry.Register(wavplugin.New())
	registry.Register(mp3plugin.New())
	registry.Register(flacplugin.New())
	opener := input.NewOpener(registry)

	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		slog.Error("failed to create cache dir", "dir", cfg.CacheDir, "error", err)
		os.Exit(1)
	}
	cache := trackstore.Open(filepath.Join(cfg.CacheDir, "track.idx"), filepath.Join(cfg.CacheDir, "track.dat"))
	store := trackstore.New(&openerProber{opener: opener}, cache)

	lib := library.New(strings.Split(cfg.SortKeys, ","))

	queue := worker.New()
	defer queue.Close()

	scanner := scan.New(registry, store, lib)
	scanDone := make(chan struct{})
	queue.Add("scan", func(cancelling func() bool, data any) {
		defer close(scanDone)
		if err := scanner.ScanDir(data.(string), cancelling); err != nil {
			slog.Error("library scan failed", "error", err)
		}
	}, cfg.MusicDir)
	<-scanDone
	slog.Info("scan complete", "tracks", lib.Count())

	dev := output.NewDevice()
	if *sinkFile != "" {
		dev.Register(fileplugin.New(*sinkFile), nil)
	} else {
		dev.Register(fileplugin.New(filepath.Join(cfg.CacheDir, "out.pcm")), nil)
	}
	registerPortAudio(dev)

	if cfg.OutputDevice != "" {
		if err := dev.Select(cfg.OutputDevice); err != nil {
			slog.Error("failed to select configured output device", "device", cfg.OutputDevice, "error", err)
			os.Exit(1)
		}
	} else if err := dev.SelectDefault(); err != nil {
		slog.Error("no output device available", "error", err)
		os.Exit(1)
	}

	target := *play
	if target == "" {
		if e := lib.Current(); e != nil {
			target = e.Filename()
		} else if e, ok := lib.Next(); ok {
			target = e.Filename()
		}
	}
	if target == "" {
		slog.Error("nothing to play: no --play file given and the library is empty")
		os.Exit(1)
	}

	p := player.New(opener, dev, &player.LibraryTrackSource{Library: lib}, sampleformat.CD, cfg.BufferSeconds)
	defer p.Close()

	if err := p.SetVolume(cfg.InitialVolume, cfg.InitialVolume); err != nil {
		slog.Warn("failed to set initial volume", "error", err)
	}
	if err := p.Play(target); err != nil {
		slog.Error("failed to play", "file", target, "error", err)
		os.Exit(1)
	}
	slog.Info("playing", "file", target)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-sig:
			slog.Info("shutdown signal received")
			p.Stop()
			cache.Close()
			return
		case <-ticker.C:
			snap := p.Snapshot()
			slog.Info("status", "status", snap.Status.String(), "file", snap.Filename, "position", snap.Position)
			if snap.Status == player.Stopped {
				cache.Close()
				return
			}
		}
	}
}

// openerProber adapts an *input.Opener to trackstore.Prober, keeping C6
// decoupled from C3 at compile time while still using it at runtime.
type openerProber struct {
	opener *input.Opener
}

func (o *openerProber) Duration(filename string) (int, error) {
	src, err := o.opener.Open(filename)
	if err != nil {
		return -1, err
	}
	defer src.Close()
	return src.Duration()
}

func (o *openerProber) Comments(filename string) (map[string]string, error) {
	src, err := o.opener.Open(filename)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	c, err := src.ReadComments()
	if err != nil {
		return nil, err
	}
	return c, nil
}
