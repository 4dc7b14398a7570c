//go:build portaudio

package main

import (
	"github.com/cmus-go/playcore/internal/output"
	"github.com/cmus-go/playcore/internal/output/portaudioplugin"
)

func registerPortAudio(dev *output.Device) {
	dev.Register(portaudioplugin.New(), portaudioplugin.NewMixer())
}
