//go:build !portaudio

package main

import "github.com/cmus-go/playcore/internal/output"

// registerPortAudio is a no-op in the default build; build with -tags
// portaudio to register the real hardware backend.
func registerPortAudio(dev *output.Device) {}
