package sampleformat_test

import (
	"testing"

	"github.com/cmus-go/playcore/internal/sampleformat"
	"github.com/stretchr/testify/assert"
)

func Test_Format_FrameAndSecondSize(t *testing.T) {
	sf := sampleformat.CD
	assert.Equal(t, 4, sf.FrameSize())
	assert.Equal(t, 44100*4, sf.SecondSize())
}

func Test_Format_Equal_ComparesAllFields(t *testing.T) {
	a := sampleformat.Format{Rate: 44100, Bits: 16, Channels: 2, Signed: true}
	b := a
	b.Channels = 1
	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(b))
}

func Test_Format_Valid_RejectsBadBitsAndZeroFields(t *testing.T) {
	assert.True(t, sampleformat.CD.Valid())
	assert.False(t, sampleformat.Format{Rate: 0, Bits: 16, Channels: 2}.Valid())
	assert.False(t, sampleformat.Format{Rate: 44100, Bits: 12, Channels: 2}.Valid())
	assert.False(t, sampleformat.Format{Rate: 44100, Bits: 16, Channels: 0}.Valid())
}

func Test_Format_BytesToSeconds_TruncatesPartialSecond(t *testing.T) {
	sf := sampleformat.CD
	assert.Equal(t, 1, sf.BytesToSeconds(int64(sf.SecondSize())+100))
}
