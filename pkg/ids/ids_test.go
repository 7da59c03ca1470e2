package ids

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	ordinal int
	steps   map[string]bool
}

func (f *fakeSource) NextStepOrdinal() int        { return f.ordinal }
func (f *fakeSource) SetNextStepOrdinal(n int)    { f.ordinal = n }
func (f *fakeSource) HasStep(id string) bool      { return f.steps[id] }

func TestMintStepIDSkipsCollisions(t *testing.T) {
	src := &fakeSource{ordinal: 1, steps: map[string]bool{"s1": true, "s2": true}}
	id := MintStepID(src)
	assert.Equal(t, "s3", id)
	assert.Equal(t, 4, src.ordinal)
}

func TestMintStepIDSequential(t *testing.T) {
	src := &fakeSource{ordinal: 1, steps: map[string]bool{}}
	first := MintStepID(src)
	second := MintStepID(src)
	assert.Equal(t, "s1", first)
	assert.Equal(t, "s2", second)
}

func TestRandomIDPrefixAndLength(t *testing.T) {
	id := RandomID("evt_")
	require.True(t, strings.HasPrefix(id, "evt_"))
	assert.Len(t, strings.TrimPrefix(id, "evt_"), 16)
}

func TestRandomIDUnique(t *testing.T) {
	a := RandomID("x")
	b := RandomID("x")
	assert.NotEqual(t, a, b)
}

func TestNowISO8601RoundTrip(t *testing.T) {
	s := NowISO8601()
	parsed, err := ParseISO8601(s)
	require.NoError(t, err)
	assert.Equal(t, s, parsed.UTC().Format("2006-01-02T15:04:05Z"))
}
