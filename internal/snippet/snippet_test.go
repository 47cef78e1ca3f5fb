package snippet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSingleMatch(t *testing.T) {
	content := "the quick brown fox jumps over the lazy dog"
	out := Build(content, len("quick brown"), []uint64{4})
	assert := assert.New(t)
	assert.Len(out, 1)
	assert.Contains(out[0], "quick brown")
}

func TestBuildCoalescesOverlappingWindows(t *testing.T) {
	content := "foo foo foo"
	out := Build(content, len("foo"), []uint64{0, 4, 8})
	assert.Len(t, out, 1)
}

func TestBuildKeepsNonOverlappingWindows(t *testing.T) {
	content := strings.Repeat("x", 200)
	out := Build(content, 1, []uint64{0, 150})
	assert.Len(t, out, 2)
}

func TestBuildSkipsOutOfRangeOffsets(t *testing.T) {
	content := "short"
	out := Build(content, 1, []uint64{100})
	assert.Empty(t, out)
}

func TestBuildEmptyContentOrOffsets(t *testing.T) {
	assert.Empty(t, Build("", 1, []uint64{0}))
	assert.Empty(t, Build("hello", 1, nil))
}

func TestCleanReplacesSeparatorsAndCollapsesSpaces(t *testing.T) {
	out := Build("a\tb\nc\rd;e   f", 0, []uint64{0})
	assert.Equal(t, []string{"a b c d e f"}, out)
}
