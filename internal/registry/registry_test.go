package registry

import (
	"errors"
	"testing"

	"github.com/jpl-au/hubtools/internal/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func descs(names ...string) []tool.Descriptor {
	out := make([]tool.Descriptor, len(names))
	for i, n := range names {
		out[i] = tool.Descriptor{Name: n}
	}
	return out
}

func TestNew_PreservesOrder(t *testing.T) {
	r, err := New(descs("list_directory", "read_file", "run_bash_command")...)
	require.NoError(t, err)

	assert.Equal(t, []string{"list_directory", "read_file", "run_bash_command"}, r.Names())
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 1, r.Position("read_file"))
	assert.Equal(t, -1, r.Position("nope"))
}

func TestNew_RejectsDuplicates(t *testing.T) {
	_, err := New(descs("a", "b", "a")...)
	assert.True(t, errors.Is(err, ErrDuplicateTool))
}

func TestNew_RejectsEmptyName(t *testing.T) {
	_, err := New(descs("a", "")...)
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestMustNew_Panics(t *testing.T) {
	assert.Panics(t, func() { MustNew(descs("a", "a")...) })
}

func TestLookup(t *testing.T) {
	r := MustNew(tool.Descriptor{Name: "read_file", Description: "Read"})

	d, ok := r.Lookup("read_file")
	require.True(t, ok)
	assert.Equal(t, "Read", d.Description)

	_, ok = r.Lookup("write_file")
	assert.False(t, ok)
}

func TestList_IsCopy(t *testing.T) {
	r := MustNew(descs("a", "b")...)
	l := r.List()
	l[0].Name = "mutated"

	assert.Equal(t, "a", r.List()[0].Name)
}
