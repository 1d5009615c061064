package rowcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeName(t *testing.T) {
	cases := []struct {
		raw     string
		escaped string
	}{
		{"plain", "plain"},
		{"", ""},
		{"a.b", `a\.b`},
		{`a\b`, `a\\b`},
		{`.`, `\.`},
		{`a\.b`, `a\\\.b`},
	}
	for _, c := range cases {
		assert.Equal(t, c.escaped, EscapeName(c.raw), "escape %q", c.raw)
		back, err := UnescapeName(c.escaped)
		require.NoError(t, err, "unescape %q", c.escaped)
		assert.Equal(t, c.raw, back, "round trip %q", c.raw)
	}
}

func TestUnescapeNameErrors(t *testing.T) {
	for _, bad := range []string{`a\`, `a\x`, `\`} {
		_, err := UnescapeName(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestSplitPath(t *testing.T) {
	segs, err := SplitPath(`a.b\.c.d`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b.c", "d"}, segs)

	segs, err = SplitPath("single")
	require.NoError(t, err)
	assert.Equal(t, []string{"single"}, segs)

	_, err = SplitPath(`a.\`)
	assert.Error(t, err)
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, `a.b\.c`, JoinPath("a", "b.c"))

	segs, err := SplitPath(JoinPath("x.y", `z\w`))
	require.NoError(t, err)
	assert.Equal(t, []string{"x.y", `z\w`}, segs)
}
