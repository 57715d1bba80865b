package coder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRegistry is a minimal in-test registry.
type stubRegistry struct {
	codes []string
	names map[string]string
}

func (s *stubRegistry) Codes() []string { return s.codes }

func (s *stubRegistry) Name(code string) (string, bool) {
	n, ok := s.names[code]
	return n, ok
}

func newStubRegistry() *stubRegistry {
	return &stubRegistry{
		codes: []string{"BIH", "CHN", "HKG", "LCA", "SDN", "SSD", "SWZ", "USA"},
		names: map[string]string{
			"BIH": "Bosnia and Herzegovina",
			"CHN": "China",
			"HKG": "Hong Kong SAR, China",
			"LCA": "St. Lucia",
			"SDN": "Sudan",
			"SSD": "South Sudan",
			"SWZ": "Eswatini",
			"USA": "United States",
		},
	}
}

func newTestCoder(t *testing.T) *Coder {
	t.Helper()
	decls := []Declaration{
		{Code: "CHN", Order: 20},
		{Code: "HKG", Rules: []string{"~china.+hong kong", "hong kong"}},
		{Code: "SDN", Order: 20},
		{Code: "USA", Rules: []string{":us", "usa"}},
		{Code: "SWZ", Rules: []string{"swaziland"}},
	}
	c, err := Build(decls, newStubRegistry())
	require.NoError(t, err)
	return c
}

func TestResolve_PriorityOrdering(t *testing.T) {
	c := newTestCoder(t)

	tests := []struct {
		input string
		want  string
	}{
		{"Hong Kong", "HKG"},
		{"China", "CHN"},
		{"Sudan", "SDN"},
		{"South Sudan", "SSD"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			code, ok := c.Resolve(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestResolve_ExclusionVetoesEntry(t *testing.T) {
	c := newTestCoder(t)

	// HKG's "hong kong" pattern matches, but the exclusion fires first
	// and voids the whole entry, so the deferred CHN wins.
	code, ok := c.Resolve("China, including Hong Kong")
	require.True(t, ok)
	assert.Equal(t, "CHN", code)
}

func TestResolve_ExclusionWithoutFallback(t *testing.T) {
	reg := &stubRegistry{
		codes: []string{"AAA"},
		names: map[string]string{"AAA": "Alpha"},
	}
	c, err := Build([]Declaration{
		{Code: "AAA", Rules: []string{"~beta", "alpha beta"}},
	}, reg)
	require.NoError(t, err)

	// The entry's own pattern matches but its exclusion fires; no other
	// entry exists, so the input must not resolve at all.
	_, ok := c.Resolve("alpha beta")
	assert.False(t, ok)

	code, ok := c.Resolve("Alpha")
	require.True(t, ok)
	assert.Equal(t, "AAA", code)
}

func TestResolve_Literals(t *testing.T) {
	c := newTestCoder(t)

	t.Run("literal matches whole input", func(t *testing.T) {
		code, ok := c.Resolve("US")
		require.True(t, ok)
		assert.Equal(t, "USA", code)
	})

	t.Run("literal ignores case", func(t *testing.T) {
		code, ok := c.Resolve("us")
		require.True(t, ok)
		assert.Equal(t, "USA", code)
	})

	t.Run("substring falls through to patterns", func(t *testing.T) {
		// The :us literal must not fire inside a longer string; the usa
		// pattern claims this one instead.
		code, ok := c.Resolve("USA is great")
		require.True(t, ok)
		assert.Equal(t, "USA", code)
	})

	t.Run("literal only, no substring match", func(t *testing.T) {
		reg := &stubRegistry{
			codes: []string{"USA"},
			names: map[string]string{"USA": "United States"},
		}
		c, err := Build([]Declaration{
			{Code: "USA", Rules: []string{":us"}},
		}, reg)
		require.NoError(t, err)

		_, ok := c.Resolve("USA is great")
		assert.False(t, ok)
	})
}

func TestResolve_SugarEquivalence(t *testing.T) {
	c := newTestCoder(t)

	tests := []struct {
		input string
		want  string
	}{
		{"Bosnia and Herzegovina", "BIH"},
		{"Bosnia & Herzegovina", "BIH"},
		{"St Lucia", "LCA"},
		{"St. Lucia", "LCA"},
		{"Saint Lucia", "LCA"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			code, ok := c.Resolve(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestResolve_DefaultNameAlwaysParticipates(t *testing.T) {
	c := newTestCoder(t)

	// SSD declares no rules at all; its registry name still matches.
	code, ok := c.Resolve("south sudan")
	require.True(t, ok)
	assert.Equal(t, "SSD", code)

	// Aliases and the canonical name both land on the same code.
	for _, input := range []string{"Eswatini", "Swaziland"} {
		code, ok := c.Resolve(input)
		require.True(t, ok, input)
		assert.Equal(t, "SWZ", code)
	}
}

func TestResolve_NoMatch(t *testing.T) {
	c := newTestCoder(t)

	for _, input := range []string{"Atlantis", "", "   ", "1234!!", "Toronto"} {
		_, ok := c.Resolve(input)
		assert.False(t, ok, "input %q must not resolve", input)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	c := newTestCoder(t)

	first, ok := c.Resolve("Hong Kong")
	require.True(t, ok)
	for i := 0; i < 10; i++ {
		code, ok := c.Resolve("Hong Kong")
		require.True(t, ok)
		assert.Equal(t, first, code)
	}
}

func TestResolve_TieBrokenByDeclarationOrder(t *testing.T) {
	reg := &stubRegistry{
		codes: []string{"AAA", "BBB"},
		names: map[string]string{"AAA": "Alpha", "BBB": "Beta"},
	}

	t.Run("earlier declaration wins", func(t *testing.T) {
		c, err := Build([]Declaration{
			{Code: "AAA", Rules: []string{"zed"}},
			{Code: "BBB", Rules: []string{"zed"}},
		}, reg)
		require.NoError(t, err)

		code, ok := c.Resolve("zed")
		require.True(t, ok)
		assert.Equal(t, "AAA", code)
	})

	t.Run("declaration order beats registry order", func(t *testing.T) {
		// BBB comes after AAA in the registry but is declared first; with
		// equal explicit orders the rule source decides the tie.
		c, err := Build([]Declaration{
			{Code: "BBB", Order: 5, Rules: []string{"zed"}},
			{Code: "AAA", Order: 5, Rules: []string{"zed"}},
		}, reg)
		require.NoError(t, err)

		code, ok := c.Resolve("zed")
		require.True(t, ok)
		assert.Equal(t, "BBB", code)
	})

	t.Run("undeclared codes keep registry order", func(t *testing.T) {
		wide := &stubRegistry{
			codes: []string{"AAA", "BBB", "CCC"},
			names: map[string]string{"AAA": "Same", "BBB": "Same", "CCC": "Same"},
		}
		c, err := Build(nil, wide)
		require.NoError(t, err)

		code, ok := c.Resolve("Same")
		require.True(t, ok)
		assert.Equal(t, "AAA", code)
	})
}

func TestResolveAll(t *testing.T) {
	c := newTestCoder(t)

	got := c.ResolveAll([]string{"Sudan", "Toronto", "Hong Kong"})
	require.Len(t, got, 3)
	assert.Equal(t, Resolution{Input: "Sudan", Code: "SDN"}, got[0])
	assert.Equal(t, Resolution{Input: "Toronto"}, got[1])
	assert.Equal(t, Resolution{Input: "Hong Kong", Code: "HKG"}, got[2])
}

func TestBuild_UnknownCode(t *testing.T) {
	_, err := Build([]Declaration{
		{Code: "ZZZ", Rules: []string{"nowhere"}},
	}, newStubRegistry())
	require.Error(t, err)

	var unknownErr *UnknownCodeError
	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, "ZZZ", unknownErr.Code)
}

func TestBuild_InvalidRule(t *testing.T) {
	_, err := Build([]Declaration{
		{Code: "USA", Rules: []string{"("}},
	}, newStubRegistry())
	require.Error(t, err)

	var invalidErr *InvalidRuleError
	require.True(t, errors.As(err, &invalidErr))
	assert.Equal(t, "USA", invalidErr.Code)
	assert.Equal(t, "(", invalidErr.Rule)
}

func TestBuild_InvalidExclusion(t *testing.T) {
	_, err := Build([]Declaration{
		{Code: "USA", Rules: []string{"~[bad"}},
	}, newStubRegistry())
	require.Error(t, err)

	var invalidErr *InvalidRuleError
	require.True(t, errors.As(err, &invalidErr))
	assert.Equal(t, "USA", invalidErr.Code)
}

func TestCheckRule(t *testing.T) {
	assert.NoError(t, CheckRule("USA", "usa"))
	assert.NoError(t, CheckRule("USA", ":us"))
	assert.NoError(t, CheckRule("USA", "~states"))
	assert.Error(t, CheckRule("USA", "("))
	assert.Error(t, CheckRule("USA", "~("))
}

func TestCompilePattern_WordBoundaries(t *testing.T) {
	re, err := compilePattern("NER", "niger")
	require.NoError(t, err)

	assert.True(t, re.MatchString("niger"))
	assert.True(t, re.MatchString("republic of niger"))
	assert.False(t, re.MatchString("nigeria"), "pattern must not match mid-word")
}
