package canonical

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/state"
)

func TestMarshal_Basic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"max int64", int64(math.MaxInt64), "9223372036854775807"},
		{"integral float", 153500.0, "153500"},
		{"fraction", 0.5, "0.5"},
		{"negative zero", math.Copysign(0, -1), "0"},
		{"large float", 1e21, "1e+21"},
		{"bool", true, "true"},
		{"null", nil, "null"},
		{"nil slice", []string(nil), "null"},
		{"empty slice", []string{}, "[]"},
		{"empty object", map[string]int{}, "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(out))
		})
	}
}

func TestMarshal_SortedKeys(t *testing.T) {
	out, err := Marshal(map[string]any{
		"zebra": 1,
		"alpha": map[string]int{"b": 1, "a": 2},
		"beta":  []int{3, 2, 1},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":{"a":2,"b":1},"beta":[3,2,1],"zebra":1}`, string(out))
}

func TestMarshal_StructFieldsFollowTags(t *testing.T) {
	type entry struct {
		Month   int     `json:"month"`
		EventID string  `json:"eventId"`
		Cost    float64 `json:"cost"`
	}
	out, err := Marshal(entry{Month: 3, EventID: "outage", Cost: 2500.25})
	require.NoError(t, err)
	assert.Equal(t, `{"cost":2500.25,"eventId":"outage","month":3}`, string(out))
}

func TestMarshal_UTF16Ordering(t *testing.T) {
	out, err := Marshal(map[string]int{"\uE000": 1, "𐀀": 2})
	require.NoError(t, err)
	assert.Equal(t, `{"𐀀":2,"`+"\uE000"+`":1}`, string(out))
}

func TestMarshal_Strings(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no html escaping", "<a&b>", `"<a&b>"`},
		{"quote and backslash", `say "hi" \o/`, `"say \"hi\" \\o/"`},
		{"short escapes", "a\nb\tc", `"a\nb\tc"`},
		{"control char", "\x01", `"\u0001"`},
		{"line separator kept literal", "a\u2028b", "\"a\u2028b\""},
		{"nfc", "e\u0301", "\"\u00e9\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(out))
		})
	}
}

func TestMarshal_RejectsNonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := Marshal(map[string]float64{"doom": f})
		assert.Error(t, err)
		_, err = FormatFloat(f)
		assert.Error(t, err)
	}
}

func TestSum_KnownVector(t *testing.T) {
	d, err := Sum(DomainSnapshot, map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, "7ec420350ae468080a3836a335b0c4e9297fd282d1b6f565fae08d19d3a519c4", d)

	other, err := Sum(DomainTrace, map[string]int{"a": 1})
	require.NoError(t, err)
	assert.NotEqual(t, d, other, "domains separate digests")
}

func TestDigest_Snapshot(t *testing.T) {
	s := state.Fresh()
	s.Budget = 120000
	s.ActiveTags = state.NewTagSet("cloud_dependency")
	snap := state.Snapshot{Internal: s}

	d1, err := Digest(snap)
	require.NoError(t, err)
	assert.Len(t, d1, 64)
	assert.Equal(t, d1, MustDigest(snap.Clone()), "clones hash identically")

	changed := snap.Clone()
	changed.Budget = 119999.5
	assert.NotEqual(t, d1, MustDigest(changed))

	reordered := snap.Clone()
	reordered.ActiveTags = state.NewTagSet("cloud_dependency", "eol_device")
	assert.NotEqual(t, d1, MustDigest(reordered))
}
