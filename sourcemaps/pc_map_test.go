package sourcemaps

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// TestParsePCMap verifies parsing of a valid pc-map from a compiler's output.
func TestParsePCMap(t *testing.T) {
	parsed, err := ParsePCMap([]byte(`{"186": [10, 20, 10, 40]}`))
	assert.NoError(t, err)
	assert.Equal(t, 1, len(parsed))
	assert.Equal(t, PCMapItem{LineStart: 10, ColumnStart: 20, LineEnd: 10, ColumnEnd: 40}, parsed[186])
	assert.Equal(t, [4]int{10, 20, 10, 40}, parsed[186].Location())
}

// TestParsePCMapMissingLineInfo verifies that null entries and all-null location spans both resolve to
// fully unset items.
func TestParsePCMapMissingLineInfo(t *testing.T) {
	empty := PCMapItem{LineStart: Unset, ColumnStart: Unset, LineEnd: Unset, ColumnEnd: Unset}

	parsed, err := ParsePCMap([]byte(`{"186": null}`))
	assert.NoError(t, err)
	assert.Equal(t, 1, len(parsed))
	assert.Equal(t, empty, parsed[186])

	parsed, err = ParsePCMap([]byte(`{"186": [null, null, null, null]}`))
	assert.NoError(t, err)
	assert.Equal(t, 1, len(parsed))
	assert.Equal(t, empty, parsed[186])
}

// TestParsePCMapObjectForm verifies the full object entry shape carrying a location and a dev annotation.
func TestParsePCMapObjectForm(t *testing.T) {
	parsed, err := ParsePCMap([]byte(`{"7": {"location": [3, 0, 3, 15], "dev": "dev: assert"}, "12": {"location": null}}`))
	assert.NoError(t, err)
	assert.Equal(t, 2, len(parsed))
	assert.Equal(t, PCMapItem{LineStart: 3, ColumnStart: 0, LineEnd: 3, ColumnEnd: 15, Dev: "dev: assert"}, parsed[7])
	assert.Equal(t, PCMapItem{LineStart: Unset, ColumnStart: Unset, LineEnd: Unset, ColumnEnd: Unset}, parsed[12])
}

// TestParsePCMapEmpty verifies the parsing of an empty pc-map.
func TestParsePCMapEmpty(t *testing.T) {
	parsed, err := ParsePCMap([]byte(`{}`))
	assert.NoError(t, err)
	assert.Equal(t, 0, len(parsed))
}

// TestPCMapLookupAndAssign verifies point lookups and in-place assignment with the normalization rule applied.
func TestPCMapLookupAndAssign(t *testing.T) {
	m := make(PCMap)

	_, err := m.Get(186)
	assert.True(t, errors.Is(err, ErrPCNotFound))

	ten, twenty := 10, 20
	m.SetLocation(186, []*int{&ten, &twenty, &ten, &twenty})
	value, err := m.Get(186)
	assert.NoError(t, err)
	assert.NotNil(t, value.Location)
	assert.Nil(t, value.Dev)

	dev := "dev: overflow"
	m.Set(204, &PCMapValue{Dev: &dev})
	parsed, err := m.Parse()
	assert.NoError(t, err)
	assert.Equal(t, PCMapItem{LineStart: 10, ColumnStart: 20, LineEnd: 10, ColumnEnd: 20}, parsed[186])
	assert.Equal(t, PCMapItem{LineStart: Unset, ColumnStart: Unset, LineEnd: Unset, ColumnEnd: Unset, Dev: "dev: overflow"}, parsed[204])
}

// TestParsePCMapInvalid verifies rejection of non-integer keys and wrong-arity location spans.
func TestParsePCMapInvalid(t *testing.T) {
	_, err := ParsePCMap([]byte(`{"abc": null}`))
	assert.Error(t, err)

	_, err = ParsePCMap([]byte(`{"186": [10, 20]}`))
	assert.Error(t, err)
}
