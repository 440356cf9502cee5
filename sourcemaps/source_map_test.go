package sourcemaps

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// TestParseSourceMapCopyForward verifies that fully elided elements repeat the previous element.
func TestParseSourceMapCopyForward(t *testing.T) {
	sourceMap, err := ParseSourceMap("4:5:6:-;;;")
	assert.NoError(t, err)
	assert.Equal(t, 4, len(sourceMap))
	for i, element := range sourceMap {
		assert.Equal(t, i, element.Index)
		assert.Equal(t, 4, element.Offset)
		assert.Equal(t, 5, element.Length)
		assert.Equal(t, 6, element.FileID)
		assert.Equal(t, JumpTypeWithin, element.JumpType)
	}
}

// TestParseSourceMapFieldElision verifies that individually elided fields copy forward while provided
// fields update the running element.
func TestParseSourceMapFieldElision(t *testing.T) {
	sourceMap, err := ParseSourceMap("1:2:3:a;;4:5:6:b;;;")
	assert.NoError(t, err)
	assert.Equal(t, 6, len(sourceMap))

	assert.Equal(t, SourceMapElement{Index: 0, Offset: 1, Length: 2, FileID: 3, JumpType: "a"}, sourceMap[0])
	assert.Equal(t, SourceMapElement{Index: 1, Offset: 1, Length: 2, FileID: 3, JumpType: "a"}, sourceMap[1])
	assert.Equal(t, SourceMapElement{Index: 2, Offset: 4, Length: 5, FileID: 6, JumpType: "b"}, sourceMap[2])
	assert.Equal(t, SourceMapElement{Index: 5, Offset: 4, Length: 5, FileID: 6, JumpType: "b"}, sourceMap[5])

	// A partial element updates only the provided fields.
	sourceMap, err = ParseSourceMap("1:2:3:a;7")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(sourceMap))
	assert.Equal(t, SourceMapElement{Index: 1, Offset: 7, Length: 2, FileID: 3, JumpType: "a"}, sourceMap[1])
}

// TestParseSourceMapFirstElement verifies unset defaults for missing fields on the first element, negative
// sentinels on the wire, and the rejection of a fully elided first element.
func TestParseSourceMapFirstElement(t *testing.T) {
	element, err := ParseSourceMapElement("4:5:6")
	assert.NoError(t, err)
	assert.Equal(t, 4, element.Offset)
	assert.Equal(t, 5, element.Length)
	assert.Equal(t, 6, element.FileID)
	assert.Equal(t, JumpTypeNone, element.JumpType)

	// A wire value of -1 resolves to the unset sentinel.
	element, err = ParseSourceMapElement("-1:-1:-1")
	assert.NoError(t, err)
	assert.Equal(t, Unset, element.Offset)
	assert.Equal(t, Unset, element.Length)
	assert.Equal(t, Unset, element.FileID)

	// A fully elided first element has nothing to copy from.
	_, err = ParseSourceMap(";1:2:3:a")
	assert.True(t, errors.Is(err, ErrMalformedSourceMap))
}

// TestParseSourceMapEmpty verifies that an empty source map string decodes to an empty map.
func TestParseSourceMapEmpty(t *testing.T) {
	sourceMap, err := ParseSourceMap("")
	assert.NoError(t, err)
	assert.Equal(t, 0, len(sourceMap))
}

// TestParseSourceMapMalformedField verifies that non-numeric field data is rejected.
func TestParseSourceMapMalformedField(t *testing.T) {
	_, err := ParseSourceMap("x:2:3:a")
	assert.True(t, errors.Is(err, ErrMalformedSourceMap))

	_, err = ParseSourceMap("1:2:3:a;4:y")
	assert.True(t, errors.Is(err, ErrMalformedSourceMap))
}

// TestSourceMapRoundTrip verifies that serializing a decoded source map reproduces an encoding which decodes
// to the same element sequence, using a mapping taken from real solc output.
func TestSourceMapRoundTrip(t *testing.T) {
	encoded := "57:856:0:-:0;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;:::i;:::-;;:::o;;;;;;:::i;;;;;;;;;;;;;;;;;;:::-;;;;;;;145:109;;;;;;;;;;;;;;;:::i;:::-;;;;;;;;;;"
	sourceMap, err := ParseSourceMap(encoded)
	assert.NoError(t, err)

	serialized := sourceMap.Serialize()
	reparsed, err := ParseSourceMap(serialized)
	assert.NoError(t, err)
	assert.Equal(t, sourceMap, reparsed)

	// Serializing a hand-built sequence must survive a decode round trip as well.
	handBuilt := SourceMap{
		{Index: 0, Offset: 10, Length: 20, FileID: 0, JumpType: JumpTypeNone},
		{Index: 1, Offset: 10, Length: 20, FileID: 0, JumpType: JumpTypeNone},
		{Index: 2, Offset: 35, Length: 20, FileID: 0, JumpType: JumpTypeIn},
		{Index: 3, Offset: Unset, Length: Unset, FileID: Unset, JumpType: JumpTypeOut},
	}
	reparsed, err = ParseSourceMap(handBuilt.Serialize())
	assert.NoError(t, err)
	assert.Equal(t, handBuilt, reparsed)
}
