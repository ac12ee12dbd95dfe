package anchor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scopepatch/internal/textutil"
)

const markerSrc = `a
// region: HOOKS
hook1();
  // region HOOKS
  inner();
  // endregion HOOKS
// endregion: HOOKS
#region py
x = 1
#endregion py
// region ORPHAN
z
`

func TestMarkersPairsNestedAndHashStyle(t *testing.T) {
	got := Markers(textutil.NewSource(markerSrc))
	assert.Equal(t, []MarkerRegion{
		{Name: "HOOKS", Open: 1, Close: 6},
		{Name: "HOOKS", Open: 3, Close: 5},
		{Name: "py", Open: 7, Close: 9},
	}, got)
}

func TestLocateMarkerSpansBody(t *testing.T) {
	src := textutil.NewSource(markerSrc)
	site, err := Locate(src, Anchor{Kind: KindMarker, Name: "py"})
	require.NoError(t, err)
	assert.Equal(t, 7, site.Line)
	assert.Equal(t, "x = 1\n", src.Text()[site.Start:site.End])

	_, err = Locate(src, Anchor{Kind: KindMarker, Name: "HOOKS", Occurrence: OccurrenceUnique})
	assert.ErrorIs(t, err, ErrAmbiguous)

	_, err = Locate(src, Anchor{Kind: KindMarker, Name: "ORPHAN"})
	assert.ErrorIs(t, err, ErrNotFound)
}
