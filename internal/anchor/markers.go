package anchor

import (
	"regexp"
	"sort"
	"strings"

	"scopepatch/internal/textutil"
)

// Marker regions are declared with paired comment lines (case-insensitive):
//
//	// region NAME        // endregion NAME
//	// region: NAME       // endregion: NAME
//	#region NAME          #endregion NAME
//
// Nested regions are supported, even with identical names (a stack per name).
// Unpaired markers are ignored.
var reMarker = regexp.MustCompile(`(?i)^\s*(?://|#)\s*(region|endregion)\s*:?\s*([A-Za-z0-9_.\-]+)\s*$`)

// MarkerRegion is a matched marker pair; Open and Close are the 0-based
// indices of the two marker lines.
type MarkerRegion struct {
	Name  string
	Open  int
	Close int
}

// Markers returns every marker pair in src sorted by (Open, Close).
func Markers(src textutil.Source) []MarkerRegion {
	var out []MarkerRegion
	starts := make(map[string][]int)
	for i := 0; i < src.Len(); i++ {
		m := reMarker.FindStringSubmatch(textutil.Content(src.Line(i)))
		if m == nil {
			continue
		}
		name := m[2]
		switch strings.ToLower(m[1]) {
		case "region":
			starts[name] = append(starts[name], i)
		case "endregion":
			stack := starts[name]
			if n := len(stack); n > 0 {
				out = append(out, MarkerRegion{Name: name, Open: stack[n-1], Close: i})
				starts[name] = stack[:n-1]
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Open != out[j].Open {
			return out[i].Open < out[j].Open
		}
		return out[i].Close < out[j].Close
	})
	return out
}

// scanMarkers turns the regions called name into sites. The site sits on the
// opening marker line and spans the body between the markers, so a
// region-match replacement rewrites exactly the lines inside.
func scanMarkers(src textutil.Source, name string) []Site {
	var out []Site
	for _, r := range Markers(src) {
		if r.Name != name {
			continue
		}
		out = append(out, Site{
			Line:  r.Open,
			Start: src.LineStart(r.Open + 1),
			End:   src.LineStart(r.Close),
		})
	}
	return out
}
