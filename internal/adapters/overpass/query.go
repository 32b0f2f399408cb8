package overpass

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/example/treewarden/internal/core/bounds"
)

const queryHeader = "[out:json][timeout:25];"

// TreeQuery renders the point query for natural=tree nodes in box.
// A non-empty genera list adds an anchored regex filter on genus.
func TreeQuery(box bounds.Box, genera []string) string {
	var b strings.Builder
	b.WriteString(queryHeader)
	b.WriteString(`node["natural"="tree"]`)
	if len(genera) > 0 {
		quoted := make([]string, len(genera))
		for i, g := range genera {
			quoted[i] = regexp.QuoteMeta(g)
		}
		fmt.Fprintf(&b, `["genus"~"^(%s)$"]`, strings.Join(quoted, "|"))
	}
	b.WriteString(bbox(box))
	b.WriteString(";out meta;")
	return b.String()
}

// OrchardQuery renders the area query for landuse=orchard ways and relations in box.
func OrchardQuery(box bounds.Box) string {
	bb := bbox(box)
	return queryHeader +
		`(way["landuse"="orchard"]` + bb + `;` +
		`relation["landuse"="orchard"]` + bb + `;);` +
		`out geom;`
}

func bbox(box bounds.Box) string {
	return fmt.Sprintf("(%.7f,%.7f,%.7f,%.7f)", box.South, box.West, box.North, box.East)
}
