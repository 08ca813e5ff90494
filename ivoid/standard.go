package ivoid

import "fmt"

// Standard identifiers for the common VO service protocols, in the
// lowercase form the relational registry stores them in.
var (
	StdConeSearch = MustParse("ivo://ivoa.net/std/conesearch")
	StdSIA        = MustParse("ivo://ivoa.net/std/sia")
	StdSSA        = MustParse("ivo://ivoa.net/std/ssa")
	StdTAP        = MustParse("ivo://ivoa.net/std/tap")
	StdObsCore    = MustParse("ivo://ivoa.net/std/obscore")
	StdRegTAP     = MustParse("ivo://ivoa.net/std/regtap")
)

var standardsByName = map[string]IVOID{
	"conesearch": StdConeSearch,
	"scs":        StdConeSearch,
	"sia":        StdSIA,
	"image":      StdSIA,
	"ssa":        StdSSA,
	"spectrum":   StdSSA,
	"tap":        StdTAP,
	"table":      StdTAP,
}

// StandardID resolves a short protocol name ("tap", "sia", "scs", ...) to
// its standard identifier. The lookup accepts the aliases pyVO-style tools
// use for the same protocols.
func StandardID(name string) (IVOID, bool) {
	id, ok := standardsByName[normalizeName(name)]
	return id, ok
}

// MustStandardID resolves a short protocol name or panics.
func MustStandardID(name string) IVOID {
	id, ok := StandardID(name)
	if !ok {
		panic(fmt.Sprintf("no standard identifier for service type %q", name))
	}
	return id
}

func normalizeName(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c == ' ' || c == '-' || c == '_' {
			continue
		}
		out = append(out, c)
	}
	return string(out)
}
