package market

import (
	"regexp"
	"strings"
)

// contractCode matches ROOT + month letter + 1-2 digit year, e.g. MESZ4, ESH25.
// The trailing digits anchor the match so the month is always the last
// letter before them, which keeps roots like MNQ or M2K intact.
var contractCode = regexp.MustCompile(`^([A-Z0-9]+?)([FGHJKMNQUVXZ])(\d{1,2})$`)

// expiryDate matches the "ROOT MM-YY" form some platforms export.
var expiryDate = regexp.MustCompile(`^([A-Z0-9]+)\s+\d{2}-\d{2}$`)

// NormalizeSymbol reduces a broker contract symbol to its root when the
// root is a known instrument. Unknown symbols are returned upper-cased
// and trimmed.
//
//	MESZ4     -> MES
//	ESH25     -> ES
//	/NQM5     -> NQ
//	ES 03-25  -> ES
//	MNQZ4.CME -> MNQ
func NormalizeSymbol(s string) string {
	return normalize(s, inCatalog)
}

func inCatalog(sym string) bool {
	_, ok := Instruments[sym]
	return ok
}

// normalize strips exchange decorations and reduces sym to a root that
// known accepts.
func normalize(s string, known func(string) bool) string {
	sym := strings.ToUpper(strings.TrimSpace(s))
	sym = strings.TrimPrefix(sym, "/")
	if i := strings.IndexByte(sym, '.'); i > 0 {
		sym = sym[:i]
	}
	if i := strings.IndexByte(sym, ':'); i > 0 {
		sym = sym[:i]
	}
	if sym == "" || known(sym) {
		return sym
	}

	if m := expiryDate.FindStringSubmatch(sym); m != nil && known(m[1]) {
		return m[1]
	}
	if m := contractCode.FindStringSubmatch(sym); m != nil && known(m[1]) {
		return m[1]
	}
	return sym
}
