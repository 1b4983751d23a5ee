package dataset

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/civic-cli/internal/model"
)

// normalizeName collapses whitespace and title-cases registry names such
// as "TOWER  GROVE SOUTH". Casers are stateful, so each call gets its own.
func normalizeName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	return cases.Title(language.AmericanEnglish).String(strings.ToLower(s))
}

// neighborhoodCode normalizes a raw neighborhood id ("7", "07", "7.0") to
// the two-digit join key.
func neighborhoodCode(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 || f != float64(int(f)) {
		return "", false
	}
	return model.NeighborhoodCode(int(f)), true
}
