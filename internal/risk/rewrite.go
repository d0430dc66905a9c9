package risk

import "strings"

// claimSubstitutions soften absolute claims into defensible language.
// Order matters: longer phrases first so shorter ones don't clobber them,
// and "guaranteed to" ahead of "guaranteed" so the trailing "to" is
// consumed rather than doubled.
var claimSubstitutions = []struct {
	from string
	to   string
}{
	{"will definitely", "can potentially"},
	{"always works", "often works"},
	{"never fails", "rarely fails"},
	{"scientifically proven", "well-documented"},
	{"research proves", "observations indicate"},
	{"studies show", "experience suggests"},
	{"proven to", "shown to potentially"},
	{"guaranteed to", "designed to"},
	{"guaranteed", "designed to"},
	{"guarantee", "designed to"},
	{"100%", "highly"},
}

// RewriteClaimLight replaces absolute claims with softer equivalents and
// reports every substitution made, one entry per occurrence. Matching is
// case-insensitive; replacements are lowercase.
func RewriteClaimLight(content string) (string, []string) {
	result := content
	var changes []string
	for _, sub := range claimSubstitutions {
		var count int
		result, count = replaceFold(result, sub.from, sub.to)
		for i := 0; i < count; i++ {
			changes = append(changes, sub.from+" -> "+sub.to)
		}
	}
	return result, changes
}

// replaceFold replaces every case-insensitive occurrence of from with to
// and reports how many it replaced.
func replaceFold(s, from, to string) (string, int) {
	lower := strings.ToLower(s)
	fromLower := strings.ToLower(from)
	var b strings.Builder
	count := 0
	for {
		i := strings.Index(lower, fromLower)
		if i < 0 {
			b.WriteString(s)
			return b.String(), count
		}
		b.WriteString(s[:i])
		b.WriteString(to)
		s = s[i+len(from):]
		lower = lower[i+len(fromLower):]
		count++
	}
}
