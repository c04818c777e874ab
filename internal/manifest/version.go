package manifest

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// floatPrefix matches the longest prefix parseFloat would consume.
var floatPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// ParseVersionNumber mimics JavaScript parseFloat: leading whitespace is
// skipped and the longest numeric prefix is parsed, so "1.10" yields 1.1 and
// "2.0-beta" yields 2. ok is false when no numeric prefix exists.
func ParseVersionNumber(label string) (value float64, ok bool) {
	s := strings.TrimLeft(label, " \t\n\r\v\f")
	m := floatPrefix.FindString(s)
	if m == "" {
		return math.NaN(), false
	}
	switch strings.TrimLeft(m, "+-") {
	case "Infinity":
		if strings.HasPrefix(m, "-") {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}
	// Out of range exponents saturate to ±Inf or 0, as parseFloat does.
	v, _ := strconv.ParseFloat(m, 64)
	return v, true
}

// SortVersions returns labels ordered by parsed value, highest first. Input
// is first put in lexicographic order so equal values resolve the same way
// every time; labels with no numeric prefix go last.
func SortVersions(labels []string) []string {
	out := append([]string(nil), labels...)
	sort.Strings(out)

	type keyed struct {
		label string
		value float64
		ok    bool
	}
	ks := make([]keyed, len(out))
	for i, l := range out {
		v, ok := ParseVersionNumber(l)
		ks[i] = keyed{label: l, value: v, ok: ok}
	}

	sort.SliceStable(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		if a.ok != b.ok {
			return a.ok
		}
		if !a.ok {
			return false
		}
		return a.value > b.value
	})

	for i := range ks {
		out[i] = ks[i].label
	}
	return out
}

// LatestVersion returns the label with the greatest parsed value, or "" for
// an empty set. Note this is a numeric parse, not a semantic version compare.
func LatestVersion(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	return SortVersions(labels)[0]
}
