package host

import (
	"strconv"
	"strings"
)

// CompareVersions compares two dotted version strings ("1.12.4") numerically,
// component by component. Missing components count as zero, so "1.12" equals
// "1.12.0". Non-numeric components (e.g. "-dev" suffixes) compare as zero.
func CompareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(as) {
			av = versionComponent(as[i])
		}
		if i < len(bs) {
			bv = versionComponent(bs[i])
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

func versionComponent(s string) int {
	// "mainline" or "12-dev" style components: keep the leading digits.
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return v
}
