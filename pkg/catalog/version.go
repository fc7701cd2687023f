package catalog

import (
	"strconv"
	"strings"
)

// CompareVersions compares dotted numeric versions component by component.
// Missing trailing components count as zero; when that makes two versions
// equal, the one with more components is greater, so "2.1.0" > "2.1".
// NoVersion (or an empty string) sorts below everything else. Non-numeric
// components count as zero.
func CompareVersions(a, b string) int {
	aNone, bNone := isNoVersion(a), isNoVersion(b)
	switch {
	case aNone && bNone:
		return 0
	case aNone:
		return -1
	case bNone:
		return 1
	}

	as := strings.Split(strings.TrimSpace(a), ".")
	bs := strings.Split(strings.TrimSpace(b), ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		av, bv := component(as, i), component(bs, i)
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return compareInt(int64(len(as)), int64(len(bs)))
}

func isNoVersion(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == NoVersion
}

func component(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	n, err := strconv.Atoi(parts[i])
	if err != nil {
		return 0
	}
	return n
}
