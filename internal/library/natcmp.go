package library

// naturalCompare orders strings the way a human would sort filenames with
// embedded numbers (track9.mp3 before track10.mp3), used to compare
// filenames in tree track ordering when disc and tracknumber are equal.
func naturalCompare(a, b string) int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]
		if isDigit(ca) && isDigit(cb) {
			ni, na := scanNumber(a, i)
			nj, nb := scanNumber(b, j)
			if na != nb {
				if na < nb {
					return -1
				}
				return 1
			}
			i, j = ni, nj
			continue
		}
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		i++
		j++
	}
	switch {
	case i < len(a):
		return 1
	case j < len(b):
		return -1
	default:
		return 0
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// scanNumber reads consecutive digits starting at pos, returning the
// position just past them and their numeric value (leading zeros ignored
// for comparison).
func scanNumber(s string, pos int) (int, uint64) {
	start := pos
	for pos < len(s) && isDigit(s[pos]) {
		pos++
	}
	var n uint64
	for k := start; k < pos; k++ {
		n = n*10 + uint64(s[k]-'0')
	}
	return pos, n
}
