// Package analysis provides bitstream inspection helpers for the studio:
// the longest palindromic substring and run statistics.
package analysis

// LongestPalindrome returns the longest palindromic substring of s using
// Manacher's algorithm, O(n). Ties go to the leftmost occurrence. The
// empty string yields the empty string.
func LongestPalindrome(s string) string {
	if s == "" {
		return ""
	}

	// Transform with separators so even-length palindromes expand around
	// a single center: "abba" -> "^#a#b#b#a#$"
	n := len(s)
	t := make([]byte, 0, 2*n+3)
	t = append(t, '^', '#')
	for i := 0; i < n; i++ {
		t = append(t, s[i], '#')
	}
	t = append(t, '$')

	p := make([]int, len(t))
	center, right := 0, 0
	for i := 1; i < len(t)-1; i++ {
		if i < right {
			mirror := 2*center - i
			p[i] = min(right-i, p[mirror])
		}
		// The ^ and $ sentinels stop the expansion at the edges
		for t[i+1+p[i]] == t[i-1-p[i]] {
			p[i]++
		}
		if i+p[i] > right {
			center = i
			right = i + p[i]
		}
	}

	maxLen, centerIndex := 0, 0
	for i := 1; i < len(t)-1; i++ {
		if p[i] > maxLen {
			maxLen = p[i]
			centerIndex = i
		}
	}
	start := (centerIndex - maxLen - 1) / 2
	return s[start : start+maxLen]
}

// BitStats summarizes a bitstream for display alongside its waveform
type BitStats struct {
	Ones           int `json:"ones"`
	Zeros          int `json:"zeros"`
	LongestOneRun  int `json:"longest_one_run"`
	LongestZeroRun int `json:"longest_zero_run"`
}

// Stats counts ones, zeros and the longest run of each. The zero-run
// length is what the scrambling schemes exist to bound, so it is worth
// surfacing next to every encode.
func Stats(bits string) BitStats {
	var st BitStats
	oneRun, zeroRun := 0, 0
	for i := 0; i < len(bits); i++ {
		if bits[i] == '1' {
			st.Ones++
			oneRun++
			zeroRun = 0
			if oneRun > st.LongestOneRun {
				st.LongestOneRun = oneRun
			}
		} else {
			st.Zeros++
			zeroRun++
			oneRun = 0
			if zeroRun > st.LongestZeroRun {
				st.LongestZeroRun = zeroRun
			}
		}
	}
	return st
}
