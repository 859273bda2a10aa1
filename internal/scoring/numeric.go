package scoring

import "strconv"

// extractNumericToken scans response text for the first number-like token:
// the first maximal digit run, with an optional leading sign and at most one
// decimal point. Returns the parsed value and whether a token was found.
//
// "The answer is 7 apples" yields 7; "about -3.5 degrees" yields -3.5;
// "no numeric content" yields no token.
func extractNumericToken(s string) (float64, bool) {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			continue
		}

		start := i
		// Include an immediately preceding sign or decimal point, and a
		// sign before that point (e.g. "-.5").
		if start > 0 && s[start-1] == '.' {
			start--
		}
		if start > 0 && (s[start-1] == '-' || s[start-1] == '+') {
			start--
		}

		end := i
		seenPoint := start < i && s[i-1] == '.'
		for end < len(s) {
			switch {
			case isDigit(s[end]):
				end++
			case s[end] == '.' && !seenPoint && end+1 < len(s) && isDigit(s[end+1]):
				seenPoint = true
				end++
			default:
				goto done
			}
		}
	done:
		value, err := strconv.ParseFloat(s[start:end], 64)
		if err != nil {
			// A maximal digit run always parses; guard anyway and keep
			// scanning past this run.
			i = end
			continue
		}
		return value, true
	}
	return 0, false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
