package ingest

import (
	"regexp"
	"strconv"
)

// Matches gift-thanks messages like "0.52元，@某人", "2元,@xxx", "1.00 元 ，@xxx":
// an amount, the 元 unit, optional separators, then an @ mention.
var redpacketPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*元\s*[,， ]*\s*@`)

// DetectRedpacketThanks reports whether text acknowledges a monetary gift and
// extracts the amount. Only the first match in the text is considered. A
// matching message whose amount fails to parse still reports matched=true with
// a nil amount.
func DetectRedpacketThanks(text string) (bool, *float64) {
	if text == "" {
		return false, nil
	}
	m := redpacketPattern.FindStringSubmatch(text)
	if m == nil {
		return false, nil
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return true, nil
	}
	return true, &amount
}
