// Package cnpj validates the 14-digit Brazilian company registration
// number printed on every slip, using its two mod-11 check digits.
package cnpj

import "github.com/lojista-tools/recibo/internal/normalize"

var (
	firstWeights  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	secondWeights = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// Valid reports whether id is a structurally valid CNPJ: exactly 14
// digits, not all identical, last two digits matching the computed check
// digits.
func Valid(id string) bool {
	if len(id) != 14 {
		return false
	}
	same := true
	for i := 0; i < 14; i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
		if id[i] != id[0] {
			same = false
		}
	}
	if same {
		return false
	}
	d1 := checkDigit(id, firstWeights)
	d2 := checkDigit(id, secondWeights)
	return int(id[12]-'0') == d1 && int(id[13]-'0') == d2
}

func checkDigit(id string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(id[i]-'0') * w
	}
	if r := sum % 11; r >= 2 {
		return 11 - r
	}
	return 0
}

// FindValid slides a 14-digit window over the confusable-corrected digit
// runs of each source and returns the first window that validates, or ""
// when none does. Windows are tried left to right, sources in order,
// duplicates skipped.
func FindValid(sources []string) string {
	seen := make(map[string]struct{})
	for _, src := range sources {
		digits := normalize.Digits(src)
		for i := 0; i+14 <= len(digits); i++ {
			window := digits[i : i+14]
			if _, ok := seen[window]; ok {
				continue
			}
			seen[window] = struct{}{}
			if Valid(window) {
				return window
			}
		}
	}
	return ""
}
