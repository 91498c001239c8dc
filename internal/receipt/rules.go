package receipt

import (
	"regexp"
	"strings"

	"github.com/lojista-tools/recibo/internal/fuzzy"
	"github.com/lojista-tools/recibo/internal/normalize"
)

// Static reference data. Loaded once, read-only afterwards.
var (
	// ufList holds the 27 federative unit codes, used to split the
	// city/state line from the right.
	ufList = []string{
		"AC", "AL", "AM", "AP", "BA", "CE", "DF", "ES", "GO", "MA",
		"MG", "MS", "MT", "PA", "PB", "PE", "PI", "PR", "RJ", "RN",
		"RO", "RR", "RS", "SC", "SE", "SP", "TO",
	}
	ufSet = func() map[string]struct{} {
		m := make(map[string]struct{}, len(ufList))
		for _, uf := range ufList {
			m[uf] = struct{}{}
		}
		return m
	}()

	// ufCorrections repairs state codes the recognizer reads wrong.
	ufCorrections = map[string]string{
		"HT": "MT",
		"RM": "RN",
	}

	// roiBrands is checked by substring against the brand/mode region.
	roiBrands = []string{"MASTERCARD", "VISA", "ELO", "AMEX", "HIPERCARD"}

	channelLexicon = fuzzy.Lexicon{"ONL-C", "OFF-C", "CHI-C"}
	viaLexicon     = fuzzy.Lexicon{"VIA - CLIENTE", "VIA CLIENTE", "VIA-CLIENTE"}
	modeLexicon    = fuzzy.Lexicon{
		"DEBITO", "CREDITO A VISTA", "CREDITO PARCELADO",
		"PARCELADO LOJA", "PARCELADO ADM",
	}
)

// Whole-text field patterns. Matching is case-insensitive where the slip
// mixes case; find-all scans feed candidate voting in region mode; capture
// groups pull sub-tokens out.
var (
	reBrand     = regexp.MustCompile(`\b(MASTERCARD|MASTER CARD|VISA|ELO|AMEX|AMERICAN EXPRESS|HIPERCARD|DINERS CLUB|ALELO)\b`)
	reMode      = regexp.MustCompile(`(?i)CREDITO A VISTA|DEBITO|CREDITO PARCELADO|PARCELADO LOJA|PARCELADO ADM`)
	reMask      = regexp.MustCompile(`\*{2,}[\s*]*\d{4}`)
	reMaskROI   = regexp.MustCompile(`\*{6,16}\d{4}`)
	reLast4     = regexp.MustCompile(`(\d{4})$`)
	reViaField  = regexp.MustCompile(`(?i)VIA\s*-?\s*([A-ZÇÃÉÊÍÓÚ ]+)`)
	rePOSField  = regexp.MustCompile(`(?i)POS-(\d{4,})`)
	reDocField  = regexp.MustCompile(`(?i)(?:DOC|NSU)-(\d{3,})`)
	reAuthField = regexp.MustCompile(`(?i)AUT-(\d{3,})`)
	reDate      = regexp.MustCompile(`\b(\d{2})/(\d{2})/(\d{2,4})\b`)
	reDateROI   = regexp.MustCompile(`([0-3]\d)/(0\d|1[0-2])/(\d{2,4})`)
	reTime      = regexp.MustCompile(`\b([0-2]\d):([0-5]\d)\b`)
	reTimeROI   = regexp.MustCompile(`([0-2]?\d):([0-5]\d)`)
	reChannel   = regexp.MustCompile(`ONL-C|ONL-[A-Z]|CHIP|MAG`)
	reOperation = regexp.MustCompile(`(?i)VENDA A CREDITO|VENDA A DEBITO|VENDA A VISTA`)
	reAmount    = regexp.MustCompile(`\d{1,3}(?:\.\d{3})*,\d{2}`)
	reCNPJLine  = regexp.MustCompile(`(?i)CNPJ`)
	reCNPJNum   = regexp.MustCompile(`\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}|\d{14}`)

	reEnumJunk   = regexp.MustCompile(`[^A-Z0-9]+`)
	reEnumEdges  = regexp.MustCompile(`^_+|_+$`)
	reEnumRuns   = regexp.MustCompile(`__+`)
	reNonToken   = regexp.MustCompile(`[^A-Z0-9:=\-\s]`)
	reNonDT      = regexp.MustCompile(`[^0-9A-Z/:\-\s]`)
	reLineBreaks = regexp.MustCompile(`\n+`)
)

// formatEnum collapses free text into an enum-shaped token:
// "Crédito à Vista" becomes "CREDITO_A_VISTA".
func formatEnum(value string) string {
	clean := normalize.CleanUpper(value)
	clean = reEnumJunk.ReplaceAllString(clean, "_")
	clean = reEnumEdges.ReplaceAllString(clean, "")
	clean = reEnumRuns.ReplaceAllString(clean, "_")
	return clean
}

// toISODate builds YYYY-MM-DD from slip date parts. Two-digit years up to
// 30 land in 20YY, later ones in 19YY.
func toISODate(day, month, year string) string {
	if len(year) == 2 {
		if year <= "30" {
			year = "20" + year
		} else {
			year = "19" + year
		}
	}
	if len(day) == 1 {
		day = "0" + day
	}
	if len(month) == 1 {
		month = "0" + month
	}
	return year + "-" + month + "-" + day
}

// tokenRegexes caches the per-prefix pattern used by extractTokenDigits.
var tokenRegexes = map[string]*regexp.Regexp{
	"POS": regexp.MustCompile(`POS[\s:=-]*([A-Z0-9]+)`),
	"DOC": regexp.MustCompile(`DOC[\s:=-]*([A-Z0-9]+)`),
	"NSU": regexp.MustCompile(`NSU[\s:=-]*([A-Z0-9]+)`),
	"AUT": regexp.MustCompile(`AUT[\s:=-]*([A-Z0-9]+)`),
}

// extractTokenDigits scans every source for runs following the given
// prefix ("POS", "DOC", "AUT", "NSU") and returns the last run that
// corrects to at least minDigits digits, or "".
func extractTokenDigits(prefix string, sources []string, minDigits int) string {
	re := tokenRegexes[prefix]
	if re == nil {
		return ""
	}
	var matches []string
	for _, src := range sources {
		cleaned := reNonToken.ReplaceAllString(normalize.CleanUpper(src), " ")
		for _, m := range re.FindAllStringSubmatch(cleaned, -1) {
			matches = append(matches, m[1])
		}
	}
	for i := len(matches) - 1; i >= 0; i-- {
		digits := normalize.Digits(matches[i])
		if digits == "" {
			continue
		}
		if minDigits == 0 || len(digits) >= minDigits {
			return digits
		}
	}
	return ""
}

// voteAmount collects every pt-BR amount found across the sources (the
// last match per source) and picks the most frequent candidate, breaking
// ties by the lowest total edit distance to the other candidates.
func voteAmount(sources []string) string {
	var candidates []string
	for _, src := range sources {
		all := reAmount.FindAllString(src, -1)
		if len(all) > 0 {
			candidates = append(candidates, all[len(all)-1])
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	var unique []string
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			unique = append(unique, c)
		}
	}
	best := unique[0]
	bestCount := 0
	bestDistance := -1
	for _, candidate := range unique {
		count := 0
		for _, c := range candidates {
			if c == candidate {
				count++
			}
		}
		distance := 0
		for _, other := range unique {
			if other != candidate {
				distance += fuzzy.Distance(candidate, other)
			}
		}
		if count > bestCount || (count == bestCount && (bestDistance < 0 || distance < bestDistance)) {
			best, bestCount, bestDistance = candidate, count, distance
		}
	}
	return best
}

// splitCityState scans tokens from the right for a state code (after the
// misread-code corrections) and splits the line into city and state.
func splitCityState(tokens []string) (city, state string) {
	idx := -1
	for i := len(tokens) - 1; i >= 0; i-- {
		corrected := tokens[i]
		if fix, ok := ufCorrections[corrected]; ok {
			corrected = fix
		}
		if _, ok := ufSet[corrected]; ok {
			tokens[i] = corrected
			idx = i
			break
		}
	}
	if idx >= 0 {
		return strings.Join(tokens[:idx], " "), tokens[idx]
	}
	return strings.Join(tokens, " "), ""
}
