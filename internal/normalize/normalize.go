// Package normalize cleans up recognizer output from Cielo payment slips.
//
// The recognizer confuses visually similar glyphs (O/0, I/1, S/5), breaks
// field prefixes apart ("POS 123" for "POS-123") and mangles the handful of
// anchor tokens the extractor keys on (CNPJ, VIA, ONL-C). Normalize rewrites
// a recognized block into a canonical form, preserving line order.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// confusableDigits maps letters to the digit they are commonly misread as.
// H expands to "11" (two strokes).
var confusableDigits = map[rune]string{
	'O': "0", 'o': "0",
	'Q': "0", 'q': "0",
	'D': "0", 'd': "0",
	'C': "0", 'c': "0",
	'U': "0", 'u': "0",
	'I': "1", 'i': "1",
	'L': "1", 'l': "1",
	'Z': "2", 'z': "2",
	'E': "3", 'e': "3",
	'A': "4", 'a': "4",
	'S': "5", 's': "5",
	'G': "6", 'g': "6",
	'T': "7", 't': "7",
	'B': "8", 'b': "8",
	'H': "11", 'h': "11",
}

// digitLetters is the reverse correction for text that should be letters
// only, e.g. merchant names where "PADAR1A" was recognized for "PADARIA".
var digitLetters = strings.NewReplacer(
	"0", "O",
	"1", "I",
	"5", "S",
	"8", "B",
	"6", "G",
)

var (
	reLineEnd    = strings.NewReplacer("\r\n", "\n", "\r", "\n", " ", " ")
	reDashes     = regexp.MustCompile("[–—−]")
	rePipes      = regexp.MustCompile(`[|¦]`)
	reDblQuotes  = regexp.MustCompile("[“”]")
	reQuote      = regexp.MustCompile("[’]")
	reCNPJToken  = regexp.MustCompile(`(?i)\b[COQ][NWIU]P[J1]`)
	reCliente    = regexp.MustCompile(`(?i)\bCL1ENTE\b`)
	reVia        = regexp.MustCompile(`(?i)\bV1A\b`)
	reONLC       = regexp.MustCompile(`(?i)\bONL[\s-]+C\b`)
	reSAN        = regexp.MustCompile(`(?i)\bSAN\b`)
	reSlashN     = regexp.MustCompile(`(?i)S\s*/\s*N`)
	reCredVista  = regexp.MustCompile(`(?i)CRED[IÍ]TO\s*[AÀ]\s*V[IÍ]STA`)
	reVendaCred  = regexp.MustCompile(`(?i)VENDA\s*A\s*CRED[IÍ]TO`)
	reViaCliente = regexp.MustCompile(`(?i)VIA\s*-?\s*CLIENTE`)
	rePrefixRun  = regexp.MustCompile(`(?i)(POS|DOC|AUT)[\s-]*([0-9O]+)`)
	reSandwich   = []*regexp.Regexp{
		regexp.MustCompile(`(\d)O(\d)`),
		regexp.MustCompile(`(\d)I(\d)`),
		regexp.MustCompile(`(\d)B(\d)`),
		regexp.MustCompile(`(\d)S(\d)`),
		regexp.MustCompile(`(\d)G(\d)`),
	}
	sandwichDigit = map[byte]string{'O': "0", 'I': "1", 'B': "8", 'S': "5", 'G': "6"}

	reTabs        = regexp.MustCompile(`[\t\f\v]+`)
	reSpaces      = regexp.MustCompile(` +`)
	reNonMerchant = regexp.MustCompile(`[^A-Z0-9/\-\s]`)
	reLetterO     = strings.NewReplacer("O", "0", "o", "0")
	foldTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Normalize rewrites a raw recognized block into canonical form. Line
// breaks are preserved; each line has its whitespace collapsed and trimmed.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	text := reLineEnd.Replace(raw)
	text = reDashes.ReplaceAllString(text, "-")
	text = rePipes.ReplaceAllString(text, "I")
	text = reDblQuotes.ReplaceAllString(text, `"`)
	text = reQuote.ReplaceAllString(text, "'")

	text = reCNPJToken.ReplaceAllString(text, "CNPJ")
	text = reCliente.ReplaceAllString(text, "CLIENTE")
	text = reVia.ReplaceAllString(text, "VIA")
	text = reONLC.ReplaceAllString(text, "ONL-C")
	text = reSAN.ReplaceAllString(text, "S/N")
	text = reSlashN.ReplaceAllString(text, "S/N")
	text = reCredVista.ReplaceAllString(text, "CREDITO A VISTA")
	text = reVendaCred.ReplaceAllString(text, "VENDA A CREDITO")
	text = reViaCliente.ReplaceAllString(text, "VIA - CLIENTE")

	text = rePrefixRun.ReplaceAllStringFunc(text, func(m string) string {
		sub := rePrefixRun.FindStringSubmatch(m)
		return strings.ToUpper(sub[1]) + "-" + reLetterO.Replace(sub[2])
	})

	for _, re := range reSandwich {
		letter := re.String()[4]
		text = re.ReplaceAllString(text, "${1}"+sandwichDigit[letter]+"$2")
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = CollapseSpaces(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Fold strips diacritics: "CRÉDITO" becomes "CREDITO".
func Fold(s string) string {
	out, _, err := transform.String(foldTransform, s)
	if err != nil {
		return s
	}
	return out
}

// CleanUpper folds diacritics and uppercases.
func CleanUpper(s string) string {
	return strings.ToUpper(Fold(s))
}

// CollapseSpaces collapses runs of intra-line whitespace and trims.
func CollapseSpaces(s string) string {
	s = reTabs.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ConfusablesToDigits replaces every letter with the digit it is commonly
// misread as. Meant for text that should be numeric.
func ConfusablesToDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if d, ok := confusableDigits[r]; ok {
			b.WriteString(d)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Digits applies confusable correction and keeps only the digits.
func Digits(s string) string {
	corrected := ConfusablesToDigits(s)
	var b strings.Builder
	b.Grow(len(corrected))
	for _, r := range corrected {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DigitsToLetters applies the reverse correction token by token: only
// tokens that contain at least one letter get their digits rewritten, so
// street numbers survive while "PADAR1A" becomes "PADARIA".
func DigitsToLetters(s string) string {
	tokens := strings.Split(s, " ")
	for i, tok := range tokens {
		if strings.ContainsFunc(tok, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
			tokens[i] = digitLetters.Replace(tok)
		}
	}
	return CollapseSpaces(strings.Join(tokens, " "))
}

// SanitizeMerchantLine canonicalizes a merchant name/address line: fold and
// uppercase, drop punctuation, then undo letter-to-digit confusions.
func SanitizeMerchantLine(line string) string {
	if line == "" {
		return ""
	}
	cleaned := reNonMerchant.ReplaceAllString(CleanUpper(line), " ")
	return DigitsToLetters(CollapseSpaces(cleaned))
}
