package receipt

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/lojista-tools/recibo/internal/cnpj"
	"github.com/lojista-tools/recibo/internal/money"
	"github.com/lojista-tools/recibo/internal/normalize"
)

// Region labels and the semantic role each crop carries on a Cielo slip.
const (
	RegionBrandMode = "ROI_A" // brand + payment mode block
	RegionMaskedPAN = "ROI_B" // masked card number
	RegionViaPOS    = "ROI_C" // via designation + terminal id
	RegionCNPJ      = "ROI_D" // merchant tax id
	RegionName      = "ROI_E" // merchant name
	RegionAddress   = "ROI_F" // address + city/state
	RegionDocAuth   = "ROI_G" // document + authorization codes
	RegionDatetime  = "ROI_H" // date, time, channel tag
	RegionAmount    = "ROI_I" // amount
)

// regionOrder fixes the concatenation order for the whole-text back-fill.
var regionOrder = []string{
	RegionBrandMode, RegionMaskedPAN, RegionViaPOS, RegionCNPJ, RegionName,
	RegionAddress, RegionDocAuth, RegionDatetime, RegionAmount,
}

// ROI is one labeled region: the primary recognized text plus alternate
// readings from extra recognizer passes.
type ROI struct {
	Text     string   `json:"text"`
	Variants []string `json:"variants,omitempty"`
}

// UnmarshalJSON accepts either a bare string or an object carrying
// "vote"/"text" and "variants", the two shapes recognizer frontends send.
func (r *ROI) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.Text = s
		r.Variants = nil
		return nil
	}
	var obj struct {
		Vote     *string  `json:"vote"`
		Text     string   `json:"text"`
		Variants []string `json:"variants"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.Vote != nil {
		r.Text = *obj.Vote
	} else {
		r.Text = obj.Text
	}
	r.Variants = obj.Variants
	return nil
}

// sources returns the cleaned primary text followed by the cleaned
// variants.
func (r ROI) sources() []string {
	out := []string{cleanROI(r.Text)}
	for _, v := range r.Variants {
		out = append(out, cleanROI(v))
	}
	return out
}

func cleanROI(s string) string {
	return normalize.CollapseSpaces(strings.ReplaceAll(s, " ", " "))
}

// ExtractROIs runs per-region extraction over labeled crops, then
// back-fills any still-unresolved field from a whole-text pass over the
// concatenated primary readings. NeedsUserInput is recomputed from the
// merged record.
func ExtractROIs(rois map[string]ROI) *Record {
	rec := newRecord()
	rec.Operation = strptr("VENDA_A_CREDITO") // region layout only exists on credit-sale slips

	extractBrandMode(rois[RegionBrandMode], rec)
	extractMaskedPAN(rois[RegionMaskedPAN], rec)
	extractViaPOS(rois[RegionViaPOS], rec)
	if found := cnpj.FindValid(rois[RegionCNPJ].sources()); found != "" {
		rec.Merchant.CNPJ = strptr(found)
	}
	if name := normalize.SanitizeMerchantLine(rois[RegionName].Text); name != "" {
		rec.Merchant.Name = strptr(name)
	}
	extractAddress(rois[RegionAddress], rec)
	extractDocAuth(rois[RegionDocAuth], rec)
	extractDatetimeChannel(rois[RegionDatetime], rec)
	extractAmountVoted(rois[RegionAmount], rec)

	backfillFromText(rois, rec)
	recomputeNeeds(rec)
	return rec
}

func extractBrandMode(roi ROI, rec *Record) {
	var parts []string
	for _, src := range roi.sources() {
		if s := normalize.CleanUpper(src); s != "" {
			parts = append(parts, s)
		}
	}
	source := strings.Join(parts, " ")
	for _, brand := range roiBrands {
		if strings.Contains(source, brand) {
			rec.Brand = strptr(brand)
			break
		}
	}
	switch {
	case strings.Contains(source, "DEBITO"):
		rec.Mode = strptr("DEBITO")
	case reCredVistaLoose.MatchString(source):
		rec.Mode = strptr("CREDITO_A_VISTA")
	case source != "":
		if picked, ok := modeLexicon.Pick(source); ok {
			rec.Mode = strptr(formatEnum(picked))
		} else if e := formatEnum(source); e != "" {
			rec.Mode = strptr(e)
		}
	}
}

func extractMaskedPAN(roi ROI, rec *Record) {
	for _, src := range roi.sources() {
		candidate := keepMaskRunes(normalize.ConfusablesToDigits(src))
		if m := reMaskROI.FindString(candidate); m != "" {
			rec.MaskedPAN = strptr(m)
			rec.CardLast4 = strptr(m[len(m)-4:])
			return
		}
	}
}

func extractViaPOS(roi ROI, rec *Record) {
	var sources []string
	for _, src := range roi.sources() {
		if s := normalize.CleanUpper(src); s != "" {
			sources = append(sources, s)
		}
	}
	for _, entry := range sources {
		for _, segment := range strings.FieldsFunc(entry, func(r rune) bool { return r == '/' || r == '\\' }) {
			segment = normalize.CollapseSpaces(segment)
			if picked, ok := viaLexicon.Pick(segment); ok && picked == "VIA - CLIENTE" {
				rec.Via = strptr("CLIENTE")
				break
			}
		}
		if rec.Via != nil {
			break
		}
	}
	if digits := extractTokenDigits("POS", sources, 8); digits != "" {
		rec.POSID = strptr(digits)
	}
}

func extractAddress(roi ROI, rec *Record) {
	var lines []string
	for _, line := range reLineBreaks.Split(roi.Text, -1) {
		if s := normalize.SanitizeMerchantLine(line); s != "" {
			lines = append(lines, s)
		}
	}
	if len(lines) == 0 {
		return
	}
	rec.Merchant.Address = strptr(lines[0])

	locationLine := lines[0]
	if len(lines) > 1 {
		locationLine = strings.Join(lines[1:], " ")
	}
	city, state := splitCityState(strings.Fields(locationLine))
	if state != "" {
		rec.Merchant.State = strptr(state)
	}
	if city != "" {
		rec.Merchant.City = strptr(city)
	}
}

func extractDocAuth(roi ROI, rec *Record) {
	sources := roi.sources()
	if digits := extractTokenDigits("DOC", sources, 5); digits != "" {
		rec.Doc = strptr(digits)
	} else if digits := extractTokenDigits("NSU", sources, 5); digits != "" {
		rec.Doc = strptr(digits)
	}
	if digits := extractTokenDigits("AUT", sources, 5); digits != "" {
		rec.Auth = strptr(digits)
	}
}

func extractDatetimeChannel(roi ROI, rec *Record) {
	var date, clock []string
	for _, src := range roi.sources() {
		upper := reNonDT.ReplaceAllString(normalize.CleanUpper(src), " ")

		// Date and time are matched on the confusable-corrected reading so
		// "1Z/O3/24" still parses.
		digits := normalize.ConfusablesToDigits(upper)
		if date == nil {
			date = reDateROI.FindStringSubmatch(digits)
		}
		if clock == nil {
			clock = reTimeROI.FindStringSubmatch(digits)
		}

		// The channel tag is matched on the uncorrected reading; correcting
		// first would turn ONL-C itself into digits.
		if rec.Channel == nil {
			for _, token := range strings.Fields(upper) {
				if picked, ok := channelLexicon.Pick(token); ok {
					rec.Channel = strptr(picked)
					break
				}
				if token == "CHIP" || token == "MAG" {
					rec.Channel = strptr(token)
					break
				}
			}
		}
	}
	if date != nil && clock != nil {
		hour := clock[1]
		if len(hour) == 1 {
			hour = "0" + hour
		}
		rec.DatetimeLocal = strptr(toISODate(date[1], date[2], date[3]) + "T" + hour + ":" + clock[2] + ":00")
	}
}

func extractAmountVoted(roi ROI, rec *Record) {
	// Variants first, primary last, matching the recognizer's pass order.
	sources := append(append([]string{}, cleanVariants(roi.Variants)...), cleanROI(roi.Text))
	raw := voteAmount(sources)
	if raw == "" {
		return
	}
	rec.RawAmount = strptr(raw)
	if amount, ok := money.ParseBRL(raw); ok {
		rec.AmountBRL = &amount
	}
}

func cleanVariants(variants []string) []string {
	out := make([]string, 0, len(variants))
	for _, v := range variants {
		out = append(out, cleanROI(v))
	}
	return out
}

// backfillFromText fills any field the region pass left unresolved from a
// whole-text run over the concatenated primary readings, field by field.
func backfillFromText(rois map[string]ROI, rec *Record) {
	var parts []string
	for _, label := range regionOrder {
		if text := cleanROI(rois[label].Text); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return
	}
	fallback, _ := ExtractText(strings.Join(parts, "\n"))

	fillString(&rec.Brand, fallback.Brand)
	fillString(&rec.Mode, fallback.Mode)
	fillString(&rec.CardLast4, fallback.CardLast4)
	fillString(&rec.MaskedPAN, fallback.MaskedPAN)
	fillString(&rec.Via, fallback.Via)
	fillString(&rec.POSID, fallback.POSID)
	fillString(&rec.Merchant.CNPJ, fallback.Merchant.CNPJ)
	fillString(&rec.Merchant.Name, fallback.Merchant.Name)
	fillString(&rec.Merchant.Address, fallback.Merchant.Address)
	fillString(&rec.Merchant.City, fallback.Merchant.City)
	fillString(&rec.Merchant.State, fallback.Merchant.State)
	fillString(&rec.Doc, fallback.Doc)
	fillString(&rec.Auth, fallback.Auth)
	fillString(&rec.DatetimeLocal, fallback.DatetimeLocal)
	fillString(&rec.Channel, fallback.Channel)
	fillString(&rec.Operation, fallback.Operation)
	fillString(&rec.RawAmount, fallback.RawAmount)
	if rec.AmountBRL == nil && fallback.AmountBRL != nil {
		rec.AmountBRL = fallback.AmountBRL
	}
}

func fillString(dst **string, src *string) {
	if *dst == nil && src != nil {
		*dst = src
	}
}

func keepMaskRunes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '*' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// reCredVistaLoose matches the credit-at-sight phrase with recognizer
// spacing noise, on already-folded uppercase text.
var reCredVistaLoose = regexp.MustCompile(`CREDITO\s*A\s*VISTA`)
