package receipt

import (
	"strings"

	"github.com/lojista-tools/recibo/internal/cnpj"
	"github.com/lojista-tools/recibo/internal/money"
	"github.com/lojista-tools/recibo/internal/normalize"
)

// ExtractText runs whole-text extraction over one recognized block.
// It returns the record and the normalized text it was extracted from.
// Extraction never fails: unresolved fields are nil and named in
// NeedsUserInput.
func ExtractText(raw string) (*Record, string) {
	text := normalize.Normalize(raw)
	upper := normalize.CleanUpper(text)
	lines := nonEmptyLines(text)
	needs := newNeedSet()
	rec := newRecord()

	if m := reBrand.FindStringSubmatch(upper); m != nil {
		// "MASTER CARD" collapses to the canonical MASTERCARD token.
		rec.Brand = strptr(strings.ReplaceAll(m[1], " ", ""))
	} else {
		needs.add("brand")
	}

	if m := reMode.FindString(text); m != "" {
		rec.Mode = strptr(formatEnum(m))
	} else {
		needs.add("mode")
	}

	if m := reMask.FindString(text); m != "" {
		compact := strings.Join(strings.Fields(m), "")
		rec.MaskedPAN = strptr(compact)
		if tail := reLast4.FindStringSubmatch(compact); tail != nil {
			rec.CardLast4 = strptr(tail[1])
		} else {
			needs.add("card_last4")
		}
	} else {
		needs.add("masked_pan")
		needs.add("card_last4")
	}

	if m := reViaField.FindStringSubmatch(text); m != nil {
		first := strings.Fields(normalize.CleanUpper(m[1]))
		if len(first) > 0 {
			rec.Via = strptr(first[0])
		} else {
			needs.add("via")
		}
	} else {
		needs.add("via")
	}

	if m := rePOSField.FindStringSubmatch(text); m != nil {
		rec.POSID = strptr(m[1])
	} else {
		needs.add("pos_id")
	}

	rec.Merchant = extractMerchant(lines, needs)

	if m := reDocField.FindStringSubmatch(text); m != nil {
		rec.Doc = strptr(m[1])
	} else {
		needs.add("doc")
	}
	if m := reAuthField.FindStringSubmatch(text); m != nil {
		rec.Auth = strptr(m[1])
	} else {
		needs.add("auth")
	}

	date := reDate.FindStringSubmatch(text)
	clock := reTime.FindStringSubmatch(text)
	if date != nil && clock != nil {
		rec.DatetimeLocal = strptr(toISODate(date[1], date[2], date[3]) + "T" + clock[1] + ":" + clock[2] + ":00")
	} else {
		needs.add("datetime_local")
	}

	if m := reChannel.FindString(text); m != "" {
		rec.Channel = strptr(normalize.CleanUpper(m))
	} else {
		needs.add("channel")
	}

	if m := reOperation.FindString(text); m != "" {
		rec.Operation = strptr(formatEnum(m))
	} else {
		needs.add("operation")
	}

	if m := reAmount.FindString(text); m != "" {
		rec.RawAmount = strptr(m)
		if amount, ok := money.ParseBRL(m); ok {
			rec.AmountBRL = &amount
		} else {
			needs.add("amount_brl")
		}
	} else {
		needs.add("amount_brl")
		needs.add("raw_amount")
	}

	rec.NeedsUserInput = needs.paths()
	return rec, text
}

// extractMerchant anchors on the line containing "CNPJ" and reads the
// three lines below it positionally: name, address, then city/state.
func extractMerchant(lines []string, needs *needSet) Merchant {
	var merchant Merchant
	anchor := -1
	for i, line := range lines {
		if !reCNPJLine.MatchString(line) {
			continue
		}
		anchor = i
		if m := reCNPJNum.FindString(line); m != "" {
			digits := normalize.Digits(m)
			if cnpj.Valid(digits) {
				merchant.CNPJ = strptr(digits)
			} else {
				needs.add("merchant.cnpj")
			}
		} else {
			needs.add("merchant.cnpj")
		}
		break
	}
	if merchant.CNPJ == nil {
		needs.add("merchant.cnpj")
	}
	if anchor < 0 {
		needs.add("merchant.name")
		needs.add("merchant.address")
		needs.add("merchant.city")
		needs.add("merchant.state")
		return merchant
	}

	if name := normalize.SanitizeMerchantLine(lineAt(lines, anchor+1)); name != "" {
		merchant.Name = strptr(name)
	} else {
		needs.add("merchant.name")
	}
	if address := normalize.SanitizeMerchantLine(lineAt(lines, anchor+2)); address != "" {
		merchant.Address = strptr(address)
	} else {
		needs.add("merchant.address")
	}

	cityLine := normalize.SanitizeMerchantLine(lineAt(lines, anchor+3))
	if cityLine == "" {
		needs.add("merchant.city")
		needs.add("merchant.state")
		return merchant
	}
	city, state := splitCityState(strings.Fields(cityLine))
	if state != "" {
		merchant.State = strptr(state)
	} else {
		needs.add("merchant.state")
	}
	if city != "" {
		merchant.City = strptr(city)
	} else {
		needs.add("merchant.city")
	}
	return merchant
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func lineAt(lines []string, i int) string {
	if i < 0 || i >= len(lines) {
		return ""
	}
	return lines[i]
}
