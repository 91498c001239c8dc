// Package receipt turns recognized Cielo slip text into a structured,
// confidence-annotated record. Two modes exist: whole-text extraction over
// one normalized block, and region extraction over labeled crops with
// alternate readings. Every field that cannot be resolved is named in
// NeedsUserInput so a caller can prompt for manual correction.
package receipt

// Issuer is the only slip layout this extractor understands.
const Issuer = "CIELO"

// Merchant is the establishment block printed under the CNPJ anchor line.
type Merchant struct {
	CNPJ    *string `json:"cnpj"`
	Name    *string `json:"name"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	State   *string `json:"state"`
}

// Record is the structured result of one slip. Nullable fields are
// pointers; a field is nil exactly when its dotted path appears in
// NeedsUserInput.
type Record struct {
	Issuer         string   `json:"issuer"`
	Brand          *string  `json:"brand"`
	Mode           *string  `json:"mode"`
	CardLast4      *string  `json:"card_last4"`
	MaskedPAN      *string  `json:"masked_pan"`
	Via            *string  `json:"via"`
	POSID          *string  `json:"pos_id"`
	Merchant       Merchant `json:"merchant"`
	Doc            *string  `json:"doc"`
	Auth           *string  `json:"auth"`
	DatetimeLocal  *string  `json:"datetime_local"`
	Channel        *string  `json:"channel"`
	Operation      *string  `json:"operation"`
	AmountBRL      *float64 `json:"amount_brl"`
	RawAmount      *string  `json:"raw_amount"`
	NeedsUserInput []string `json:"needs_user_input"`
}

func newRecord() *Record {
	return &Record{Issuer: Issuer, NeedsUserInput: []string{}}
}

// needSet is the per-invocation accumulator of unresolved field paths.
// Insertion ordered, deduplicated, never shared between calls.
type needSet struct {
	order []string
	seen  map[string]struct{}
}

func newNeedSet() *needSet {
	return &needSet{seen: make(map[string]struct{})}
}

func (n *needSet) add(path string) {
	if _, ok := n.seen[path]; ok {
		return
	}
	n.seen[path] = struct{}{}
	n.order = append(n.order, path)
}

func (n *needSet) paths() []string {
	if n.order == nil {
		return []string{}
	}
	return n.order
}

// recomputeNeeds rebuilds NeedsUserInput from the record itself, in field
// order. Used after merging the region pass with the whole-text back-fill,
// where neither stage's needs list is authoritative.
func recomputeNeeds(rec *Record) {
	needs := newNeedSet()
	checks := []struct {
		path    string
		missing bool
	}{
		{"brand", rec.Brand == nil},
		{"mode", rec.Mode == nil},
		{"card_last4", rec.CardLast4 == nil},
		{"masked_pan", rec.MaskedPAN == nil},
		{"via", rec.Via == nil},
		{"pos_id", rec.POSID == nil},
		{"merchant.cnpj", rec.Merchant.CNPJ == nil},
		{"merchant.name", rec.Merchant.Name == nil},
		{"merchant.address", rec.Merchant.Address == nil},
		{"merchant.city", rec.Merchant.City == nil},
		{"merchant.state", rec.Merchant.State == nil},
		{"doc", rec.Doc == nil},
		{"auth", rec.Auth == nil},
		{"datetime_local", rec.DatetimeLocal == nil},
		{"channel", rec.Channel == nil},
		{"operation", rec.Operation == nil},
		{"amount_brl", rec.AmountBRL == nil},
		{"raw_amount", rec.RawAmount == nil},
	}
	for _, c := range checks {
		if c.missing {
			needs.add(c.path)
		}
	}
	rec.NeedsUserInput = needs.paths()
}

func strptr(s string) *string { return &s }
