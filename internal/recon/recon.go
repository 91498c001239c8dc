// Package recon compares a day's digitized receipts against the payment
// processor's settlement extract and classifies the day with a
// traffic-light verdict. The engine is a pure function: bad rows become
// tagged error strings, missing inputs become reasons, and every call
// yields a complete verdict.
package recon

import (
	"fmt"
	"strconv"

	"github.com/lojista-tools/recibo/internal/money"
)

// Status is the traffic-light classification of a reconciliation day.
type Status string

// Verdict statuses. GRAY means the comparison could not be made.
const (
	StatusGreen  Status = "GREEN"
	StatusYellow Status = "YELLOW"
	StatusRed    Status = "RED"
	StatusGray   Status = "GRAY"
)

// Receipt is one digitized slip row. AmountBRL and ID accept a JSON
// number or string; AmountRaw carries the pt-BR text when no canonical
// amount was extracted.
type Receipt struct {
	ID        any `json:"id,omitempty"`
	AmountBRL any `json:"amount_brl,omitempty"`
	AmountRaw any `json:"amount_raw,omitempty"`
}

// Extract is the provider-reported settlement summary. Both fields accept
// a JSON number or string.
type Extract struct {
	TotalAmountBRL   any `json:"total_amount_brl,omitempty"`
	TransactionCount any `json:"transaction_count,omitempty"`
}

// Context carries optional request metadata echoed back in the verdict.
type Context struct {
	Date     *string `json:"date,omitempty"`
	Currency *string `json:"currency,omitempty"`
}

// Input is the reconciliation request payload.
type Input struct {
	Receipts []*Receipt `json:"receipts"`
	Extract  *Extract   `json:"extract"`
	Context  *Context   `json:"context,omitempty"`
}

// Verdict is the reconciliation result. Deltas and extract values are nil
// when the corresponding input side was missing or unparseable.
type Verdict struct {
	Date              *string  `json:"date"`
	Currency          string   `json:"currency"`
	ReceiptsCount     int      `json:"receipts_count"`
	ReceiptsSumBRL    float64  `json:"receipts_sum_brl"`
	ExtractCount      *int64   `json:"extract_count"`
	ExtractSumBRL     *float64 `json:"extract_sum_brl"`
	DeltaCount        *int64   `json:"delta_count"`
	DeltaAmountBRL    *float64 `json:"delta_amount_brl"`
	Status            Status   `json:"status"`
	Reasons           []string `json:"reasons"`
	Errors            []string `json:"errors"`
	NeedsManualReview bool     `json:"needs_manual_review"`
}

// currency is fixed: pt-BR slips are the only supported locale.
const currency = "BRL"

// Reconcile computes the daily verdict. It never fails: row and extract
// parse problems are collected as tagged error strings and the status
// classification runs on whatever could be resolved.
func Reconcile(in Input) Verdict {
	errs := []string{}
	receiptsCount := len(in.Receipts)

	// Sum valid rows in integer cents; the count includes every provided
	// row, parseable or not.
	var sumCents int64
	for i, r := range in.Receipts {
		rid := receiptID(r, i)
		amount, errMsg := resolveAmount(r)
		if errMsg != "" {
			errs = append(errs, rid+": "+errMsg)
		}
		if amount != nil {
			sumCents += money.ToCents(*amount)
		}
	}
	receiptsSum := money.FromCents(sumCents)

	extractSum, extractCount, extractErrs := resolveExtract(in.Extract)
	errs = append(errs, extractErrs...)

	var deltaAmount *float64
	if extractSum != nil {
		d := money.Round2(receiptsSum - *extractSum)
		deltaAmount = &d
	}
	var deltaCount *int64
	if extractCount != nil {
		d := int64(receiptsCount) - *extractCount
		deltaCount = &d
	}

	reasons := []string{}
	status := StatusGreen

	if extractSum == nil {
		reasons = append(reasons, "missing extract.total_amount_brl")
	}
	if extractCount == nil {
		reasons = append(reasons, "missing extract.transaction_count")
	}
	if receiptsCount == 0 {
		reasons = append(reasons, "no receipts")
	}

	if len(reasons) > 0 {
		status = StatusGray
	} else {
		sumMatch := deltaAmount != nil && *deltaAmount == 0
		countMatch := deltaCount != nil && *deltaCount == 0
		switch {
		case sumMatch && countMatch:
			status = StatusGreen
		case sumMatch || countMatch:
			status = StatusYellow
			if !sumMatch {
				reasons = append(reasons, "sum mismatch")
			}
			if !countMatch {
				reasons = append(reasons, "count mismatch")
			}
		default:
			status = StatusRed
			reasons = append(reasons, "sum mismatch", "count mismatch")
		}

		// Parse errors downgrade to GRAY only when the comparison inputs
		// are also incomplete; with complete inputs the mismatch verdict
		// stands on the rows that did parse.
		if len(errs) > 0 && (extractSum == nil || extractCount == nil || receiptsCount == 0) {
			status = StatusGray
		}
	}

	var date *string
	if in.Context != nil {
		date = in.Context.Date
	}

	return Verdict{
		Date:              date,
		Currency:          currency,
		ReceiptsCount:     receiptsCount,
		ReceiptsSumBRL:    money.Round2(receiptsSum),
		ExtractCount:      extractCount,
		ExtractSumBRL:     extractSum,
		DeltaCount:        deltaCount,
		DeltaAmountBRL:    deltaAmount,
		Status:            status,
		Reasons:           reasons,
		Errors:            errs,
		NeedsManualReview: status != StatusGreen,
	}
}

// resolveAmount resolves one row's amount: the canonical amount_brl is
// preferred, else the raw pt-BR text is parsed. The string return is an
// error message, empty on success.
func resolveAmount(r *Receipt) (*float64, string) {
	if r == nil {
		return nil, "missing receipt"
	}
	if r.AmountBRL != nil {
		if n, ok := money.ParseBRLValue(r.AmountBRL); ok {
			return &n, ""
		}
		return nil, "invalid amount_brl"
	}
	if r.AmountRaw != nil {
		if n, ok := money.ParseBRL(stringify(r.AmountRaw)); ok {
			return &n, ""
		}
		return nil, "cannot parse amount_raw"
	}
	return nil, "missing amount"
}

// resolveExtract resolves the provider summary. Absent fields yield nil
// with no error; present but unparseable fields yield nil plus an error.
func resolveExtract(e *Extract) (sum *float64, count *int64, errs []string) {
	if e == nil {
		return nil, nil, nil
	}
	if e.TotalAmountBRL != nil {
		if n, ok := money.ParseBRLValue(e.TotalAmountBRL); ok {
			sum = &n
		} else {
			errs = append(errs, "invalid extract.total_amount_brl")
		}
	}
	if e.TransactionCount != nil {
		if n, ok := money.ParseCount(e.TransactionCount); ok {
			count = &n
		} else {
			errs = append(errs, "invalid extract.transaction_count")
		}
	}
	return sum, count, errs
}

// receiptID tags a row for error messages: its id when present, else its
// 1-based position.
func receiptID(r *Receipt, index int) string {
	if r != nil && r.ID != nil {
		return stringify(r.ID)
	}
	return strconv.Itoa(index + 1)
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
