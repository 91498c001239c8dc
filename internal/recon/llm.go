package recon

// LLMReceipt is one row after parse enforcement: the amount is either a
// clean 2-decimal value or nil, never free text.
type LLMReceipt struct {
	ID        string   `json:"id"`
	AmountBRL *float64 `json:"amount_brl"`
}

// LLMExtract is the provider summary after parse enforcement.
type LLMExtract struct {
	TotalAmountBRL   *float64 `json:"total_amount_brl"`
	TransactionCount *int64   `json:"transaction_count"`
}

// LLMPrep is the minimal input set for a downstream labeling model: all
// pt-BR parsing is done here so the model only compares, never parses.
type LLMPrep struct {
	Receipts []LLMReceipt `json:"receipts"`
	Extract  LLMExtract   `json:"extract"`
	Context  *Context     `json:"context,omitempty"`
}

// LLMInputs normalizes a reconciliation request into LLMPrep.
func LLMInputs(in Input) LLMPrep {
	prep := LLMPrep{
		Receipts: make([]LLMReceipt, 0, len(in.Receipts)),
		Context:  in.Context,
	}
	for i, r := range in.Receipts {
		amount, _ := resolveAmount(r)
		prep.Receipts = append(prep.Receipts, LLMReceipt{
			ID:        receiptID(r, i),
			AmountBRL: amount,
		})
	}
	prep.Extract.TotalAmountBRL, prep.Extract.TransactionCount, _ = resolveExtract(in.Extract)
	return prep
}
