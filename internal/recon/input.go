package recon

import "encoding/json"

// UnmarshalJSON decodes the request payload tolerantly: top-level shapes
// of the wrong JSON type coerce to empty collections instead of failing,
// so garbled-but-valid JSON still yields a (GRAY) verdict. Syntactically
// invalid JSON is still an error for the transport layer to reject.
func (in *Input) UnmarshalJSON(data []byte) error {
	*in = Input{}
	var shadow struct {
		Receipts json.RawMessage `json:"receipts"`
		Extract  json.RawMessage `json:"extract"`
		Context  json.RawMessage `json:"context"`
	}
	if err := json.Unmarshal(data, &shadow); err != nil {
		if !json.Valid(data) {
			return err
		}
		return nil
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(shadow.Receipts, &rows); err == nil {
		in.Receipts = make([]*Receipt, 0, len(rows))
		for _, raw := range rows {
			r := &Receipt{}
			if err := json.Unmarshal(raw, r); err != nil {
				// Non-object row: keep the slot so counting and error
				// tagging stay positional.
				*r = Receipt{}
			}
			in.Receipts = append(in.Receipts, r)
		}
	}
	var extract Extract
	if err := json.Unmarshal(shadow.Extract, &extract); err == nil && shadow.Extract != nil {
		in.Extract = &extract
	}
	var ctx Context
	if err := json.Unmarshal(shadow.Context, &ctx); err == nil && shadow.Context != nil {
		in.Context = &ctx
	}
	return nil
}
