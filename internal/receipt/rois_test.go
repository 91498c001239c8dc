package receipt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullROIs() map[string]ROI {
	return map[string]ROI{
		RegionBrandMode: {Text: "MASTERCARD CREDITO A VISTA"},
		RegionMaskedPAN: {Text: "garbage", Variants: []string{"**** **** **** 1234"}},
		RegionViaPOS:    {Text: "VIA - CLIENTE / POS-12345678"},
		RegionCNPJ:      {Text: "CNPJ O1.O27.O58/OOO1-91"},
		RegionName:      {Text: "Padaria do Zé Ltda"},
		RegionAddress:   {Text: "RUA DAS FLORES 123\nBARUERI SP"},
		RegionDocAuth:   {Text: "DOC-123456 AUT-654321"},
		RegionDatetime:  {Text: "12/03/24 14:32 ONL-C"},
		RegionAmount:    {Text: "TOTAL 1.234,56", Variants: []string{"TOTAL 1.234,56", "TOTAL 1.284,56"}},
	}
}

func TestExtractROIs(t *testing.T) {
	t.Parallel()

	rec := ExtractROIs(fullROIs())

	require.NotNil(t, rec.Brand)
	assert.Equal(t, "MASTERCARD", *rec.Brand)
	require.NotNil(t, rec.Mode)
	assert.Equal(t, "CREDITO_A_VISTA", *rec.Mode)
	require.NotNil(t, rec.MaskedPAN)
	assert.Equal(t, "************1234", *rec.MaskedPAN)
	require.NotNil(t, rec.CardLast4)
	assert.Equal(t, "1234", *rec.CardLast4)
	require.NotNil(t, rec.Via)
	assert.Equal(t, "CLIENTE", *rec.Via)
	require.NotNil(t, rec.POSID)
	assert.Equal(t, "12345678", *rec.POSID)
	require.NotNil(t, rec.Merchant.CNPJ)
	assert.Equal(t, "01027058000191", *rec.Merchant.CNPJ)
	require.NotNil(t, rec.Merchant.Name)
	assert.Equal(t, "PADARIA DO ZE LTDA", *rec.Merchant.Name)
	require.NotNil(t, rec.Merchant.Address)
	assert.Equal(t, "RUA DAS FLORES 123", *rec.Merchant.Address)
	require.NotNil(t, rec.Merchant.City)
	assert.Equal(t, "BARUERI", *rec.Merchant.City)
	require.NotNil(t, rec.Merchant.State)
	assert.Equal(t, "SP", *rec.Merchant.State)
	require.NotNil(t, rec.Doc)
	assert.Equal(t, "123456", *rec.Doc)
	require.NotNil(t, rec.Auth)
	assert.Equal(t, "654321", *rec.Auth)
	require.NotNil(t, rec.DatetimeLocal)
	assert.Equal(t, "2024-03-12T14:32:00", *rec.DatetimeLocal)
	require.NotNil(t, rec.Channel)
	assert.Equal(t, "ONL-C", *rec.Channel)
	require.NotNil(t, rec.Operation)
	assert.Equal(t, "VENDA_A_CREDITO", *rec.Operation)
	require.NotNil(t, rec.AmountBRL)
	assert.InDelta(t, 1234.56, *rec.AmountBRL, 1e-9)
	require.NotNil(t, rec.RawAmount)
	assert.Equal(t, "1.234,56", *rec.RawAmount)

	assert.Empty(t, rec.NeedsUserInput)
	assertNeedsInvariant(t, rec)
}

func TestExtractROIsAmountVotingPrefersMostFrequent(t *testing.T) {
	t.Parallel()

	rois := map[string]ROI{
		RegionAmount: {
			Text:     "TOTAL 1.284,56",
			Variants: []string{"TOTAL 1.234,56", "TOTAL 1.234,56"},
		},
	}
	rec := ExtractROIs(rois)

	require.NotNil(t, rec.RawAmount)
	assert.Equal(t, "1.234,56", *rec.RawAmount)
	require.NotNil(t, rec.AmountBRL)
	assert.InDelta(t, 1234.56, *rec.AmountBRL, 1e-9)
}

func TestVoteAmountTieBreaksByCentrality(t *testing.T) {
	t.Parallel()

	// All counts equal: the candidate closest to the others wins.
	got := voteAmount([]string{"1.234,56", "1.284,56", "7.234,56"})
	assert.Equal(t, "1.234,56", got)

	assert.Empty(t, voteAmount([]string{"sem valor"}))
}

func TestExtractROIsBackfillFromWholeText(t *testing.T) {
	t.Parallel()

	// The amount region is unreadable, but the doc/auth crop caught the
	// total. The whole-text fallback over concatenated readings finds it.
	rois := map[string]ROI{
		RegionDocAuth: {Text: "DOC-123456 AUT-654321 1.234,56"},
		RegionAmount:  {Text: "TOTAL ###"},
	}
	rec := ExtractROIs(rois)

	require.NotNil(t, rec.AmountBRL)
	assert.InDelta(t, 1234.56, *rec.AmountBRL, 1e-9)
	assert.NotContains(t, rec.NeedsUserInput, "amount_brl")
	require.NotNil(t, rec.Doc)
	assert.Equal(t, "123456", *rec.Doc)
	assertNeedsInvariant(t, rec)
}

func TestExtractROIsSlidingWindowCNPJ(t *testing.T) {
	t.Parallel()

	rois := map[string]ROI{
		RegionCNPJ: {
			Text:     "99999999999999",
			Variants: []string{"ruido 11222333000181 ruido"},
		},
	}
	rec := ExtractROIs(rois)

	require.NotNil(t, rec.Merchant.CNPJ)
	assert.Equal(t, "11222333000181", *rec.Merchant.CNPJ)
}

func TestExtractROIsEmptyInput(t *testing.T) {
	t.Parallel()

	rec := ExtractROIs(map[string]ROI{})

	require.NotNil(t, rec.Operation)
	assert.Equal(t, "VENDA_A_CREDITO", *rec.Operation)
	assert.Nil(t, rec.Brand)
	assert.Contains(t, rec.NeedsUserInput, "brand")
	assert.NotContains(t, rec.NeedsUserInput, "operation")
	assertNeedsInvariant(t, rec)
}

func TestROIUnmarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("bare string", func(t *testing.T) {
		t.Parallel()
		var r ROI
		require.NoError(t, json.Unmarshal([]byte(`"VIA - CLIENTE"`), &r))
		assert.Equal(t, "VIA - CLIENTE", r.Text)
		assert.Empty(t, r.Variants)
	})

	t.Run("vote object with variants", func(t *testing.T) {
		t.Parallel()
		var r ROI
		require.NoError(t, json.Unmarshal([]byte(`{"vote":"A","variants":["B","C"]}`), &r))
		assert.Equal(t, "A", r.Text)
		assert.Equal(t, []string{"B", "C"}, r.Variants)
	})

	t.Run("text object", func(t *testing.T) {
		t.Parallel()
		var r ROI
		require.NoError(t, json.Unmarshal([]byte(`{"text":"A"}`), &r))
		assert.Equal(t, "A", r.Text)
	})
}
