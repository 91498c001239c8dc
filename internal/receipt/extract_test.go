package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cleanSlip = `CIELO
MASTERCARD
CREDITO A VISTA
************1234
VIA - CLIENTE
POS-12345678
CNPJ 01.027.058/0001-91
PADARIA DO ZE LTDA
RUA DAS FLORES 123
BARUERI SP
DOC-123456 AUT-654321
12/03/24 14:32 ONL-C
VENDA A CREDITO
TOTAL 1.234,56`

// assertNeedsInvariant checks that a field is nil exactly when its path is
// listed in NeedsUserInput.
func assertNeedsInvariant(t *testing.T, rec *Record) {
	t.Helper()
	listed := make(map[string]bool, len(rec.NeedsUserInput))
	for _, p := range rec.NeedsUserInput {
		listed[p] = true
	}
	fields := map[string]bool{
		"brand":            rec.Brand == nil,
		"mode":             rec.Mode == nil,
		"card_last4":       rec.CardLast4 == nil,
		"masked_pan":       rec.MaskedPAN == nil,
		"via":              rec.Via == nil,
		"pos_id":           rec.POSID == nil,
		"merchant.cnpj":    rec.Merchant.CNPJ == nil,
		"merchant.name":    rec.Merchant.Name == nil,
		"merchant.address": rec.Merchant.Address == nil,
		"merchant.city":    rec.Merchant.City == nil,
		"merchant.state":   rec.Merchant.State == nil,
		"doc":              rec.Doc == nil,
		"auth":             rec.Auth == nil,
		"datetime_local":   rec.DatetimeLocal == nil,
		"channel":          rec.Channel == nil,
		"operation":        rec.Operation == nil,
		"amount_brl":       rec.AmountBRL == nil,
		"raw_amount":       rec.RawAmount == nil,
	}
	for path, isNil := range fields {
		assert.Equal(t, isNil, listed[path], "invariant broken for %s", path)
	}
}

func TestExtractTextCleanSlip(t *testing.T) {
	t.Parallel()

	rec, normalized := ExtractText(cleanSlip)

	assert.Equal(t, "CIELO", rec.Issuer)
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
	assert.Contains(t, normalized, "CNPJ")
	assertNeedsInvariant(t, rec)
}

func TestExtractTextDegradedSlip(t *testing.T) {
	t.Parallel()

	raw := "MASTER CARD\nCRÉDITO À VISTA\n**** **** **** 4321\nV1A-CL1ENTE\nPOS 123O5678\n" +
		"QWPJ 01.027.058/0001-91\nMERCADO B0M PRECO\nAV BRASIL 45\nCUIABA HT\n" +
		"doc 88877\naut 99911\n05/07/2025 09:15 CHIP\nVENDA A CRÉDITO\nR$ 45,90"

	rec, _ := ExtractText(raw)

	require.NotNil(t, rec.Brand)
	assert.Equal(t, "MASTERCARD", *rec.Brand)
	require.NotNil(t, rec.Mode)
	assert.Equal(t, "CREDITO_A_VISTA", *rec.Mode)
	require.NotNil(t, rec.MaskedPAN)
	assert.Equal(t, "************4321", *rec.MaskedPAN)
	require.NotNil(t, rec.Via)
	assert.Equal(t, "CLIENTE", *rec.Via)
	require.NotNil(t, rec.POSID)
	assert.Equal(t, "12305678", *rec.POSID)
	require.NotNil(t, rec.Merchant.CNPJ)
	assert.Equal(t, "01027058000191", *rec.Merchant.CNPJ)
	require.NotNil(t, rec.Merchant.Name)
	assert.Equal(t, "MERCADO BOM PRECO", *rec.Merchant.Name)
	require.NotNil(t, rec.Merchant.State)
	assert.Equal(t, "MT", *rec.Merchant.State)
	require.NotNil(t, rec.Merchant.City)
	assert.Equal(t, "CUIABA", *rec.Merchant.City)
	require.NotNil(t, rec.Doc)
	assert.Equal(t, "88877", *rec.Doc)
	require.NotNil(t, rec.Auth)
	assert.Equal(t, "99911", *rec.Auth)
	require.NotNil(t, rec.DatetimeLocal)
	assert.Equal(t, "2025-07-05T09:15:00", *rec.DatetimeLocal)
	require.NotNil(t, rec.Channel)
	assert.Equal(t, "CHIP", *rec.Channel)
	require.NotNil(t, rec.Operation)
	assert.Equal(t, "VENDA_A_CREDITO", *rec.Operation)
	require.NotNil(t, rec.AmountBRL)
	assert.InDelta(t, 45.90, *rec.AmountBRL, 1e-9)

	assert.Empty(t, rec.NeedsUserInput)
	assertNeedsInvariant(t, rec)
}

func TestExtractTextUnresolvedFields(t *testing.T) {
	t.Parallel()

	rec, _ := ExtractText("nada de util aqui")

	assert.Nil(t, rec.Brand)
	assert.Nil(t, rec.AmountBRL)
	assert.Nil(t, rec.Merchant.CNPJ)
	assert.Contains(t, rec.NeedsUserInput, "brand")
	assert.Contains(t, rec.NeedsUserInput, "merchant.cnpj")
	assert.Contains(t, rec.NeedsUserInput, "merchant.state")
	assert.Contains(t, rec.NeedsUserInput, "datetime_local")
	assert.Contains(t, rec.NeedsUserInput, "amount_brl")
	assert.Contains(t, rec.NeedsUserInput, "raw_amount")
	assertNeedsInvariant(t, rec)
}

func TestExtractTextInvalidCNPJStillReadsMerchantLines(t *testing.T) {
	t.Parallel()

	raw := "CNPJ 11.222.333/0001-80\nLOJA DA ESQUINA\nRUA A 10\nSANTOS SP"
	rec, _ := ExtractText(raw)

	assert.Nil(t, rec.Merchant.CNPJ)
	assert.Contains(t, rec.NeedsUserInput, "merchant.cnpj")
	require.NotNil(t, rec.Merchant.Name)
	assert.Equal(t, "LOJA DA ESQUINA", *rec.Merchant.Name)
	require.NotNil(t, rec.Merchant.State)
	assert.Equal(t, "SP", *rec.Merchant.State)
	assertNeedsInvariant(t, rec)
}

func TestExtractTextTwoDigitYearPivot(t *testing.T) {
	t.Parallel()

	rec, _ := ExtractText("31/12/99 10:00")
	require.NotNil(t, rec.DatetimeLocal)
	assert.Equal(t, "1999-12-31T10:00:00", *rec.DatetimeLocal)

	rec, _ = ExtractText("01/01/30 10:00")
	require.NotNil(t, rec.DatetimeLocal)
	assert.Equal(t, "2030-01-01T10:00:00", *rec.DatetimeLocal)
}

func TestExtractTextDateWithoutTimeUnresolved(t *testing.T) {
	t.Parallel()

	rec, _ := ExtractText("12/03/24 sem hora")
	assert.Nil(t, rec.DatetimeLocal)
	assert.Contains(t, rec.NeedsUserInput, "datetime_local")
}
