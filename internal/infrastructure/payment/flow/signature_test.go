package flow

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "s3cr3t"

func TestSigner_ReferenceVector(t *testing.T) {
	signer := NewSigner(testSecret)

	params := Params{
		"apiKey":        "KEY1",
		"commerceOrder": "abc123-1699999999000",
		"currency":      "CLP",
		"amount":        2990,
	}

	assert.Equal(t, "02f10871b3078c8db3a9cc73f1e657fed883df657dd6792132be30a5910e037b", signer.Sign(params))
	assert.Equal(t, "5f709d9c2e117cfcd44abea0fdaeb70f37cce5058a02c9022a265225e551fe59",
		signer.Sign(Params{"token": "TOK1", "apiKey": "KEY1"}))
}

func TestSigner_EmptyParams(t *testing.T) {
	signer := NewSigner(testSecret)

	// sha256("s3cr3t")
	const want = "4e738ca5563c06cfd0018299933d58db1dd8bf97f6973dc99bf6cdc64b5550bd"
	assert.Equal(t, want, signer.Sign(Params{}))
	assert.Equal(t, want, signer.Sign(nil))
	assert.Equal(t, want, signer.Sign(Params{"dropped": nil}))
}

func TestSigner_Deterministic(t *testing.T) {
	signer := NewSigner(testSecret)
	params := Params{"b": "2", "a": "1", "c": int64(3)}

	first := signer.Sign(params)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, signer.Sign(params))
	}
}

func TestSigner_NumericEncodingsAgree(t *testing.T) {
	signer := NewSigner(testSecret)
	want := signer.Sign(Params{"amount": "2990"})

	for _, v := range []any{2990, int32(2990), int64(2990), uint64(2990), float64(2990), json.Number("2990")} {
		assert.Equal(t, want, signer.Sign(Params{"amount": v}), "value %T", v)
	}
}

func TestSigner_NilValuesDropped(t *testing.T) {
	signer := NewSigner(testSecret)
	var missing *string

	assert.Equal(t,
		signer.Sign(Params{"a": "1"}),
		signer.Sign(Params{"a": "1", "b": nil, "c": missing}),
	)
}

func TestSigner_SignatureFieldExcluded(t *testing.T) {
	signer := NewSigner(testSecret)
	params := Params{"token": "TOK1"}

	assert.Equal(t, signer.Sign(params), signer.Sign(Params{"token": "TOK1", SignatureField: "whatever"}))
}

func TestSigner_Verify(t *testing.T) {
	signer := NewSigner(testSecret)
	signed := signer.SignParams(Params{
		"token":         "TOK1",
		"commerceOrder": "abc123-1699999999000",
		"status":        "2",
		"amount":        "2990",
	})

	assert.True(t, signer.Verify(signed))

	t.Run("tampered field", func(t *testing.T) {
		for _, key := range []string{"token", "commerceOrder", "status", "amount"} {
			tampered := Params{}
			for k, v := range signed {
				tampered[k] = v
			}
			tampered[key] = tampered.String(key) + "x"
			assert.False(t, signer.Verify(tampered), "tampered %s", key)
		}
	})

	t.Run("added field", func(t *testing.T) {
		tampered := Params{"extra": "1"}
		for k, v := range signed {
			tampered[k] = v
		}
		assert.False(t, signer.Verify(tampered))
	})

	t.Run("missing signature", func(t *testing.T) {
		assert.False(t, signer.Verify(Params{"token": "TOK1"}))
	})

	t.Run("other secret", func(t *testing.T) {
		assert.False(t, NewSigner("other").Verify(signed))
	})

	t.Run("uppercase hex rejected", func(t *testing.T) {
		upper := Params{}
		for k, v := range signed {
			upper[k] = v
		}
		upper[SignatureField] = strings.ToUpper(signed.String(SignatureField))
		assert.False(t, signer.Verify(upper))
	})
}

func TestParamsFromForm(t *testing.T) {
	form := url.Values{"token": {"TOK1", "TOK2"}, "empty": {}}
	params := ParamsFromForm(form)

	require.Len(t, params, 1)
	assert.Equal(t, "TOK1", params.String("token"))

	values := Params{"amount": 2990, "nil": nil}.Values()
	assert.Equal(t, "2990", values.Get("amount"))
	_, ok := values["nil"]
	assert.False(t, ok)
}
