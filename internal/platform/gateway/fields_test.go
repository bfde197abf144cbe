package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestPath(t *testing.T) {
	d := doc(t, `{"data": {"id": 12345, "status": "  ", "nested": {"k": "v"}}, "message": "ok", "list": [1]}`)

	v, ok := Path("data.id")(d)
	require.True(t, ok)
	assert.Equal(t, "12345", v)

	_, ok = Path("data.status")(d)
	assert.False(t, ok, "blank strings are absent")

	_, ok = Path("data.nested")(d)
	assert.False(t, ok, "objects are not scalars")

	_, ok = Path("message.x")(d)
	assert.False(t, ok)

	_, ok = Path("missing")(d)
	assert.False(t, ok)
}

func TestLookup_FirstMatchWins(t *testing.T) {
	d := doc(t, `{"data": {"tx_id": "second", "reference": "third"}}`)
	v, ok := Lookup(d, InitExternalIDRules)
	require.True(t, ok)
	require.Equal(t, "second", v)

	_, ok = Lookup(nil, InitExternalIDRules)
	require.False(t, ok)
}

func TestIsSuccessStatus(t *testing.T) {
	for _, s := range []string{"successful", "SUCCESS", " Completed ", "paid"} {
		assert.True(t, IsSuccessStatus(s), s)
	}
	for _, s := range []string{"", "failed", "pending", "unsuccessful", "success!"} {
		assert.False(t, IsSuccessStatus(s), s)
	}
}

func TestParseInitialize(t *testing.T) {
	r := ParseInitialize(doc(t, `{"status": "success", "data": {"payment_link": "https://pay/x", "reference": "CH-1"}}`))
	assert.Equal(t, "https://pay/x", r.CheckoutURL)
	assert.Equal(t, "CH-1", r.ExternalID)

	r = ParseInitialize(doc(t, `{"checkout_url": "https://pay/top"}`))
	assert.Equal(t, "https://pay/top", r.CheckoutURL)
	assert.Empty(t, r.ExternalID)
}

func TestParseVerify(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		success bool
		status  string
		extID   string
	}{
		{"nested success", `{"status": "success", "data": {"status": "success", "reference": "CH-9"}}`, true, "success", "CH-9"},
		{"nested failed ignores top-level api status", `{"status": "success", "data": {"status": "failed"}}`, false, "failed", ""},
		{"message fallback", `{"message": "Completed"}`, true, "Completed", ""},
		{"nothing", `{}`, false, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ParseVerify(doc(t, tt.body))
			assert.Equal(t, tt.success, r.Success)
			assert.Equal(t, tt.status, r.Status)
			assert.Equal(t, tt.extID, r.ExternalID)
		})
	}
}

func TestParseWebhook_TxRefProbingOrder(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		query map[string]string
		want  string
	}{
		{"top-level tx_ref", `{"tx_ref": "a", "reference": "b", "data": {"tx_ref": "c"}}`, nil, "a"},
		{"top-level reference", `{"reference": "b", "data": {"tx_ref": "c"}}`, nil, "b"},
		{"nested tx_ref", `{"data": {"tx_ref": "c", "reference": "d"}}`, nil, "c"},
		{"nested reference", `{"data": {"reference": "d"}}`, nil, "d"},
		{"query reference", `{}`, map[string]string{"reference": "q1", "tx_ref": "q2"}, "q1"},
		{"query tx_ref", `{}`, map[string]string{"tx_ref": "q2"}, "q2"},
		{"missing", `{"data": {}}`, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ParseWebhook(doc(t, tt.body), tt.query).TxRef)
		})
	}
}

func TestParseWebhook_StatusProbing(t *testing.T) {
	r := ParseWebhook(doc(t, `{"data": {"tx_ref": "abc-123", "status": "successful"}}`), nil)
	assert.True(t, r.Success)
	assert.Equal(t, "successful", r.Status)

	r = ParseWebhook(doc(t, `{"tx_ref": "abc-123", "status": "failed"}`), nil)
	assert.False(t, r.Success)
	assert.Equal(t, "failed", r.Status)

	r = ParseWebhook(doc(t, `{"tx_ref": "abc-123", "message": "paid"}`), nil)
	assert.True(t, r.Success)

	r = ParseWebhook(doc(t, `{"tx_ref": "abc-123"}`), nil)
	assert.False(t, r.Success)
	assert.Empty(t, r.Status)
}
