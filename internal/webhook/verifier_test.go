package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACVerifier(t *testing.T) {
	v := NewHMACVerifier("whsec_abc")
	body := []byte(`{"event_type":"payment_intent.succeeded","order_id":7}`)

	sig := v.Sign(body)
	require.NoError(t, v.Verify(body, sig))

	// 签名对不上 / 内容被改 / 不是十六进制，都拒绝
	assert.ErrorIs(t, v.Verify(body, NewHMACVerifier("other").Sign(body)), ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify([]byte(`{"order_id":8}`), sig), ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify(body, "not-hex"), ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify(body, ""), ErrInvalidSignature)
}

func TestMultiVerifierKeyRotation(t *testing.T) {
	oldKey := NewHMACVerifier("whsec_old")
	newKey := NewHMACVerifier("whsec_new")
	m := NewMultiVerifier(newKey, oldKey)
	body := []byte(`{"event_type":"payment_intent.succeeded"}`)

	// 轮换期内新旧密钥签的都收
	require.NoError(t, m.Verify(body, oldKey.Sign(body)))
	require.NoError(t, m.Verify(body, newKey.Sign(body)))

	assert.ErrorIs(t, m.Verify(body, NewHMACVerifier("stranger").Sign(body)), ErrInvalidSignature)
}
