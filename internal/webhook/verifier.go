// Package webhook 网关回调的签名校验。
// 校验器做成可插拔接口，换密钥、轮换或多网关配置不动对账逻辑。
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// Verifier 对原始请求体校验签名。失败必须在任何状态变更之前返回。
type Verifier interface {
	Verify(body []byte, signature string) error
}

// HMACVerifier 共享密钥 HMAC-SHA256，签名为十六进制串
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (v *HMACVerifier) Verify(body []byte, signature string) error {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	expected := mac.Sum(nil)

	got, err := hex.DecodeString(signature)
	if err != nil {
		return ErrInvalidSignature
	}
	if !hmac.Equal(expected, got) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign 用于测试和本地联调生成合法签名
func (v *HMACVerifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// MultiVerifier 依次尝试多个校验器，支持密钥轮换期的新旧并存
type MultiVerifier struct {
	verifiers []Verifier
}

func NewMultiVerifier(verifiers ...Verifier) *MultiVerifier {
	return &MultiVerifier{verifiers: verifiers}
}

func (m *MultiVerifier) Verify(body []byte, signature string) error {
	for _, v := range m.verifiers {
		if v.Verify(body, signature) == nil {
			return nil
		}
	}
	return ErrInvalidSignature
}
