package session

import (
	"context"
	"crypto/subtle"
)

// FixedCodeVerifier accepts one shared demo code for every mobile number.
type FixedCodeVerifier struct {
	code []byte
}

func NewFixedCodeVerifier(code string) FixedCodeVerifier {
	return FixedCodeVerifier{code: []byte(code)}
}

func (v FixedCodeVerifier) VerifyCode(_ context.Context, _ string, code string) bool {
	return len(v.code) > 0 && subtle.ConstantTimeCompare(v.code, []byte(code)) == 1
}
