package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
)

// ==================== SESSION & INVITATION TOKENS ====================

const tokenBytes = 32

// GenerateSessionToken returns 256 bits of randomness encoded as unpadded base64url.
func GenerateSessionToken() (string, error) {
	return randomToken(tokenBytes)
}

func GenerateInvitationToken() (string, error) {
	return randomToken(tokenBytes)
}

func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ==================== OTP ====================

const (
	otpMin   = 100000
	otpRange = 900000
)

// GenerateOTP returns a uniformly random code in "100000".."999999".
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpRange))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+otpMin), nil
}

// TokenPrefix is what gets logged instead of a full credential.
func TokenPrefix(token string) string {
	if len(token) <= 6 {
		return "***"
	}
	return token[:6] + "..."
}
