package paymongo

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader holds the parsed Paymongo-Signature header. The header
// carries a unix timestamp plus one signature per mode: te for test, li for
// live. Some deliveries use v1 instead, which is accepted for either mode.
type SignatureHeader struct {
	Timestamp int64
	Test      string
	Live      string
	V1        string
}

// ParseSignatureHeader splits "t=...,te=...,li=..." into its components.
func ParseSignatureHeader(header string) (*SignatureHeader, error) {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return nil, fmt.Errorf("signature header is empty")
	}

	parsed := &SignatureHeader{}
	for _, part := range strings.Split(trimmed, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid signature timestamp %q", kv[1])
			}
			parsed.Timestamp = ts
		case "te":
			parsed.Test = kv[1]
		case "li":
			parsed.Live = kv[1]
		case "v1":
			parsed.V1 = kv[1]
		}
	}

	if parsed.Timestamp == 0 {
		return nil, fmt.Errorf("signature header missing timestamp")
	}
	if parsed.Test == "" && parsed.Live == "" && parsed.V1 == "" {
		return nil, fmt.Errorf("signature header missing signature")
	}

	return parsed, nil
}

// ComputeSignature returns the hex HMAC-SHA256 of "{timestamp}.{payload}".
func ComputeSignature(secret string, timestamp int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks the header against the raw request body. Mode selects
// which signature slot to compare (test or live); v1 is accepted as a fallback.
// A non-positive maxAge disables timestamp freshness checking.
func VerifySignature(secret, header string, payload []byte, mode string, now time.Time, maxAge time.Duration) error {
	parsed, err := ParseSignatureHeader(header)
	if err != nil {
		return err
	}

	if maxAge > 0 {
		issued := time.Unix(parsed.Timestamp, 0)
		if now.Sub(issued) > maxAge {
			return fmt.Errorf("signature timestamp too old")
		}
	}

	candidate := parsed.Test
	if strings.EqualFold(mode, "live") {
		candidate = parsed.Live
	}
	if candidate == "" {
		candidate = parsed.V1
	}
	if candidate == "" {
		return fmt.Errorf("no signature present for %s mode", mode)
	}

	expected := ComputeSignature(secret, parsed.Timestamp, payload)
	if !hmac.Equal([]byte(expected), []byte(candidate)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}
