package paymongo

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testSecret    = "whsk_test_secret"
	testPayload   = `{"data":{"id":"evt_123"}}`
	testTimestamp = int64(1700000000)

	// hex(HMAC-SHA256("whsk_test_secret", "1700000000." + payload))
	testDigest = "9644497fd44c0075a6ad0dedf4e541900a44a680a7738450d83ec1c85a094fd3"
)

func TestComputeSignatureGoldenVector(t *testing.T) {
	got := ComputeSignature(testSecret, testTimestamp, []byte(testPayload))
	require.Equal(t, testDigest, got)
}

func TestParseSignatureHeader(t *testing.T) {
	header := fmt.Sprintf("t=%d,te=%s,li=", testTimestamp, testDigest)

	parsed, err := ParseSignatureHeader(header)
	require.NoError(t, err)
	require.Equal(t, testTimestamp, parsed.Timestamp)
	require.Equal(t, testDigest, parsed.Test)
	require.Empty(t, parsed.Live)
}

func TestParseSignatureHeaderRejectsGarbage(t *testing.T) {
	cases := []string{
		"",
		"te=abc",
		"t=notanumber,te=abc",
	}
	for _, header := range cases {
		_, err := ParseSignatureHeader(header)
		require.Error(t, err, "header %q", header)
	}
}

func TestVerifySignatureTestMode(t *testing.T) {
	header := fmt.Sprintf("t=%d,te=%s", testTimestamp, testDigest)
	now := time.Unix(testTimestamp, 0).Add(time.Minute)

	err := VerifySignature(testSecret, header, []byte(testPayload), "test", now, 5*time.Minute)
	require.NoError(t, err)
}

func TestVerifySignatureFallsBackToV1(t *testing.T) {
	header := fmt.Sprintf("t=%d,v1=%s", testTimestamp, testDigest)
	now := time.Unix(testTimestamp, 0)

	err := VerifySignature(testSecret, header, []byte(testPayload), "test", now, 0)
	require.NoError(t, err)
}

func TestVerifySignatureLiveModeUsesLiveSlot(t *testing.T) {
	header := fmt.Sprintf("t=%d,te=%s,li=%s", testTimestamp, "deadbeef", testDigest)
	now := time.Unix(testTimestamp, 0)

	err := VerifySignature(testSecret, header, []byte(testPayload), "live", now, 0)
	require.NoError(t, err)
}

func TestVerifySignatureMismatch(t *testing.T) {
	header := fmt.Sprintf("t=%d,te=%s", testTimestamp, testDigest)
	now := time.Unix(testTimestamp, 0)

	err := VerifySignature(testSecret, header, []byte(`{"tampered":true}`), "test", now, 0)
	require.Error(t, err)
}

func TestVerifySignatureStaleTimestamp(t *testing.T) {
	header := fmt.Sprintf("t=%d,te=%s", testTimestamp, testDigest)
	now := time.Unix(testTimestamp, 0).Add(time.Hour)

	err := VerifySignature(testSecret, header, []byte(testPayload), "test", now, 5*time.Minute)
	require.Error(t, err)
}
