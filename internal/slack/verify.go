// Package slack is the messaging boundary: it verifies inbound request
// signatures, parses event and interactivity payloads, builds Block Kit
// messages, and delivers DMs.
package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
	"time"
)

const (
	signatureVersion = "v0"

	// MaxSignatureAge is the replay window for signed requests.
	MaxSignatureAge = 5 * time.Minute
)

var signaturePattern = regexp.MustCompile(`^v0=[a-f0-9]{64}$`)

// Verifier checks the HMAC-SHA256 request signatures Slack attaches to
// webhook deliveries. Requests that fail verification must be rejected
// before any state is touched.
type Verifier struct {
	secret []byte

	now func() time.Time
}

// NewVerifier creates a Verifier for the given signing secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), now: time.Now}
}

// Verify reports whether signature is a valid v0 signature over
// timestamp and body, and the timestamp is within the replay window.
// Comparison is constant-time.
func (v *Verifier) Verify(timestamp, signature string, body []byte) bool {
	if timestamp == "" || !signaturePattern.MatchString(signature) {
		return false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil || ts <= 0 {
		return false
	}
	age := v.now().Unix() - ts
	if age < 0 {
		age = -age
	}
	if age > int64(MaxSignatureAge.Seconds()) {
		return false
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(signatureVersion + ":" + timestamp + ":"))
	mac.Write(body)
	expected := signatureVersion + "=" + hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
