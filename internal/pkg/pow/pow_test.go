package pow

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

// solve brute-forces a counter whose sha256(nonce+counter) hash carries the required
// number of leading zeros. Difficulty 1 keeps this near-instant.
func solve(nonce string, difficulty int) string {
	prefix := strings.Repeat("0", difficulty)
	for counter := 0; ; counter++ {
		candidate := strconv.Itoa(counter)
		hash := sha256.Sum256([]byte(fmt.Sprintf("%s%s", nonce, candidate)))
		if strings.HasPrefix(hex.EncodeToString(hash[:]), prefix) {
			return candidate
		}
	}
}

func TestValidateProofIssuesToken(t *testing.T) {
	mgr := NewPoWManager(1)

	nonce := mgr.GenerateNonce()
	counter := solve(nonce, 1)

	token, err := mgr.ValidateProof(nonce, counter)
	if err != nil {
		t.Fatalf("ValidateProof failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a proof token")
	}

	r := httptest.NewRequest("POST", "/api/auth/register", nil)
	r.Header.Set(TokenHeaderKey, token)
	if !mgr.CheckProofToken(r) {
		t.Fatalf("issued token should pass the check")
	}
}

func TestValidateProofRejectsBadCounter(t *testing.T) {
	mgr := NewPoWManager(4)

	nonce := mgr.GenerateNonce()
	if _, err := mgr.ValidateProof(nonce, "definitely-wrong"); err == nil {
		t.Fatalf("expected a difficulty failure")
	}
}

func TestValidateProofRejectsUnknownNonce(t *testing.T) {
	mgr := NewPoWManager(1)

	if _, err := mgr.ValidateProof("never-issued", "0"); err == nil {
		t.Fatalf("expected an unknown nonce to be rejected")
	}
}

func TestNonceIsSingleUse(t *testing.T) {
	mgr := NewPoWManager(1)

	nonce := mgr.GenerateNonce()
	counter := solve(nonce, 1)

	if _, err := mgr.ValidateProof(nonce, counter); err != nil {
		t.Fatalf("first ValidateProof failed: %v", err)
	}
	if _, err := mgr.ValidateProof(nonce, counter); err == nil {
		t.Fatalf("nonce replay should be rejected")
	}
}

func TestCheckProofTokenFromQuery(t *testing.T) {
	mgr := NewPoWManager(1)

	nonce := mgr.GenerateNonce()
	token, err := mgr.ValidateProof(nonce, solve(nonce, 1))
	if err != nil {
		t.Fatalf("ValidateProof failed: %v", err)
	}

	r := httptest.NewRequest("GET", "/ws?pow_token="+token, nil)
	if !mgr.CheckProofToken(r) {
		t.Fatalf("token in query parameter should pass the check")
	}
}

func TestCheckProofTokenMissing(t *testing.T) {
	mgr := NewPoWManager(1)

	r := httptest.NewRequest("GET", "/ws", nil)
	if mgr.CheckProofToken(r) {
		t.Fatalf("request without a token must fail the check")
	}
}
