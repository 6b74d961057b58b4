package storage

import (
	"strings"
	"testing"
	"time"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"valid date", "2023-01-05", "2023-01-05", true},
		{"timestamp truncated", "2023-01-05T14:30:00Z", "2023-01-05", true},
		{"empty", "", "", false},
		{"too short", "2023-01", "", false},
		{"wrong separators", "2023/01/05", "", false},
		{"letters", "20a3-01-05", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeDate(tt.input)
			if ok != tt.wantOK {
				t.Errorf("NormalizeDate(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}

			if got != tt.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeOrder(t *testing.T) {
	o := NormalizeOrder(Order{ID: 1, Date: "not-a-date", Status: "  Delivered "})

	if o.Date != "" {
		t.Errorf("malformed date should normalize to empty, got %q", o.Date)
	}

	if o.Status != "Delivered" {
		t.Errorf("status should be trimmed, got %q", o.Status)
	}
}

func TestNormalizeReturn(t *testing.T) {
	r := NormalizeReturn(Return{
		ID:                  1,
		ReturnDate:          "2023-03-10",
		PickupScheduledDate: "garbage",
		RefundProcessedDate: "2023-03-15T09:00:00Z",
	})

	if r.ReturnDate != "2023-03-10" {
		t.Errorf("ReturnDate = %q, want 2023-03-10", r.ReturnDate)
	}

	if r.PickupScheduledDate != "" {
		t.Errorf("malformed pickup date should normalize to empty, got %q", r.PickupScheduledDate)
	}

	if r.RefundProcessedDate != "2023-03-15" {
		t.Errorf("RefundProcessedDate = %q, want 2023-03-15", r.RefundProcessedDate)
	}
}

func TestCustomerFullName(t *testing.T) {
	tests := []struct {
		name     string
		customer Customer
		want     string
	}{
		{"both names", Customer{FirstName: "Ada", LastName: "Lovelace"}, "Ada Lovelace"},
		{"first only", Customer{FirstName: "Ada"}, "Ada"},
		{"last only", Customer{LastName: "Lovelace"}, "Lovelace"},
		{"empty", Customer{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.customer.FullName(); got != tt.want {
				t.Errorf("FullName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateAPIKey(t *testing.T) {
	key, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey() unexpected error: %v", err)
	}

	if !strings.HasPrefix(key, "vajra_ak_") {
		t.Errorf("key missing prefix: %s", key)
	}

	if len(key) != apiKeyLength {
		t.Errorf("key length = %d, want %d", len(key), apiKeyLength)
	}

	second, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey() unexpected error: %v", err)
	}

	if key == second {
		t.Error("two generated keys should not collide")
	}
}

func TestParseAPIKey(t *testing.T) {
	valid, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey() unexpected error: %v", err)
	}

	tests := []struct {
		name      string
		input     string
		want      string
		wantError bool
	}{
		{"plain key", valid, valid, false},
		{"bearer prefix", "Bearer " + valid, valid, false},
		{"empty", "", "", true},
		{"wrong prefix", "other_ak_" + strings.Repeat("a", 64), "", true},
		{"wrong length", "vajra_ak_abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAPIKey(tt.input)
			if tt.wantError {
				if err == nil {
					t.Errorf("ParseAPIKey(%q) expected error, got nil", tt.input)
				}

				return
			}

			if err != nil {
				t.Fatalf("ParseAPIKey(%q) unexpected error: %v", tt.input, err)
			}

			if got != tt.want {
				t.Errorf("ParseAPIKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMaskKey(t *testing.T) {
	key, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey() unexpected error: %v", err)
	}

	masked := MaskKey(key)

	if masked == key {
		t.Error("masked key should differ from plaintext")
	}

	if !strings.HasPrefix(masked, key[:prefixLen]) {
		t.Errorf("masked key should keep prefix: %s", masked)
	}

	if !strings.HasSuffix(masked, key[len(key)-suffixLen:]) {
		t.Errorf("masked key should keep suffix: %s", masked)
	}

	if MaskKey("short") != "*****" {
		t.Error("non-standard key lengths should be fully masked")
	}

	if MaskKey("") != "" {
		t.Error("empty key should mask to empty string")
	}
}

func TestKeyValidateKey(t *testing.T) {
	expired := time.Now().Add(-time.Hour)

	tests := []struct {
		name     string
		key      Key
		provided string
		want     bool
	}{
		{"match", Key{Key: "vajra_ak_abc", Active: true}, "vajra_ak_abc", true},
		{"mismatch", Key{Key: "vajra_ak_abc", Active: true}, "vajra_ak_xyz", false},
		{"inactive", Key{Key: "vajra_ak_abc", Active: false}, "vajra_ak_abc", false},
		{"expired", Key{Key: "vajra_ak_abc", Active: true, ExpiresAt: &expired}, "vajra_ak_abc", false},
		{"empty provided", Key{Key: "vajra_ak_abc", Active: true}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.ValidateKey(tt.provided); got != tt.want {
				t.Errorf("ValidateKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHashAPIKeyRoundTrip(t *testing.T) {
	key, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey() unexpected error: %v", err)
	}

	hash, err := HashAPIKey(key)
	if err != nil {
		t.Fatalf("HashAPIKey() unexpected error: %v", err)
	}

	if hash == key {
		t.Error("hash should differ from plaintext")
	}

	if !CompareAPIKeyHash(hash, key) {
		t.Error("CompareAPIKeyHash should match the original key")
	}

	if CompareAPIKeyHash(hash, key+"x") {
		t.Error("CompareAPIKeyHash should reject a different key")
	}
}
