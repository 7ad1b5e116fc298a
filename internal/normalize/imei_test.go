package normalize

import "testing"

func TestCleanIMEITruncate(t *testing.T) {
	got, ok := CleanIMEITruncate("123456789012345678")
	if !ok || got != "123456789012345" {
		t.Errorf("CleanIMEITruncate = %q, %v", got, ok)
	}

	if _, ok := CleanIMEITruncate("12345"); ok {
		t.Errorf("expected rejection for short imei")
	}
}

func TestCleanIMEIStrict(t *testing.T) {
	got, ok := CleanIMEIStrict("123456789012345")
	if !ok || got != "123456789012345" {
		t.Errorf("CleanIMEIStrict = %q, %v", got, ok)
	}

	if _, ok := CleanIMEIStrict("1234567890123456"); ok {
		t.Errorf("expected rejection for 16-digit imei under strict rule")
	}
}
