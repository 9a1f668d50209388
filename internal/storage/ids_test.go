package storage

import (
	"errors"
	"testing"
)

func TestCheckID(t *testing.T) {
	valid := []string{"2024-01-06_2024-01-07_MT", "0001_dinner_30000", "모임"}
	for _, id := range valid {
		if err := CheckID(id); err != nil {
			t.Errorf("CheckID(%q) = %v, want nil", id, err)
		}
	}
	invalid := []string{"", ".", "..", "a/b", `a\b`, "2024/01/06_x"}
	for _, id := range invalid {
		if err := CheckID(id); !errors.Is(err, ErrInvalidID) {
			t.Errorf("CheckID(%q) = %v, want ErrInvalidID", id, err)
		}
	}
}

func TestReceiptRefRoundTrip(t *testing.T) {
	ref := ReceiptRef("0001_dinner_30000", "abc.jpg")
	if ref != "receipts/0001_dinner_30000/abc.jpg" {
		t.Fatalf("ReceiptRef = %q", ref)
	}
	exp, name, err := ParseReceiptRef(ref)
	if err != nil {
		t.Fatalf("ParseReceiptRef: %v", err)
	}
	if exp != "0001_dinner_30000" || name != "abc.jpg" {
		t.Errorf("got (%q, %q)", exp, name)
	}

	for _, bad := range []string{"receipts/../x", "other/a/b", "receipts/a", "receipts/a/b/c"} {
		if _, _, err := ParseReceiptRef(bad); !errors.Is(err, ErrInvalidID) {
			t.Errorf("ParseReceiptRef(%q) = %v, want ErrInvalidID", bad, err)
		}
	}
}
