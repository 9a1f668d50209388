package storage

import (
	"fmt"
	"path"
	"strings"
)

// ReceiptRef builds the event-relative reference of a receipt file.
func ReceiptRef(expenseID, name string) string {
	return path.Join("receipts", expenseID, name)
}

// ParseReceiptRef splits a reference produced by ReceiptRef.
func ParseReceiptRef(ref string) (expenseID, name string, err error) {
	parts := strings.Split(ref, "/")
	if len(parts) != 3 || parts[0] != "receipts" {
		return "", "", fmt.Errorf("%w: receipt reference %q", ErrInvalidID, ref)
	}
	if err := CheckID(parts[1]); err != nil {
		return "", "", err
	}
	if err := CheckID(parts[2]); err != nil {
		return "", "", err
	}
	return parts[1], parts[2], nil
}

// CheckID rejects identifiers that would escape or alias a storage path.
func CheckID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
