package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// hashDetailsLimit caps how much of the details string participates in the
// content hash. Truncation absorbs minor OCR/AI wording variance between
// repeated extractions of the same real-world transaction while still
// discriminating between different transactions sharing date, amount and
// type. Two genuinely distinct transactions identical in all four hash
// inputs collide on purpose and are treated as duplicates.
const hashDetailsLimit = 30

// UniqueHash computes the deterministic content hash used for duplicate
// detection by both parsing paths and the deduplication engine:
//
//	SHA-256(date_iso8601 + "|" + amount + "|" + type + "|" + details[:30])
//
// rendered as 64 lowercase hex characters. Details are truncated by runes so
// multi-byte scripts hash consistently.
func UniqueHash(date time.Time, amount decimal.Decimal, txType TransactionType, details string) string {
	details = strings.TrimSpace(details)
	if runes := []rune(details); len(runes) > hashDetailsLimit {
		details = string(runes[:hashDetailsLimit])
	}

	composite := date.Format("2006-01-02") + "|" + amount.String() + "|" + txType.String() + "|" + details
	sum := sha256.Sum256([]byte(composite))
	return hex.EncodeToString(sum[:])
}
