package bankconfig

import "testing"

func markerConfig(bankID string, markers ...string) *ParserConfig {
	return &ParserConfig{BankID: bankID, BankMarkers: markers}
}

func TestDetectFirstMatchWins(t *testing.T) {
	a := markerConfig("bank_a", "Acme Bank")
	b := markerConfig("bank_b", "statement") // also matches the text below
	text := "Acme Bank statement for January"

	if got := Detect(text, []*ParserConfig{a, b}); got != a {
		t.Errorf("Expected bank_a with [A, B] ordering, got %v", got)
	}
	if got := Detect(text, []*ParserConfig{b, a}); got != b {
		t.Errorf("Expected bank_b with [B, A] ordering, got %v", got)
	}
}

func TestDetectCaseInsensitive(t *testing.T) {
	config := markerConfig("kaspi", "KASPI.KZ")

	if got := Detect("Выписка kaspi.kz Gold", []*ParserConfig{config}); got != config {
		t.Error("Expected case-insensitive marker match")
	}
}

func TestDetectNegative(t *testing.T) {
	configs := []*ParserConfig{markerConfig("kaspi", "kaspi")}

	if got := Detect("", configs); got != nil {
		t.Error("Expected nil for empty text")
	}
	if got := Detect("   \n  ", configs); got != nil {
		t.Error("Expected nil for blank text")
	}
	if got := Detect("some statement text", nil); got != nil {
		t.Error("Expected nil for empty config list")
	}
	if got := Detect("no bank names here", configs); got != nil {
		t.Error("Expected nil when no marker matches")
	}
}

func TestDetectSkipsBlankMarkers(t *testing.T) {
	config := markerConfig("weird", "", "   ", "halyk")

	if got := Detect("any text at all", []*ParserConfig{config}); got != nil {
		t.Error("Expected blank markers not to match everything")
	}
	if got := Detect("Halyk Bank statement", []*ParserConfig{config}); got != config {
		t.Error("Expected non-blank marker to still match")
	}
}
