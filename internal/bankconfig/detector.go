package bankconfig

import "strings"

// Detect returns the first config whose markers appear in the extracted
// statement text, or nil when nothing matches. Matching is case-insensitive
// substring search, not regex. First match wins by config order, so callers
// control precedence by how they order the registry. The linear scan is
// deliberate: registries hold tens of banks, not thousands.
func Detect(text string, configs []*ParserConfig) *ParserConfig {
	if strings.TrimSpace(text) == "" || len(configs) == 0 {
		return nil
	}

	lower := strings.ToLower(text)
	for _, config := range configs {
		for _, marker := range config.BankMarkers {
			marker = strings.ToLower(strings.TrimSpace(marker))
			if marker == "" {
				continue
			}
			if strings.Contains(lower, marker) {
				return config
			}
		}
	}

	return nil
}
