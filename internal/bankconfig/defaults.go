package bankconfig

// defaultConfigs is the bundled registry used when the remote document
// cannot be fetched or decoded. Order matters: detection is first match
// wins, so more specific banks go first.
//
// Every transaction pattern exposes exactly five capture groups in fixed
// order: date, sign, amount, operation, details.
func defaultConfigs() []*ParserConfig {
	return []*ParserConfig{
		{
			BankID:             "kaspi",
			BankMarkers:        []string{"kaspi", "каспи", "kaspi.kz"},
			TransactionPattern: `^\s*(\d{2}\.\d{2}\.\d{2})\s+([+-])\s*([0-9][0-9\s\x{00A0}\x{202F}.,]*)\s*₸\s+(\S+)\s+(.+)$`,
			DateFormat:         "dd.MM.yy",
			AmountFormat:       AmountCommaDot,
			OperationTypeMap: map[string]string{
				"Покупка":    "expense",
				"Перевод":    "expense",
				"Снятие":     "expense",
				"Пополнение": "income",
			},
			SkipPatterns:   []string{"Доступно на", "Сумма заблокирована", "Перенос остатка"},
			JoinLines:      true,
			UseSignForType: true,
		},
		{
			BankID:             "halyk",
			BankMarkers:        []string{"halyk", "халык", "homebank.kz"},
			TransactionPattern: `^\s*(\d{2}\.\d{2}\.\d{4})\s+([+-])\s*([0-9][0-9\s\x{00A0}.,]*)\s*KZT\s+(\S+)\s+(.+)$`,
			DateFormat:         "dd.MM.yyyy",
			AmountFormat:       AmountCommaDot,
			OperationTypeMap: map[string]string{
				"Оплата":     "expense",
				"Перевод":    "expense",
				"Зачисление": "income",
			},
			SkipPatterns:   []string{"Входящий остаток", "Исходящий остаток"},
			JoinLines:      true,
			UseSignForType: true,
		},
		{
			BankID:             "forte",
			BankMarkers:        []string{"forte", "fortebank"},
			TransactionPattern: `^\s*(\d{2}/\d{2}/\d{4})\s+([+-])\s*([0-9][0-9,.]*)\s+(\S+)\s+(.+)$`,
			DateFormat:         "dd/MM/yyyy",
			AmountFormat:       AmountDotComma,
			OperationTypeMap: map[string]string{
				"Purchase": "expense",
				"Transfer": "expense",
				"Fee":      "expense",
				"Deposit":  "income",
				"Refund":   "income",
			},
			SkipPatterns:   []string{"Opening balance", "Closing balance", "Statement period"},
			JoinLines:      false,
			UseSignForType: false,
		},
	}
}

// DefaultConfigs returns the validated bundled registry
func DefaultConfigs() ([]*ParserConfig, error) {
	configs := defaultConfigs()
	for _, config := range configs {
		if err := config.Validate(); err != nil {
			return nil, err
		}
	}
	return configs, nil
}
