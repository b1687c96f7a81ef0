package aifallback

import (
	"fmt"
	"strings"

	"statement-import-service/internal/store"
)

// PromptBuilder renders the extraction prompt, embedding the caller's
// category catalog so the model can suggest category ids directly.
type PromptBuilder struct {
	expenseCategories []store.Category
	incomeCategories  []store.Category
}

// NewPromptBuilder creates a prompt builder over the given category catalog
func NewPromptBuilder(expense, income []store.Category) *PromptBuilder {
	return &PromptBuilder{
		expenseCategories: expense,
		incomeCategories:  income,
	}
}

// BuildTextPrompt renders the prompt for extracting transactions from raw
// statement text.
func (b *PromptBuilder) BuildTextPrompt(statementText string) string {
	var sb strings.Builder
	b.writeTaskHeader(&sb)
	sb.WriteString("Statement text:\n---\n")
	sb.WriteString(statementText)
	sb.WriteString("\n---\n")
	return sb.String()
}

// BuildImagePrompt renders the prompt for extracting transactions from
// attached statement images.
func (b *PromptBuilder) BuildImagePrompt() string {
	var sb strings.Builder
	b.writeTaskHeader(&sb)
	sb.WriteString("The bank statement is provided as attached images. Read every visible transaction row.\n")
	return sb.String()
}

func (b *PromptBuilder) writeTaskHeader(sb *strings.Builder) {
	sb.WriteString("You are a bank statement parser. Extract every transaction from the input.\n\n")
	sb.WriteString("Respond with ONLY a JSON object of this exact shape, no markdown fences, no commentary:\n")
	sb.WriteString(`{"transactions":[{"date":"YYYY-MM-DD","amount":123.45,"type":"expense","details":"...","category_id":1,"suggested_category_name":null,"confidence":0.9}]}`)
	sb.WriteString("\n\nRules:\n")
	sb.WriteString("- \"type\" is \"expense\" or \"income\".\n")
	sb.WriteString("- \"amount\" is a positive number; direction is carried by \"type\".\n")
	sb.WriteString("- \"category_id\" must be one of the ids listed below, or null when none fits;\n")
	sb.WriteString("  when null, put a short suggested name in \"suggested_category_name\".\n")
	sb.WriteString("- \"confidence\" is your certainty in this row, between 0 and 1.\n")
	sb.WriteString("- Skip headers, footers, page numbers and running-balance lines.\n\n")

	sb.WriteString("Expense categories:\n")
	writeCategoryList(sb, b.expenseCategories)
	sb.WriteString("Income categories:\n")
	writeCategoryList(sb, b.incomeCategories)
	sb.WriteString("\n")
}

func writeCategoryList(sb *strings.Builder, categories []store.Category) {
	if len(categories) == 0 {
		sb.WriteString("  (none)\n")
		return
	}
	for _, c := range categories {
		fmt.Fprintf(sb, "  %d: %s\n", c.ID, c.Name)
	}
}
