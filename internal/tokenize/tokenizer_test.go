package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVendorKey(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
	}{
		{
			name:        "strips pos purchase prefix",
			description: "POS PURCHASE AMAZON MARKETPLACE",
			want:        "amazon marketplace",
		},
		{
			name:        "strips trailing reference number",
			description: "Starbucks Coffee 482910385",
			want:        "starbucks coffee",
		},
		{
			name:        "strips punctuation",
			description: "AMAZON.COM*MKTP",
			want:        "amazon com mktp",
		},
		{
			name:        "keeps first five words",
			description: "some very long merchant name with extra trailing words",
			want:        "some very long merchant name",
		},
		{
			name:        "eft prefix",
			description: "EFT Acme Consulting",
			want:        "acme consulting",
		},
		{
			name:        "empty input",
			description: "",
			want:        "",
		},
		{
			name:        "whitespace only",
			description: "   \t ",
			want:        "",
		},
		{
			name:        "digits only",
			description: "123 456",
			want:        "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VendorKey(tt.description))
		})
	}
}

func TestTokens(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        []string
	}{
		{
			name:        "basic tokenization",
			description: "AMAZON MARKETPLACE PAYMENT",
			want:        []string{"amazon", "marketplace"},
		},
		{
			name:        "drops short and numeric tokens",
			description: "ATM WD 12345 at mall",
			want:        []string{"atm", "mall"},
		},
		{
			name:        "deduplicates preserving order",
			description: "uber trip uber trip",
			want:        []string{"uber", "trip"},
		},
		{
			name:        "stop words removed",
			description: "payment for the hosting",
			want:        []string{"hosting"},
		},
		{
			name:        "empty input",
			description: "",
			want:        nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokens(tt.description))
		})
	}
}

func TestTokenCounts(t *testing.T) {
	counts := TokenCounts("uber trip uber trip uber uber", 3)
	assert.Equal(t, 3, counts["uber"], "per-token cap applies")
	assert.Equal(t, 2, counts["trip"])

	assert.Nil(t, TokenCounts("", 3))
	assert.Nil(t, TokenCounts("12 34 a b", 3))
}

func TestNormalizeDeterminism(t *testing.T) {
	desc := "POS PURCHASE Starbucks Coffee #7731 99120045"

	key1, tokens1 := Normalize(desc)
	key2, tokens2 := Normalize(desc)

	assert.Equal(t, key1, key2)
	assert.Equal(t, tokens1, tokens2)
	assert.Equal(t, "starbucks coffee", key1)
}
