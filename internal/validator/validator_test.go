package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type sample struct {
	Type     string           `validate:"required,transaction_type"`
	Category string           `validate:"omitempty,category_type"`
	Period   string           `validate:"omitempty,budget_period"`
	Amount   decimal.Decimal  `validate:"gt=0,money"`
	Optional *decimal.Decimal `validate:"omitempty,gt=0"`
}

func TestCustomTags(t *testing.T) {
	v := validator.New()
	RegisterOn(v)

	neg := decimal.RequireFromString("-1")
	tests := []struct {
		name  string
		in    sample
		valid bool
	}{
		{"valid", sample{Type: "income", Category: "both", Period: "weekly", Amount: decimal.RequireFromString("12.50")}, true},
		{"bad transaction type", sample{Type: "transfer", Amount: decimal.NewFromInt(1)}, false},
		{"bad category type", sample{Type: "expense", Category: "savings", Amount: decimal.NewFromInt(1)}, false},
		{"bad period", sample{Type: "expense", Period: "daily", Amount: decimal.NewFromInt(1)}, false},
		{"zero amount", sample{Type: "expense", Amount: decimal.Zero}, false},
		{"negative amount", sample{Type: "expense", Amount: decimal.NewFromInt(-5)}, false},
		{"too precise", sample{Type: "expense", Amount: decimal.RequireFromString("1.234")}, false},
		{"negative optional", sample{Type: "expense", Amount: decimal.NewFromInt(1), Optional: &neg}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
