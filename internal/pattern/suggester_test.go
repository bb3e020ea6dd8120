package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/underbudget/internal/model"
)

func TestSuggestOperator(t *testing.T) {
	tests := []struct {
		input  string
		want   model.Operator
		wantOK bool
	}{
		{input: "begins_with", want: model.OperatorBeginsWith, wantOK: true},
		{input: "Contians", want: model.OperatorContains, wantOK: true},
		{input: "endswith", want: model.OperatorEndsWith, wantOK: true},
		{input: "equal", want: model.OperatorEquals, wantOK: true},
		{input: "regular-expression", wantOK: false},
		{input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := SuggestOperator(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSuggestField(t *testing.T) {
	got, ok := SuggestField("payees")
	assert.True(t, ok)
	assert.Equal(t, model.FieldPayee, got)

	got, ok = SuggestField("Deposits")
	assert.True(t, ok)
	assert.Equal(t, model.FieldDeposit, got)

	_, ok = SuggestField("transaction-amount")
	assert.False(t, ok)
}
