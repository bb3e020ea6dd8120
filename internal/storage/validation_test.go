package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/underbudget/internal/model"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name      string
		str       string
		paramName string
		wantErr   bool
	}{
		{name: "valid string", str: "test", paramName: "param", wantErr: false},
		{name: "empty string", str: "", paramName: "param", wantErr: true},
		{name: "whitespace only", str: "   ", paramName: "param", wantErr: true},
		{name: "string with spaces", str: "  test  ", paramName: "param", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, tt.paramName)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.paramName) {
				t.Errorf("validateString() error should contain param name %s, got %v", tt.paramName, err)
			}
		})
	}
}

func TestValidateTransaction(t *testing.T) {
	now := time.Now()
	tests := []struct {
		txn     *model.Transaction
		name    string
		wantErr bool
	}{
		{
			name:    "valid transaction",
			txn:     &model.Transaction{Date: now, Payee: "Store", Amount: decimal.NewFromInt(-10)},
			wantErr: false,
		},
		{
			name:    "memo only",
			txn:     &model.Transaction{Date: now, Memo: "Check 1042"},
			wantErr: false,
		},
		{
			name:    "nil transaction",
			txn:     nil,
			wantErr: true,
		},
		{
			name:    "missing date",
			txn:     &model.Transaction{Payee: "Store"},
			wantErr: true,
		},
		{
			name:    "missing payee and memo",
			txn:     &model.Transaction{Date: now},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTransaction(tt.txn)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateTransaction() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
