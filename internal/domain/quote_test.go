package domain

import (
	"errors"
	"testing"
)

func TestQuotationRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     QuotationRequest
		wantErr error
	}{
		{
			name: "valid request",
			req:  QuotationRequest{DNI: "11223344", Age: 30, CarValue: 10000},
		},
		{
			name:    "missing dni",
			req:     QuotationRequest{Age: 30, CarValue: 10000},
			wantErr: ErrDNIRequired,
		},
		{
			name:    "dni too short",
			req:     QuotationRequest{DNI: "1122334", Age: 30, CarValue: 10000},
			wantErr: ErrDNIFormat,
		},
		{
			name:    "dni with letters",
			req:     QuotationRequest{DNI: "1122334a", Age: 30, CarValue: 10000},
			wantErr: ErrDNIFormat,
		},
		{
			name:    "dni too long",
			req:     QuotationRequest{DNI: "112233445", Age: 30, CarValue: 10000},
			wantErr: ErrDNIFormat,
		},
		{
			name:    "under age",
			req:     QuotationRequest{DNI: "11223344", Age: 17, CarValue: 10000},
			wantErr: ErrAgeTooLow,
		},
		{
			name: "minimum age accepted",
			req:  QuotationRequest{DNI: "11223344", Age: 18, CarValue: 10000},
		},
		{
			name: "maximum age accepted",
			req:  QuotationRequest{DNI: "11223344", Age: 99, CarValue: 10000},
		},
		{
			name:    "over age",
			req:     QuotationRequest{DNI: "11223344", Age: 100, CarValue: 10000},
			wantErr: ErrAgeTooHigh,
		},
		{
			name:    "zero car value",
			req:     QuotationRequest{DNI: "11223344", Age: 30, CarValue: 0},
			wantErr: ErrCarValueInvalid,
		},
		{
			name:    "negative car value",
			req:     QuotationRequest{DNI: "11223344", Age: 30, CarValue: -5},
			wantErr: ErrCarValueInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}
