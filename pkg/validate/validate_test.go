package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMasterBillNumber tests the 9-digit master bill format check
func TestMasterBillNumber(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid 9 digits", input: "123456789", wantErr: false},
		{name: "valid with surrounding whitespace", input: "  987654321  ", wantErr: false},
		{name: "all zeros", input: "000000000", wantErr: false},
		{name: "too short", input: "12345678", wantErr: true},
		{name: "too long", input: "1234567890", wantErr: true},
		{name: "contains letter", input: "12345678A", wantErr: true},
		{name: "contains dash", input: "123-45678", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "internal whitespace", input: "1234 5678", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MasterBillNumber(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				var verr *Error
				assert.ErrorAs(t, err, &verr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestQuantity tests the minimum pallet count check
func TestQuantity(t *testing.T) {
	tests := []struct {
		quantity int
		wantErr  bool
	}{
		{quantity: 1, wantErr: false},
		{quantity: 24, wantErr: false},
		{quantity: 0, wantErr: true},
		{quantity: -3, wantErr: true},
	}

	for _, tt := range tests {
		err := Quantity(tt.quantity)
		if tt.wantErr {
			assert.Error(t, err, "quantity %d should be rejected", tt.quantity)
		} else {
			assert.NoError(t, err, "quantity %d should be accepted", tt.quantity)
		}
	}
}

// TestProductCode tests rejection of blank product codes
func TestProductCode(t *testing.T) {
	assert.NoError(t, ProductCode("PP48F"))
	assert.NoError(t, ProductCode("  BTL18-1R "))
	assert.Error(t, ProductCode(""))
	assert.Error(t, ProductCode("   "))
}

// TestNormalizeTemperature tests the shorthand mapping and the permissive
// pass-through for unrecognized values
func TestNormalizeTemperature(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "F", expected: "FREEZER"},
		{input: "C", expected: "COOLER"},
		{input: "R", expected: "COOLER"},
		{input: "FR", expected: "FREEZER CRATES"},
		{input: "f", expected: "FREEZER"},
		{input: " fr ", expected: "FREEZER CRATES"},
		{input: "FREEZER", expected: "FREEZER"},
		{input: "COOLER", expected: "COOLER"},
		{input: "FREEZER CRATES", expected: "FREEZER CRATES"},
		// Unknown values are forwarded upper-cased, not rejected.
		{input: "ambient", expected: "AMBIENT"},
		{input: "Dry Ice", expected: "DRY ICE"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeTemperature(tt.input), "input %q", tt.input)
	}
}

// TestInferTemperature tests the SKU suffix heuristic
func TestInferTemperature(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{code: "PP48F", expected: "FREEZER"},
		{code: "BTL18-1R", expected: "COOLER"},
		{code: "MLK02C", expected: "COOLER"},
		// FR suffix wins over the trailing R rule.
		{code: "XXFR", expected: "FREEZER CRATES"},
		{code: "pp48f", expected: "FREEZER"},
		{code: "", expected: "FREEZER"},
		{code: "PLAIN9", expected: "FREEZER"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, InferTemperature(tt.code), "code %q", tt.code)
	}
}
