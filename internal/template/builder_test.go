package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHeaderAndBody(t *testing.T) {
	components := Build(map[string]string{
		"header_1": "A",
		"body_1":   "B",
		"body_2":   "C",
	})

	require.Len(t, components, 2)
	assert.Equal(t, ComponentHeader, components[0].Type)
	assert.Equal(t, []string{"A"}, components[0].Parameters)
	assert.Equal(t, ComponentBody, components[1].Type)
	assert.Equal(t, []string{"B", "C"}, components[1].Parameters)
}

func TestBuildBodyOrderIndependentOfMap(t *testing.T) {
	// Indexed parameters must come out in index order regardless of how the
	// map iterates.
	for i := 0; i < 10; i++ {
		components := Build(map[string]string{
			"body_3": "three",
			"body_1": "one",
			"body_2": "two",
		})
		require.Len(t, components, 1)
		assert.Equal(t, []string{"one", "two", "three"}, components[0].Parameters)
	}
}

func TestBuildUnprefixedKeysAppendToBody(t *testing.T) {
	components := Build(map[string]string{
		"body_1":      "first",
		"amount":      "₹500.00",
		"invoice_ref": "INV-42",
	})

	require.Len(t, components, 1)
	// Unprefixed keys sort by name after the indexed parameters.
	assert.Equal(t, []string{"first", "₹500.00", "INV-42"}, components[0].Parameters)
}

func TestBuildButtons(t *testing.T) {
	components := Build(map[string]string{
		"button_2":             "PAY-TOKEN",
		"button_1_quick_reply": "YES",
	})

	require.Len(t, components, 2)
	assert.Equal(t, ComponentButton, components[0].Type)
	assert.Equal(t, "quick_reply", components[0].SubType)
	assert.Equal(t, 0, components[0].Index)
	assert.Equal(t, []string{"YES"}, components[0].Parameters)

	assert.Equal(t, DefaultButtonSubType, components[1].SubType)
	assert.Equal(t, 1, components[1].Index)
	assert.Equal(t, []string{"PAY-TOKEN"}, components[1].Parameters)
}

func TestBuildDropsEmptyValues(t *testing.T) {
	components := Build(map[string]string{
		"header_1": "   ",
		"body_1":   "kept",
		"body_2":   "",
	})

	require.Len(t, components, 1)
	assert.Equal(t, ComponentBody, components[0].Type)
	assert.Equal(t, []string{"kept"}, components[0].Parameters)
}

func TestBuildEmptyInput(t *testing.T) {
	assert.Empty(t, Build(nil))
	assert.Empty(t, Build(map[string]string{}))
}

func TestValidateName(t *testing.T) {
	assert.True(t, Validate("payment_reminder_v2", map[string]string{"body_1": "x"}, nil).Valid)

	bad := Validate("Payment Reminder", map[string]string{"body_1": "x"}, nil)
	assert.False(t, bad.Valid)
	require.NotEmpty(t, bad.Errors)
}

func TestValidateIndexGap(t *testing.T) {
	result := Validate("reminder", map[string]string{
		"body_1": "a",
		"body_3": "c",
	}, nil)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "body_2")
}

func TestValidateHeaderGapStartsAtOne(t *testing.T) {
	result := Validate("reminder", map[string]string{"header_2": "a"}, nil)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "header_1")
}

func TestValidateOversizedParameter(t *testing.T) {
	long := make([]byte, MaxParameterLength+1)
	for i := range long {
		long[i] = 'a'
	}
	result := Validate("reminder", map[string]string{"body_1": string(long)}, nil)
	assert.False(t, result.Valid)
}

func TestValidateTooManyButtons(t *testing.T) {
	result := Validate("reminder", map[string]string{
		"button_1": "a",
		"button_2": "b",
		"button_3": "c",
		"button_4": "d",
	}, nil)
	assert.False(t, result.Valid)
}

func TestValidateTooManyBodyParameters(t *testing.T) {
	params := map[string]string{}
	for _, k := range []string{"body_1", "body_2", "body_3", "body_4", "body_5",
		"body_6", "body_7", "body_8", "body_9", "body_10"} {
		params[k] = "x"
	}
	assert.True(t, Validate("reminder", params, nil).Valid)

	params["extra_one"] = "y"
	assert.False(t, Validate("reminder", params, nil).Valid)
}

func TestValidateExpectedVarsWarnOnly(t *testing.T) {
	result := Validate("reminder", map[string]string{
		"customer_name": "Asha",
		"body_1":        "Dear {{customer_name}}, your invoice {{invoice_ref}} is due",
	}, []string{"customer_name", "invoice_ref", "amount"})

	assert.True(t, result.Valid, "missing expected vars must not fail validation")
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "amount")
}
