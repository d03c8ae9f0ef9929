package equipmentController

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeRenewalDate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name            string
		expectedReturn  time.Time
		expectedRenewal time.Time
	}{
		{
			name:            "renewal before expiry extends from expected return",
			expectedReturn:  now.AddDate(0, 0, 30),
			expectedRenewal: now.AddDate(0, 0, 30+RenewalDays),
		},
		{
			name:            "renewal of overdue checkout extends from now",
			expectedReturn:  now.AddDate(0, 0, -15),
			expectedRenewal: now.AddDate(0, 0, RenewalDays),
		},
		{
			name:            "renewal due exactly now extends from expected return",
			expectedReturn:  now,
			expectedRenewal: now.AddDate(0, 0, RenewalDays),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := computeRenewalDate(tt.expectedReturn, now)
			assert.Equal(t, tt.expectedRenewal, result)
		})
	}
}

func TestComputeRenewalDate_DoubleRenewal(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	expectedReturn := now.AddDate(0, 0, 10)

	first := computeRenewalDate(expectedReturn, now)
	second := computeRenewalDate(first, now)

	assert.Equal(t, expectedReturn.AddDate(0, 0, 2*RenewalDays), second)
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		expectedReturn time.Time
		overdue        bool
	}{
		{"past due date", now.Add(-time.Second), true},
		{"due exactly now is not overdue", now, false},
		{"future due date", now.Add(time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overdue, isOverdue(tt.expectedReturn, now))
		})
	}
}

func TestIsDueSoon(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		expectedReturn time.Time
		dueSoon        bool
	}{
		{"overdue is excluded", now.Add(-time.Hour), false},
		{"due now", now, true},
		{"due inside window", now.AddDate(0, 0, 5), true},
		{"due exactly at window edge", now.AddDate(0, 0, DueSoonWindowDays), true},
		{"due past window", now.AddDate(0, 0, DueSoonWindowDays).Add(time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.dueSoon, isDueSoon(tt.expectedReturn, now))
		})
	}
}

func TestValidateCheckoutWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		expectedReturn time.Time
		wantErr        bool
	}{
		{"return date in the past", now.Add(-time.Hour), true},
		{"return date exactly now", now, true},
		{"standard checkout", now.AddDate(0, 0, DefaultCheckoutDays), false},
		{"maximum duration", now.AddDate(0, 0, MaxCheckoutDays), false},
		{"past maximum duration", now.AddDate(0, 0, MaxCheckoutDays).Add(time.Second), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCheckoutWindow(tt.expectedReturn, now)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSuggestedRefund(t *testing.T) {
	tests := []struct {
		name     string
		deposit  string
		expected string
	}{
		{"round deposit", "100.00", "75.00"},
		{"zero deposit", "0.00", "0.00"},
		{"rounds to cents", "33.33", "25.00"},
		{"small deposit", "1.00", "0.75"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deposit, err := decimal.NewFromString(tt.deposit)
			assert.NoError(t, err)

			result := suggestedRefund(deposit)
			assert.Equal(t, tt.expected, result.StringFixed(2))
		})
	}
}

func TestAppendRenewalAudit(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	newReturn := now.AddDate(0, 0, RenewalDays)

	t.Run("empty notes get a single audit line", func(t *testing.T) {
		result := appendRenewalAudit("", newReturn, now, "")
		assert.Contains(t, result, "[Renewed "+now.Format(time.RFC3339)+"]")
		assert.Contains(t, result, newReturn.Format(time.RFC3339))
		assert.NotContains(t, result, "\n")
	})

	t.Run("existing notes are preserved", func(t *testing.T) {
		result := appendRenewalAudit("member called ahead", newReturn, now, "")
		lines := strings.Split(result, "\n")
		assert.Len(t, lines, 2)
		assert.Equal(t, "member called ahead", lines[0])
		assert.Contains(t, lines[1], "[Renewed ")
	})

	t.Run("renewal notes are appended to the audit line", func(t *testing.T) {
		result := appendRenewalAudit("", newReturn, now, "still needed for fish fry")
		assert.Contains(t, result, ": still needed for fish fry")
	})

	t.Run("repeated renewals stack audit lines", func(t *testing.T) {
		first := appendRenewalAudit("", newReturn, now, "")
		second := appendRenewalAudit(first, newReturn.AddDate(0, 0, RenewalDays), now.AddDate(0, 0, 30), "")
		assert.Len(t, strings.Split(second, "\n"), 2)
	})
}

func TestParseDateTime(t *testing.T) {
	t.Run("valid RFC3339", func(t *testing.T) {
		parsed, err := parseDateTime("2025-06-01T12:00:00Z")
		assert.NoError(t, err)
		assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), parsed)
	})

	t.Run("empty string", func(t *testing.T) {
		_, err := parseDateTime("")
		assert.Error(t, err)
	})

	t.Run("date only is rejected", func(t *testing.T) {
		_, err := parseDateTime("2025-06-01")
		assert.Error(t, err)
	})
}
