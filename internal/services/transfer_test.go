package services

import (
	"testing"
	"time"

	. "dutydesk/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRows(t *testing.T) {
	t.Run("skips header and numbers lines from the file", func(t *testing.T) {
		rows, err := readRows("a,b\n1,2\n3,4\n")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 2, rows[0].line)
		assert.Equal(t, []string{"1", "2"}, rows[0].fields)
		assert.Equal(t, 3, rows[1].line)
	})

	t.Run("tolerates ragged rows", func(t *testing.T) {
		rows, err := readRows("a,b,c\n1,2\n1,2,3,4\n")
		require.NoError(t, err)
		assert.Len(t, rows, 2)
		assert.Len(t, rows[0].fields, 2)
		assert.Len(t, rows[1].fields, 4)
	})

	t.Run("header only yields no rows", func(t *testing.T) {
		rows, err := readRows("a,b,c\n")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestParseEquipmentRow(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name   string
		fields []string
		reason string
		check  func(t *testing.T, item *Equipment)
	}{
		{
			name: "full row",
			fields: []string{
				id.String(), "Folding Table", "6ft banquet", "", "available",
				"Furniture", "SN-1", "wobbly leg", "2024-01-15", "20.00",
			},
			check: func(t *testing.T, item *Equipment) {
				assert.Equal(t, id, item.ID)
				assert.Equal(t, "Folding Table", item.Name)
				assert.Equal(t, "Furniture", item.Category)
				require.NotNil(t, item.SerialNumber)
				assert.Equal(t, "SN-1", *item.SerialNumber)
				assert.Equal(t, "20.00", item.DepositAmount.StringFixed(2))
				assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), item.CreatedAt)
			},
		},
		{
			name:   "missing name",
			fields: []string{"", " ", "", "", "", "", "", "", "", ""},
			reason: "name is required",
		},
		{
			name:   "too few fields",
			fields: []string{"", "Table"},
			reason: "expected 10 fields, got 2",
		},
		{
			name: "negative deposit",
			fields: []string{
				"", "Table", "", "", "", "", "", "", "", "-5.00",
			},
			reason: "invalid depositAmount",
		},
		{
			name: "unparseable id gets a fresh one on insert",
			fields: []string{
				"not-a-uuid", "Table", "", "", "", "", "", "", "", "",
			},
			check: func(t *testing.T, item *Equipment) {
				assert.Equal(t, uuid.Nil, item.ID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, reason := parseEquipmentRow(tt.fields)
			assert.Equal(t, tt.reason, reason)
			if tt.reason == "" {
				require.NotNil(t, item)
				if tt.check != nil {
					tt.check(t, item)
				}
			} else {
				assert.Nil(t, item)
			}
		})
	}
}

func TestParseCheckoutRow(t *testing.T) {
	equipmentID := uuid.New()

	valid := []string{
		"", equipmentID.String(), "1001", "2025-01-01", "2025-03-01",
		"", "taken for fish fry", "", "Walt", "20.00", "",
	}

	t.Run("valid open checkout", func(t *testing.T) {
		record, reason := parseCheckoutRow(valid)
		require.Empty(t, reason)
		assert.Equal(t, equipmentID, record.EquipmentID)
		assert.Equal(t, "1001", record.MemberID)
		assert.Nil(t, record.ReturnDate)
		assert.True(t, record.IsOpen())
		assert.Equal(t, "20.00", record.DepositCollected.StringFixed(2))
	})

	t.Run("closed checkout with deposit returned", func(t *testing.T) {
		fields := append([]string{}, valid...)
		fields[5] = "2025-02-01"
		fields[10] = "true"

		record, reason := parseCheckoutRow(fields)
		require.Empty(t, reason)
		require.NotNil(t, record.ReturnDate)
		require.NotNil(t, record.DepositReturned)
		assert.True(t, *record.DepositReturned)
		assert.False(t, record.IsOpen())
	})

	t.Run("bad equipment id", func(t *testing.T) {
		fields := append([]string{}, valid...)
		fields[1] = "nope"

		_, reason := parseCheckoutRow(fields)
		assert.Equal(t, "invalid equipmentId", reason)
	})

	t.Run("expected return before checkout", func(t *testing.T) {
		fields := append([]string{}, valid...)
		fields[4] = "2024-12-01"

		_, reason := parseCheckoutRow(fields)
		assert.Equal(t, "expectedReturnDate before checkoutDate", reason)
	})

	t.Run("missing member id", func(t *testing.T) {
		fields := append([]string{}, valid...)
		fields[2] = "  "

		_, reason := parseCheckoutRow(fields)
		assert.Equal(t, "memberId is required", reason)
	})
}

func TestParseMemberRow(t *testing.T) {
	t.Run("minimal row gets defaults", func(t *testing.T) {
		member, reason := parseMemberRow([]string{"", "1001", "Walter Kowalski"})
		require.Empty(t, reason)
		assert.Equal(t, "1001", member.MemberID)
		assert.Equal(t, MemberEmailPlaceholder, member.Email)
		assert.Equal(t, MemberStatusActive, member.Status)
		assert.Equal(t, MemberGroupLegion, member.Group)
	})

	t.Run("full row", func(t *testing.T) {
		member, reason := parseMemberRow([]string{
			"", "1002", "Doris Chen", "555-0102", "doris@example.com",
			"12 Main St", "", "2005-09-03", "Post 42", "Inactive", "Auxiliary",
		})
		require.Empty(t, reason)
		assert.Equal(t, "doris@example.com", member.Email)
		assert.Equal(t, MemberStatusInactive, member.Status)
		assert.Equal(t, MemberGroupAuxiliary, member.Group)
		assert.Equal(t, time.Date(2005, 9, 3, 0, 0, 0, 0, time.UTC), member.JoinDate)
	})

	t.Run("too few fields", func(t *testing.T) {
		_, reason := parseMemberRow([]string{"", "1001"})
		assert.Equal(t, "expected at least id, memberId, and name", reason)
	})

	t.Run("missing member id", func(t *testing.T) {
		_, reason := parseMemberRow([]string{"", "", "Walter"})
		assert.Equal(t, "memberId is required", reason)
	})

	t.Run("missing name", func(t *testing.T) {
		_, reason := parseMemberRow([]string{"", "1001", " "})
		assert.Equal(t, "name is required", reason)
	})

	t.Run("unknown status and group fall back to defaults", func(t *testing.T) {
		member, reason := parseMemberRow([]string{
			"", "1003", "Ray Delgado", "", "", "", "", "", "", "Retired", "Guests",
		})
		require.Empty(t, reason)
		assert.Equal(t, MemberStatusActive, member.Status)
		assert.Equal(t, MemberGroupLegion, member.Group)
	})
}

func TestRowRoundTrip(t *testing.T) {
	t.Run("equipment survives export and import", func(t *testing.T) {
		serial := "SN-77"
		notes := "left pole bent"
		item := &Equipment{
			BaseUUIDModel: BaseUUIDModel{
				ID:        uuid.New(),
				CreatedAt: time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC),
			},
			Name:          "PA Speaker",
			Description:   "powered 12in",
			ImageURI:      "https://example.com/speaker.jpg",
			Category:      "Audio",
			SerialNumber:  &serial,
			Notes:         &notes,
			DepositAmount: decimal.RequireFromString("45.50"),
			Status:        EquipmentStatusAvailable,
		}

		parsed, reason := parseEquipmentRow(equipmentRow(item))
		require.Empty(t, reason)
		assert.Equal(t, item.ID, parsed.ID)
		assert.Equal(t, item.Name, parsed.Name)
		assert.Equal(t, item.Description, parsed.Description)
		assert.Equal(t, item.ImageURI, parsed.ImageURI)
		assert.Equal(t, item.Category, parsed.Category)
		require.NotNil(t, parsed.SerialNumber)
		assert.Equal(t, serial, *parsed.SerialNumber)
		require.NotNil(t, parsed.Notes)
		assert.Equal(t, notes, *parsed.Notes)
		assert.True(t, parsed.CreatedAt.Equal(item.CreatedAt))
		assert.True(t, parsed.DepositAmount.Equal(item.DepositAmount))
	})

	t.Run("open checkout survives export and import", func(t *testing.T) {
		record := &CheckoutRecord{
			BaseUUIDModel:      BaseUUIDModel{ID: uuid.New()},
			EquipmentID:        uuid.New(),
			MemberID:           "1002",
			CheckoutDate:       time.Date(2025, 1, 4, 9, 0, 0, 0, time.UTC),
			ExpectedReturnDate: time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC),
			CheckoutNotes:      "fish fry, returns Monday",
			DutyOfficer:        "Walt",
			DepositCollected:   decimal.RequireFromString("20.00"),
		}

		parsed, reason := parseCheckoutRow(checkoutRow(record))
		require.Empty(t, reason)
		assert.Equal(t, record.ID, parsed.ID)
		assert.Equal(t, record.EquipmentID, parsed.EquipmentID)
		assert.Equal(t, record.MemberID, parsed.MemberID)
		assert.True(t, parsed.CheckoutDate.Equal(record.CheckoutDate))
		assert.True(t, parsed.ExpectedReturnDate.Equal(record.ExpectedReturnDate))
		assert.Nil(t, parsed.ReturnDate)
		assert.Equal(t, record.CheckoutNotes, parsed.CheckoutNotes)
		assert.Equal(t, record.DutyOfficer, parsed.DutyOfficer)
		assert.True(t, parsed.DepositCollected.Equal(record.DepositCollected))
		assert.Nil(t, parsed.DepositReturned)
	})

	t.Run("closed checkout keeps return fields", func(t *testing.T) {
		returned := time.Date(2025, 2, 1, 16, 45, 0, 0, time.UTC)
		depositBack := true
		record := &CheckoutRecord{
			BaseUUIDModel:      BaseUUIDModel{ID: uuid.New()},
			EquipmentID:        uuid.New(),
			MemberID:           "1003",
			CheckoutDate:       time.Date(2025, 1, 4, 9, 0, 0, 0, time.UTC),
			ExpectedReturnDate: time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC),
			ReturnDate:         &returned,
			ReturnNotes:        "came back clean",
			DutyOfficer:        "Doris",
			DepositCollected:   decimal.RequireFromString("20.00"),
			DepositReturned:    &depositBack,
		}

		parsed, reason := parseCheckoutRow(checkoutRow(record))
		require.Empty(t, reason)
		require.NotNil(t, parsed.ReturnDate)
		assert.True(t, parsed.ReturnDate.Equal(returned))
		assert.Equal(t, record.ReturnNotes, parsed.ReturnNotes)
		require.NotNil(t, parsed.DepositReturned)
		assert.True(t, *parsed.DepositReturned)
	})

	t.Run("member survives export and import", func(t *testing.T) {
		member := &Member{
			BaseUUIDModel: BaseUUIDModel{ID: uuid.New()},
			MemberID:      "1002",
			Name:          "Doris Chen",
			Phone:         "555-0102",
			Email:         "doris@example.com",
			Address:       "12 Main St",
			Notes:         "prefers evening shifts",
			JoinDate:      time.Date(2005, 9, 3, 0, 0, 0, 0, time.UTC),
			Branch:        "Navy",
			Status:        MemberStatusInactive,
			Group:         MemberGroupAuxiliary,
		}

		parsed, reason := parseMemberRow(memberRow(member))
		require.Empty(t, reason)
		assert.Equal(t, member.ID, parsed.ID)
		assert.Equal(t, member.MemberID, parsed.MemberID)
		assert.Equal(t, member.Name, parsed.Name)
		assert.Equal(t, member.Phone, parsed.Phone)
		assert.Equal(t, member.Email, parsed.Email)
		assert.Equal(t, member.Address, parsed.Address)
		assert.Equal(t, member.Notes, parsed.Notes)
		assert.True(t, parsed.JoinDate.Equal(member.JoinDate))
		assert.Equal(t, member.Branch, parsed.Branch)
		assert.Equal(t, member.Status, parsed.Status)
		assert.Equal(t, member.Group, parsed.Group)
	})
}

func TestParseDate(t *testing.T) {
	t.Run("RFC3339", func(t *testing.T) {
		parsed, err := parseDate("2025-06-01T12:00:00Z")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), parsed)
	})

	t.Run("date only", func(t *testing.T) {
		parsed, err := parseDate(" 2025-06-01 ")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), parsed)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := parseDate("June 1st")
		assert.Error(t, err)
	})
}

func TestCSVFieldHelpers(t *testing.T) {
	assert.Equal(t, "", stringOrEmpty(nil))
	s := "x"
	assert.Equal(t, "x", stringOrEmpty(&s))

	assert.Equal(t, "", timeOrEmpty(nil))
	ts := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-06-01T00:00:00Z", timeOrEmpty(&ts))

	assert.Equal(t, "", boolOrEmpty(nil))
	yes, no := true, false
	assert.Equal(t, "true", boolOrEmpty(&yes))
	assert.Equal(t, "false", boolOrEmpty(&no))
}
