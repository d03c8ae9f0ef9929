package memberController

import (
	"testing"

	. "dutydesk/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected MemberStatus
	}{
		{"Active", MemberStatusActive},
		{"Inactive", MemberStatusInactive},
		{"Deceased", MemberStatusDeceased},
		{"", MemberStatusActive},
		{"active", MemberStatusActive},
		{"Retired", MemberStatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeMemberStatus(tt.input))
		})
	}
}

func TestNormalizeGroup(t *testing.T) {
	tests := []struct {
		input    string
		expected MemberGroup
	}{
		{"Legion", MemberGroupLegion},
		{"Auxiliary", MemberGroupAuxiliary},
		{"Sons", MemberGroupSons},
		{"Riders", MemberGroupRiders},
		{"", MemberGroupLegion},
		{"legion", MemberGroupLegion},
		{"Guests", MemberGroupLegion},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeMemberGroup(tt.input))
		})
	}
}
