package matching

import (
	"testing"

	"jeevan/pkg/types"

	"github.com/stretchr/testify/assert"
)

func donorFixture(bloodGroup string) *types.DonorProfile {
	return &types.DonorProfile{
		ID:         "donor-1",
		BloodGroup: bloodGroup,
		OrganType:  "kidney",
		AgeGroup:   types.AgeGroupAdult,
	}
}

func recipientFixture(bloodGroup string) *types.RecipientProfile {
	return &types.RecipientProfile{
		ID:         "recipient-1",
		BloodGroup: bloodGroup,
		OrganType:  "kidney",
		AgeGroup:   types.AgeGroupAdult,
	}
}

func TestIsCompatibleBloodGroups(t *testing.T) {
	cases := []struct {
		donor     string
		recipient string
		want      bool
	}{
		// Universal donor
		{"O-", "O-", true},
		{"O-", "O+", true},
		{"O-", "A+", true},
		{"O-", "B+", true},
		{"O-", "AB-", true},
		{"O-", "AB+", true},

		// O+ gives to positives only
		{"O+", "O+", true},
		{"O+", "A+", true},
		{"O+", "B+", true},
		{"O+", "AB+", true},
		{"O+", "O-", false},
		{"O+", "A-", false},

		// A/B donors
		{"A+", "A+", true},
		{"A+", "AB+", true},
		{"A+", "B+", false},
		{"A+", "A-", false},
		{"A-", "A-", true},
		{"A-", "AB-", true},
		{"A-", "B-", false},
		{"B+", "B+", true},
		{"B+", "AB+", true},
		{"B+", "A+", false},
		{"B-", "B+", true},
		{"B-", "AB-", true},
		{"B-", "O-", false},

		// AB donors give to AB only
		{"AB+", "AB+", true},
		{"AB+", "AB-", false},
		{"AB+", "O-", false},
		{"AB-", "AB-", true},
		{"AB-", "AB+", true},
		{"AB-", "A-", false},

		// Unknown or blank fails closed
		{"", "A+", false},
		{"A+", "", false},
		{"C+", "A+", false},
	}

	for _, tc := range cases {
		got := IsCompatible(donorFixture(tc.donor), recipientFixture(tc.recipient))
		assert.Equal(t, tc.want, got, "donor %q -> recipient %q", tc.donor, tc.recipient)
	}
}

func TestIsCompatibleOrganType(t *testing.T) {
	donor := donorFixture("O-")
	recipient := recipientFixture("B+")

	donor.OrganType = "liver"
	recipient.OrganType = "kidney"
	assert.False(t, IsCompatible(donor, recipient), "organ types never substitute")

	donor.OrganType = "kidney"
	assert.True(t, IsCompatible(donor, recipient))

	donor.OrganType = ""
	assert.False(t, IsCompatible(donor, recipient), "blank organ type fails closed")
}

func TestIsCompatibleAgeGroup(t *testing.T) {
	donor := donorFixture("O-")
	recipient := recipientFixture("B+")

	donor.AgeGroup = types.AgeGroupPediatric
	recipient.AgeGroup = types.AgeGroupAdult
	assert.False(t, IsCompatible(donor, recipient), "pediatric organs go to pediatric recipients only")

	recipient.AgeGroup = types.AgeGroupPediatric
	assert.True(t, IsCompatible(donor, recipient))

	donor.AgeGroup = ""
	assert.False(t, IsCompatible(donor, recipient))
}

func TestIsCompatibleNilProfiles(t *testing.T) {
	assert.False(t, IsCompatible(nil, recipientFixture("A+")))
	assert.False(t, IsCompatible(donorFixture("A+"), nil))
}
