package matching

import "jeevan/pkg/types"

// bloodRecipients maps a donor blood group to the recipient groups it may
// donate to. The relation is directional: an O- donor can give to anyone,
// while an O- recipient accepts only O-.
var bloodRecipients = map[string][]string{
	"A+":  {"A+", "AB+"},
	"A-":  {"A+", "A-", "AB+", "AB-"},
	"B+":  {"B+", "AB+"},
	"B-":  {"B+", "B-", "AB+", "AB-"},
	"AB+": {"AB+"},
	"AB-": {"AB+", "AB-"},
	"O+":  {"A+", "B+", "AB+", "O+"},
	"O-":  {"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"},
}

// IsCompatible reports whether a donor may be considered for a recipient at
// all: blood group donor->recipient, identical organ type, identical age
// group. Unknown or blank fields fail closed.
func IsCompatible(donor *types.DonorProfile, recipient *types.RecipientProfile) bool {
	if donor == nil || recipient == nil {
		return false
	}

	if donor.OrganType == "" || recipient.OrganType == "" {
		return false
	}

	if donor.AgeGroup == "" || recipient.AgeGroup == "" {
		return false
	}

	eligible, ok := bloodRecipients[donor.BloodGroup]
	if !ok {
		return false
	}

	found := false
	for _, group := range eligible {
		if group == recipient.BloodGroup {
			found = true
			break
		}
	}
	if !found {
		return false
	}

	if donor.OrganType != recipient.OrganType {
		return false
	}

	if donor.AgeGroup != recipient.AgeGroup {
		return false
	}

	return true
}
