package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jeevan/internal/store"
	"jeevan/internal/utils"
	"jeevan/pkg/types"
)

func monthsAgo(n int) time.Time {
	return time.Now().Add(-time.Duration(n) * 30 * 24 * time.Hour)
}

var fakeDonors = []*types.DonorProfile{
	{
		ID:         "d1111111-aaaa-4aaa-8aaa-111111111111",
		UserID:     "11111111-1111-1111-1111-111111111111",
		OrganType:  "kidney",
		BloodGroup: "O-",
		Age:        36,
		AgeGroup:   types.AgeGroupAdult,
		City:       "Pune",
		State:      "Maharashtra",
		Status:     types.ProfileStatusVerified,
		CreatedAt:  monthsAgo(8),
	},
	{
		ID:         "d2222222-aaaa-4aaa-8aaa-222222222222",
		UserID:     "22222222-2222-2222-2222-222222222222",
		OrganType:  "liver",
		BloodGroup: "B+",
		Age:        44,
		AgeGroup:   types.AgeGroupAdult,
		City:       "Bangalore",
		State:      "Karnataka",
		Status:     types.ProfileStatusVerified,
		CreatedAt:  monthsAgo(5),
	},
	{
		ID:         "d3333333-aaaa-4aaa-8aaa-333333333333",
		UserID:     "33333333-3333-3333-3333-333333333333",
		OrganType:  "kidney",
		BloodGroup: "A+",
		Age:        29,
		AgeGroup:   types.AgeGroupAdult,
		City:       "Mumbai",
		State:      "Maharashtra",
		Status:     types.ProfileStatusPending,
		CreatedAt:  monthsAgo(2),
	},
}

var fakeRecipients = []*types.RecipientProfile{
	{
		ID:               "r4444444-bbbb-4bbb-8bbb-444444444444",
		UserID:           "44444444-4444-4444-4444-444444444444",
		OrganType:        "kidney",
		BloodGroup:       "B+",
		Age:              35,
		AgeGroup:         types.AgeGroupAdult,
		City:             "Pune",
		State:            "Maharashtra",
		UrgencyLevel:     types.UrgencyHigh,
		MedicalCondition: utils.StringPtr("Chronic kidney disease, stage 5"),
		Status:           types.ProfileStatusVerified,
		CreatedAt:        monthsAgo(7),
	},
	{
		ID:               "r5555555-bbbb-4bbb-8bbb-555555555555",
		UserID:           "55555555-5555-5555-5555-555555555555",
		OrganType:        "liver",
		BloodGroup:       "AB+",
		Age:              51,
		AgeGroup:         types.AgeGroupAdult,
		City:             "Chennai",
		State:            "Tamil Nadu",
		UrgencyLevel:     types.UrgencyCritical,
		MedicalCondition: utils.StringPtr("Decompensated cirrhosis"),
		Status:           types.ProfileStatusVerified,
		CreatedAt:        monthsAgo(14),
	},
	{
		ID:               "r6666666-bbbb-4bbb-8bbb-666666666666",
		UserID:           "66666666-6666-6666-6666-666666666666",
		OrganType:        "kidney",
		BloodGroup:       "A+",
		Age:              12,
		AgeGroup:         types.AgeGroupPediatric,
		City:             "Hyderabad",
		State:            "Telangana",
		UrgencyLevel:     types.UrgencyMedium,
		MedicalCondition: utils.StringPtr("Congenital nephrotic syndrome"),
		Status:           types.ProfileStatusPending,
		CreatedAt:        monthsAgo(3),
	},
}

func SeedFakeDonors(ctx context.Context, donorRepo *store.DonorRepository) error {
	seeded := 0
	for _, donor := range fakeDonors {
		_, err := donorRepo.Donor(ctx, donor.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, types.ErrDonorNotFound) {
			return fmt.Errorf("failed to fetch fake donor %s: %w", donor.ID, err)
		}

		if err := donorRepo.CreateDonor(ctx, donor); err != nil {
			return fmt.Errorf("failed to create fake donor %s: %w", donor.ID, err)
		}
		seeded++
	}

	if seeded > 0 {
		fmt.Printf("seeded %d fake donors\n", seeded)
	}

	return nil
}

func SeedFakeRecipients(ctx context.Context, recipientRepo *store.RecipientRepository) error {
	seeded := 0
	for _, recipient := range fakeRecipients {
		_, err := recipientRepo.Recipient(ctx, recipient.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, types.ErrRecipientNotFound) {
			return fmt.Errorf("failed to fetch fake recipient %s: %w", recipient.ID, err)
		}

		if err := recipientRepo.CreateRecipient(ctx, recipient); err != nil {
			return fmt.Errorf("failed to create fake recipient %s: %w", recipient.ID, err)
		}
		seeded++
	}

	if seeded > 0 {
		fmt.Printf("seeded %d fake recipients\n", seeded)
	}

	return nil
}
