package seed

import (
	"context"
	"errors"
	"fmt"

	"jeevan/internal/store"
	"jeevan/internal/utils"
	"jeevan/pkg/types"
)

type fakeUserSeed struct {
	ID       string
	Email    string
	FullName string
	Role     types.UserRole
}

var fakeUsers = []fakeUserSeed{
	{ID: "11111111-1111-1111-1111-111111111111", Email: "arjun.mehta+seed1@example.com", FullName: "Arjun Mehta", Role: types.UserRoleDonor},
	{ID: "22222222-2222-2222-2222-222222222222", Email: "priya.sharma+seed2@example.com", FullName: "Priya Sharma", Role: types.UserRoleDonor},
	{ID: "33333333-3333-3333-3333-333333333333", Email: "rahul.nair+seed3@example.com", FullName: "Rahul Nair", Role: types.UserRoleDonor},
	{ID: "44444444-4444-4444-4444-444444444444", Email: "ananya.iyer+seed4@example.com", FullName: "Ananya Iyer", Role: types.UserRoleRecipient},
	{ID: "55555555-5555-5555-5555-555555555555", Email: "vikram.patil+seed5@example.com", FullName: "Vikram Patil", Role: types.UserRoleRecipient},
	{ID: "66666666-6666-6666-6666-666666666666", Email: "kavya.reddy+seed6@example.com", FullName: "Kavya Reddy", Role: types.UserRoleRecipient},
	{ID: "77777777-7777-7777-7777-777777777777", Email: "drsuresh.rao+seed7@example.com", FullName: "Dr. Suresh Rao", Role: types.UserRoleDoctor},
}

func SeedFakeUsers(ctx context.Context, userRepo *store.UserRepository) error {
	seeded := 0
	for _, fakeUser := range fakeUsers {
		_, err := userRepo.User(ctx, fakeUser.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, types.ErrUserNotFound) {
			return fmt.Errorf("failed to fetch fake user %s: %w", fakeUser.ID, err)
		}

		newUser := &types.User{
			ID:       fakeUser.ID,
			Email:    utils.StringPtr(fakeUser.Email),
			FullName: utils.StringPtr(fakeUser.FullName),
			Role:     fakeUser.Role,
		}

		if err := userRepo.CreateUser(ctx, newUser); err != nil {
			return fmt.Errorf("failed to create fake user %s: %w", fakeUser.ID, err)
		}
		seeded++
	}

	if seeded > 0 {
		fmt.Printf("seeded %d fake users\n", seeded)
	}

	return nil
}
