package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/account-service/internal/domain"
	"github.com/phrazzld/account-service/internal/service"
)

// Plan lists the accounts to create. Admin is promoted to ADMIN and has its
// email marked verified.
type Plan struct {
	Admin service.RegisterInput
	Users []service.RegisterInput
}

// Result counts what Seed did.
type Result struct {
	Created int
	Skipped int
}

// SampleUsers returns the fixed set of development user accounts.
func SampleUsers() []service.RegisterInput {
	return []service.RegisterInput{
		{Handle: "jsmith", Email: "john.smith@example.com", Secret: "changeme-john", FirstName: "John", LastName: "Smith"},
		{Handle: "asmith", Email: "anna.smith@example.com", Secret: "changeme-anna", FirstName: "Anna", LastName: "Smith"},
		{Handle: "bjones", Email: "bob.jones@example.com", Secret: "changeme-bob", FirstName: "Bob", LastName: "Jones",
			PhoneNumber: "+1 555 0100"},
	}
}

// Seed registers every account in plan that does not exist yet.
func Seed(ctx context.Context, svc service.AccountService, plan Plan, log *slog.Logger) (Result, error) {
	var result Result

	admin, created, err := ensure(ctx, svc, plan.Admin, log)
	if err != nil {
		return result, err
	}
	if created {
		result.Created++
		if _, err := svc.SetRole(ctx, admin.ID, domain.RoleAdmin); err != nil {
			return result, fmt.Errorf("promote %s: %w", admin.Handle, err)
		}
		if _, err := svc.VerifyEmail(ctx, admin.ID); err != nil {
			return result, fmt.Errorf("verify %s: %w", admin.Handle, err)
		}
	} else {
		result.Skipped++
	}

	for _, in := range plan.Users {
		_, created, err := ensure(ctx, svc, in, log)
		if err != nil {
			return result, err
		}
		if created {
			result.Created++
		} else {
			result.Skipped++
		}
	}
	return result, nil
}

// ensure registers in unless its handle or email is already taken.
func ensure(ctx context.Context, svc service.AccountService, in service.RegisterInput, log *slog.Logger) (*domain.Account, bool, error) {
	handleFree, err := svc.IsHandleAvailable(ctx, in.Handle)
	if err != nil {
		return nil, false, err
	}
	emailFree, err := svc.IsEmailAvailable(ctx, in.Email)
	if err != nil {
		return nil, false, err
	}
	if !handleFree || !emailFree {
		log.Info("account exists, skipping", slog.String("handle", in.Handle))
		return nil, false, nil
	}

	account, err := svc.Register(ctx, in)
	if err != nil {
		return nil, false, fmt.Errorf("register %s: %w", in.Handle, err)
	}
	log.Info("account seeded", slog.String("handle", account.Handle), slog.String("account_id", account.ID.String()))
	return account, true, nil
}
