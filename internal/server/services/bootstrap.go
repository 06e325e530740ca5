package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/admissions/internal/common"
	"github.com/dmitrijs2005/admissions/internal/dbx"
	"github.com/dmitrijs2005/admissions/internal/server/config"
)

// Bootstrap creates the seed accounts that do not exist yet. Existing
// accounts are left untouched, so running it on every start is safe.
// Returns the number of accounts created.
func (s *UserService) Bootstrap(ctx context.Context, seeds []config.SeedUser) (int, error) {
	created := 0
	for _, seed := range seeds {
		ok, err := s.seed(ctx, seed)
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", seed.Email, err)
		}
		if ok {
			created++
			s.logger.Info(ctx, "seed account created", "email", seed.Email, "is_admin", seed.IsAdmin)
		}
	}
	return created, nil
}

func (s *UserService) seed(ctx context.Context, seed config.SeedUser) (bool, error) {
	_, err := s.repomanager.Users(s.db).GetByEmail(ctx, seed.Email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return false, err
	}

	hash, err := s.hashPassword(seed.Password)
	if err != nil {
		return false, err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.createUser(ctx, tx, seed.Email, hash, seed.IsAdmin)
		if err != nil {
			return err
		}
		if !seed.WithApplication || seed.IsAdmin {
			return nil
		}

		app := newApplication(u.ID, StudentProfile{
			FirstName:     seed.FirstName,
			LastName:      seed.LastName,
			ContactNumber: seed.ContactNumber,
		})
		app.Gender = nonEmpty(seed.Gender)
		_, err = s.repomanager.Applications(tx).Create(ctx, app)
		return err
	})
	if errors.Is(err, common.ErrorDuplicateEmail) {
		// another replica got there first
		return false, nil
	}
	return err == nil, err
}
