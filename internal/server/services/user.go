// Package services contains server-side business logic. This file implements
// UserService, which handles registration, credential checks and the
// administrator's account operations.
package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/dmitrijs2005/admissions/internal/common"
	"github.com/dmitrijs2005/admissions/internal/cryptox"
	"github.com/dmitrijs2005/admissions/internal/dbx"
	"github.com/dmitrijs2005/admissions/internal/logging"
	"github.com/dmitrijs2005/admissions/internal/server/auth"
	"github.com/dmitrijs2005/admissions/internal/server/models"
	"github.com/dmitrijs2005/admissions/internal/server/repositories/repomanager"
)

// StudentProfile carries the fields an administrator may fill in when
// provisioning a student. Empty values are stored as NULL.
type StudentProfile struct {
	FirstName     string
	LastName      string
	ContactNumber string
}

// StudentProvision is the result of AdminCreateStudent. TempPassword is the
// only copy of the plaintext password.
type StudentProvision struct {
	UserID        string
	ApplicationID string
	TempPassword  string
}

// UserService provides account operations:
//   - Register / Authenticate for the public endpoints
//   - AdminCreateStudent, ResetPassword, ListNonAdminUsers for administrators
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger

	hashPassword   func(string) (string, error)
	verifyPassword func(password, encoded string) (bool, error)
	tempPassword   func() (string, error)

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService constructs a UserService that hashes with argon2id.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *UserService {
	return &UserService{
		db:             db,
		repomanager:    m,
		logger:         logger.With("module", "users"),
		hashPassword:   cryptox.HashPassword,
		verifyPassword: cryptox.VerifyPassword,
		tempPassword: func() (string, error) {
			return common.MakeTempPassword(common.TempPasswordLength)
		},
	}
}

// Register creates an account. The email must be unused.
func (s *UserService) Register(ctx context.Context, email, password string, isAdmin bool) (string, error) {
	hash, err := s.hashPassword(password)
	if err != nil {
		return "", internalError(ctx, s.logger, "hash password", err)
	}

	var id string
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.createUser(ctx, tx, email, hash, isAdmin)
		if err != nil {
			return err
		}
		id = u.ID
		return nil
	})
	if err != nil {
		return "", internalError(ctx, s.logger, "register", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", id, "is_admin", isAdmin)
	return id, nil
}

// createUser checks the email before inserting. The unique index still
// catches a concurrent insert, which the repository reports the same way.
func (s *UserService) createUser(ctx context.Context, tx dbx.DBTX, email, hash string, isAdmin bool) (*models.User, error) {
	repo := s.repomanager.Users(tx)

	_, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrorDuplicateEmail
	case !errors.Is(err, common.ErrorNotFound):
		return nil, err
	}

	return repo.Create(ctx, &models.User{Email: email, PasswordHash: hash, IsAdmin: isAdmin})
}

// AdminCreateStudent provisions a student account with a generated password
// and an application seeded from profile, in one transaction.
func (s *UserService) AdminCreateStudent(ctx context.Context, caller *auth.Identity, email string, profile StudentProfile) (*StudentProvision, error) {
	if err := auth.AuthorizeAdmin(caller); err != nil {
		return nil, err
	}

	password, err := s.tempPassword()
	if err != nil {
		return nil, internalError(ctx, s.logger, "generate password", err)
	}
	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, internalError(ctx, s.logger, "hash password", err)
	}

	result := &StudentProvision{TempPassword: password}
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.createUser(ctx, tx, email, hash, false)
		if err != nil {
			return err
		}

		app, err := s.repomanager.Applications(tx).Create(ctx, newApplication(u.ID, profile))
		if err != nil {
			return err
		}

		result.UserID = u.ID
		result.ApplicationID = app.ID
		return nil
	})
	if err != nil {
		return nil, internalError(ctx, s.logger, "create student", err)
	}

	s.logger.Info(ctx, "student provisioned",
		"user_id", result.UserID, "application_id", result.ApplicationID, "by", caller.UserID)
	return result, nil
}

// Authenticate checks credentials. Unknown email and wrong password both
// yield common.ErrorInvalidCredentials after one hash derivation each.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*auth.Identity, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = s.verifyPassword(password, s.dummy())
			return nil, common.ErrorInvalidCredentials
		}
		return nil, internalError(ctx, s.logger, "authenticate", err)
	}

	ok, err := s.verifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, internalError(ctx, s.logger, "verify password", err)
	}
	if !ok {
		return nil, common.ErrorInvalidCredentials
	}

	return &auth.Identity{UserID: user.ID, IsAdmin: user.IsAdmin}, nil
}

// dummy returns a hash of a random password, computed once, for timing
// parity on unknown emails.
func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		pw, err := common.MakeRandHexString(16)
		if err != nil {
			pw = "dummy-password"
		}
		s.dummyHash, err = s.hashPassword(pw)
		if err != nil {
			s.logger.Error(context.Background(), "dummy hash", "error", err)
		}
	})
	return s.dummyHash
}

// ResetPassword replaces the target user's password with a generated one
// and returns it. Only administrators may call it.
func (s *UserService) ResetPassword(ctx context.Context, caller *auth.Identity, targetUserID string) (string, error) {
	if err := auth.AuthorizeAdmin(caller); err != nil {
		return "", err
	}
	if err := validID(targetUserID); err != nil {
		return "", err
	}

	password, err := s.tempPassword()
	if err != nil {
		return "", internalError(ctx, s.logger, "generate password", err)
	}
	hash, err := s.hashPassword(password)
	if err != nil {
		return "", internalError(ctx, s.logger, "hash password", err)
	}

	if err := s.repomanager.Users(s.db).UpdatePasswordHash(ctx, targetUserID, hash); err != nil {
		return "", internalError(ctx, s.logger, "reset password", err)
	}

	s.logger.Info(ctx, "password reset", "user_id", targetUserID, "by", caller.UserID)
	return password, nil
}

// Profile returns the caller's own account.
func (s *UserService) Profile(ctx context.Context, caller *auth.Identity) (*models.User, error) {
	if err := auth.Authorize(caller, true); err != nil {
		return nil, err
	}
	if err := validID(caller.UserID); err != nil {
		return nil, err
	}

	u, err := s.repomanager.Users(s.db).GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, internalError(ctx, s.logger, "profile", err)
	}
	return u, nil
}

// ListNonAdminUsers returns every student with a summary of their
// application, if any.
func (s *UserService) ListNonAdminUsers(ctx context.Context, caller *auth.Identity) ([]models.UserSummary, error) {
	if err := auth.AuthorizeAdmin(caller); err != nil {
		return nil, err
	}

	list, err := s.repomanager.Users(s.db).ListNonAdminWithApplications(ctx)
	if err != nil {
		return nil, internalError(ctx, s.logger, "list users", err)
	}
	return list, nil
}

func newApplication(userID string, p StudentProfile) *models.Application {
	now := timeNow()
	return &models.Application{
		UserID:        userID,
		FirstName:     nonEmpty(p.FirstName),
		LastName:      nonEmpty(p.LastName),
		ContactNumber: nonEmpty(p.ContactNumber),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
