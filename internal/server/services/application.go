package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/admissions/internal/common"
	"github.com/dmitrijs2005/admissions/internal/dbx"
	"github.com/dmitrijs2005/admissions/internal/logging"
	"github.com/dmitrijs2005/admissions/internal/server/auth"
	"github.com/dmitrijs2005/admissions/internal/server/models"
	"github.com/dmitrijs2005/admissions/internal/server/repositories/repomanager"
)

var timeNow = func() time.Time { return time.Now().UTC() }

// ApplicationService manages application records. Every method takes the
// caller's identity and authorizes before touching storage.
type ApplicationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewApplicationService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *ApplicationService {
	return &ApplicationService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "applications"),
	}
}

// SubmitOrUpdate writes the caller's own application: fields present in
// the request overwrite stored ones, the rest are kept. created reports
// whether the record did not exist before.
func (s *ApplicationService) SubmitOrUpdate(ctx context.Context, caller *auth.Identity, fields Fields) (created bool, err error) {
	if err := auth.Authorize(caller, true); err != nil {
		return false, err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Applications(tx)

		app, err := repo.GetByUserID(ctx, caller.UserID)
		switch {
		case err == nil:
			applyFields(ctx, s.logger, app, fields)
			app.UpdatedAt = timeNow()
			return repo.Update(ctx, app)

		case errors.Is(err, common.ErrorNotFound):
			now := timeNow()
			app = &models.Application{UserID: caller.UserID, CreatedAt: now, UpdatedAt: now}
			applyFields(ctx, s.logger, app, fields)
			if _, err := repo.Create(ctx, app); err != nil {
				return err
			}
			created = true
			return nil

		default:
			return err
		}
	})
	if err != nil {
		return false, internalError(ctx, s.logger, "submit application", err)
	}

	s.logger.Info(ctx, "application saved", "user_id", caller.UserID, "created", created)
	return created, nil
}

// AttachFile records storedPath in the caller's application under kind.
// Without an application nothing is recorded, no error is returned and
// recorded is false.
func (s *ApplicationService) AttachFile(ctx context.Context, caller *auth.Identity, kind, storedPath string) (recorded bool, err error) {
	if err := auth.Authorize(caller, true); err != nil {
		return false, err
	}
	if !models.IsFileKind(kind) {
		return false, common.ErrorValidation
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Applications(tx)

		app, err := repo.GetByUserID(ctx, caller.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				s.logger.Info(ctx, "file not attached, no application", "user_id", caller.UserID, "kind", kind)
				return nil
			}
			return err
		}

		*app.TextField(kind) = &storedPath
		app.UpdatedAt = timeNow()
		if err := repo.Update(ctx, app); err != nil {
			return err
		}
		recorded = true
		return nil
	})
	if err != nil {
		return false, internalError(ctx, s.logger, "attach file", err)
	}
	return recorded, nil
}

// GetByUser returns the application owned by targetUserID. Owners and
// administrators may read it.
func (s *ApplicationService) GetByUser(ctx context.Context, caller *auth.Identity, targetUserID string) (*models.Application, error) {
	if err := auth.Authorize(caller, auth.CanAccessApplication(caller, targetUserID)); err != nil {
		return nil, err
	}
	if err := validID(targetUserID); err != nil {
		return nil, err
	}

	app, err := s.repomanager.Applications(s.db).GetByUserID(ctx, targetUserID)
	if err != nil {
		return nil, internalError(ctx, s.logger, "get application", err)
	}
	return app, nil
}

func (s *ApplicationService) GetByID(ctx context.Context, caller *auth.Identity, applicationID string) (*models.Application, error) {
	if err := auth.AuthorizeAdmin(caller); err != nil {
		return nil, err
	}
	if err := validID(applicationID); err != nil {
		return nil, err
	}

	app, err := s.repomanager.Applications(s.db).GetByID(ctx, applicationID)
	if err != nil {
		return nil, internalError(ctx, s.logger, "get application", err)
	}
	return app, nil
}

// ListAll returns summaries of every application, newest first.
func (s *ApplicationService) ListAll(ctx context.Context, caller *auth.Identity) ([]models.ApplicationSummary, error) {
	if err := auth.AuthorizeAdmin(caller); err != nil {
		return nil, err
	}

	list, err := s.repomanager.Applications(s.db).ListSummaries(ctx)
	if err != nil {
		return nil, internalError(ctx, s.logger, "list applications", err)
	}
	return list, nil
}

// UpdateByID applies an administrator's edit. updated_at is refreshed even
// when no field changed.
func (s *ApplicationService) UpdateByID(ctx context.Context, caller *auth.Identity, applicationID string, fields Fields) error {
	if err := auth.AuthorizeAdmin(caller); err != nil {
		return err
	}
	if err := validID(applicationID); err != nil {
		return err
	}

	var applied int
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Applications(tx)

		app, err := repo.GetByID(ctx, applicationID)
		if err != nil {
			return err
		}

		applied = applyFields(ctx, s.logger, app, fields)
		app.UpdatedAt = timeNow()
		return repo.Update(ctx, app)
	})
	if err != nil {
		return internalError(ctx, s.logger, "update application", err)
	}

	s.logger.Info(ctx, "application updated",
		"application_id", applicationID, "fields", applied, "by", caller.UserID)
	return nil
}

func (s *ApplicationService) DeleteByID(ctx context.Context, caller *auth.Identity, applicationID string) error {
	if err := auth.AuthorizeAdmin(caller); err != nil {
		return err
	}
	if err := validID(applicationID); err != nil {
		return err
	}

	if err := s.repomanager.Applications(s.db).Delete(ctx, applicationID); err != nil {
		return internalError(ctx, s.logger, "delete application", err)
	}

	s.logger.Info(ctx, "application deleted", "application_id", applicationID, "by", caller.UserID)
	return nil
}
