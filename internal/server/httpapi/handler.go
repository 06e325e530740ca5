// Package httpapi is the JSON API consumed by the admissions frontend.
// Handlers decode requests, pass the session identity to the services
// explicitly and render results; no business rule lives here.
package httpapi

import (
	"context"

	"github.com/dmitrijs2005/admissions/internal/logging"
	"github.com/dmitrijs2005/admissions/internal/server/auth"
	"github.com/dmitrijs2005/admissions/internal/server/blobstore"
	"github.com/dmitrijs2005/admissions/internal/server/metrics"
	"github.com/dmitrijs2005/admissions/internal/server/models"
	"github.com/dmitrijs2005/admissions/internal/server/services"
	"github.com/dmitrijs2005/admissions/internal/server/session"
)

// Users is the account service used by the handlers.
type Users interface {
	Register(ctx context.Context, email, password string, isAdmin bool) (string, error)
	AdminCreateStudent(ctx context.Context, caller *auth.Identity, email string, profile services.StudentProfile) (*services.StudentProvision, error)
	Authenticate(ctx context.Context, email, password string) (*auth.Identity, error)
	ResetPassword(ctx context.Context, caller *auth.Identity, targetUserID string) (string, error)
	ListNonAdminUsers(ctx context.Context, caller *auth.Identity) ([]models.UserSummary, error)
	Profile(ctx context.Context, caller *auth.Identity) (*models.User, error)
}

// Applications is the application record service used by the handlers.
type Applications interface {
	SubmitOrUpdate(ctx context.Context, caller *auth.Identity, fields services.Fields) (bool, error)
	AttachFile(ctx context.Context, caller *auth.Identity, kind, storedPath string) (bool, error)
	GetByUser(ctx context.Context, caller *auth.Identity, targetUserID string) (*models.Application, error)
	GetByID(ctx context.Context, caller *auth.Identity, applicationID string) (*models.Application, error)
	ListAll(ctx context.Context, caller *auth.Identity) ([]models.ApplicationSummary, error)
	UpdateByID(ctx context.Context, caller *auth.Identity, applicationID string, fields services.Fields) error
	DeleteByID(ctx context.Context, caller *auth.Identity, applicationID string) error
}

type Handler struct {
	users          Users
	apps           Applications
	sessions       *session.Manager
	blobs          blobstore.Store
	metrics        *metrics.Metrics
	logger         logging.Logger
	maxUploadBytes int64
}

func NewHandler(users Users, apps Applications, sessions *session.Manager, blobs blobstore.Store,
	m *metrics.Metrics, logger logging.Logger, maxUploadBytes int64) *Handler {
	return &Handler{
		users:          users,
		apps:           apps,
		sessions:       sessions,
		blobs:          blobs,
		metrics:        m,
		logger:         logger.With("module", "httpapi"),
		maxUploadBytes: maxUploadBytes,
	}
}
