package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/admissions/internal/common"
	"github.com/dmitrijs2005/admissions/internal/cryptox"
	"github.com/dmitrijs2005/admissions/internal/dbx"
	"github.com/dmitrijs2005/admissions/internal/logging"
	"github.com/dmitrijs2005/admissions/internal/server/models"
	"github.com/dmitrijs2005/admissions/internal/server/repositories/applications"
	"github.com/dmitrijs2005/admissions/internal/server/repositories/users"
	"github.com/google/uuid"
)

// --- helpers ---

var cheapParams = cryptox.Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func expectCommit(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

func expectRollback(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectRollback()
}

func newTestUserService(db *sql.DB, rm *fakeRepoManager) *UserService {
	s := NewUserService(db, rm, logging.Nop{})
	s.hashPassword = func(pw string) (string, error) {
		return cryptox.HashPasswordWithParams(pw, cheapParams)
	}
	return s
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// recordingLogger keeps debug and warn messages for assertions.
type recordingLogger struct {
	logging.Nop
	mu       sync.Mutex
	warns    []string
	debugs   []string
	debugArg [][]any
}

func (l *recordingLogger) Debug(_ context.Context, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debugs = append(l.debugs, msg)
	l.debugArg = append(l.debugArg, args)
}

func (l *recordingLogger) Warn(_ context.Context, msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) With(...any) logging.Logger { return l }

// --- in-memory repositories ---

type fakeUsersRepo struct {
	byID map[string]*models.User
	err  error // returned by every call when set

	creates int
	updates int

	summaries []models.UserSummary
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, common.ErrorDuplicateEmail
		}
	}
	c := *u
	c.ID = uuid.NewString()
	f.byID[c.ID] = &c
	f.creates++
	return &c, nil
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) UpdatePasswordHash(_ context.Context, id string, hash string) error {
	if f.err != nil {
		return f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	f.updates++
	return nil
}

func (f *fakeUsersRepo) ListNonAdminWithApplications(context.Context) ([]models.UserSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.summaries, nil
}

type fakeApplicationsRepo struct {
	byID map[string]*models.Application
	err  error

	creates int
	updates int
	deletes int
}

func newFakeApplicationsRepo() *fakeApplicationsRepo {
	return &fakeApplicationsRepo{byID: map[string]*models.Application{}}
}

func (f *fakeApplicationsRepo) mutations() int { return f.creates + f.updates + f.deletes }

func (f *fakeApplicationsRepo) Create(_ context.Context, app *models.Application) (*models.Application, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.byID {
		if a.UserID == app.UserID {
			return nil, fmt.Errorf("db error: duplicate application for %s", app.UserID)
		}
	}
	app.ID = uuid.NewString()
	c := *app
	f.byID[c.ID] = &c
	f.creates++
	return app, nil
}

func (f *fakeApplicationsRepo) GetByID(_ context.Context, id string) (*models.Application, error) {
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *a
	return &c, nil
}

func (f *fakeApplicationsRepo) GetByUserID(_ context.Context, userID string) (*models.Application, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.byID {
		if a.UserID == userID {
			c := *a
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeApplicationsRepo) Update(_ context.Context, app *models.Application) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[app.ID]; !ok {
		return common.ErrorNotFound
	}
	c := *app
	f.byID[c.ID] = &c
	f.updates++
	return nil
}

func (f *fakeApplicationsRepo) Delete(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	f.deletes++
	return nil
}

func (f *fakeApplicationsRepo) ListSummaries(context.Context) ([]models.ApplicationSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.ApplicationSummary, 0, len(f.byID))
	for _, a := range f.byID {
		out = append(out, models.ApplicationSummary{
			ID: a.ID, UserID: a.UserID, Email: "Unknown",
			FirstName: a.FirstName, LastName: a.LastName,
			CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	a *fakeApplicationsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{u: newFakeUsersRepo(), a: newFakeApplicationsRepo()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error  { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository               { return m.u }
func (m *fakeRepoManager) Applications(dbx.DBTX) applications.Repository { return m.a }
