package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/admissions/internal/common"
	"github.com/dmitrijs2005/admissions/internal/logging"
	"github.com/dmitrijs2005/admissions/internal/server/auth"
	"github.com/dmitrijs2005/admissions/internal/server/metrics"
	"github.com/dmitrijs2005/admissions/internal/server/models"
	"github.com/dmitrijs2005/admissions/internal/server/services"
	"github.com/dmitrijs2005/admissions/internal/server/session"
	"github.com/stretchr/testify/require"
)

const (
	adminUID   = "00000000-0000-0000-0000-00000000000a"
	studentUID = "00000000-0000-0000-0000-00000000000b"
)

type account struct {
	id       string
	email    string
	password string
	isAdmin  bool
}

type fakeUsers struct {
	mu       sync.Mutex
	accounts []account
	err      error // forced error for every call
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{accounts: []account{
		{id: adminUID, email: "admin@example.com", password: "admin123", isAdmin: true},
		{id: studentUID, email: "student@example.com", password: "student123"},
	}}
}

func (f *fakeUsers) Register(_ context.Context, email, password string, isAdmin bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	for _, a := range f.accounts {
		if a.email == email {
			return "", common.ErrorDuplicateEmail
		}
	}
	id := fmt.Sprintf("00000000-0000-0000-0000-%012d", len(f.accounts)+100)
	f.accounts = append(f.accounts, account{id: id, email: email, password: password, isAdmin: isAdmin})
	return id, nil
}

func (f *fakeUsers) AdminCreateStudent(ctx context.Context, caller *auth.Identity, email string, _ services.StudentProfile) (*services.StudentProvision, error) {
	if err := auth.AuthorizeAdmin(caller); err != nil {
		return nil, err
	}
	id, err := f.Register(ctx, email, "Temp12345678", false)
	if err != nil {
		return nil, err
	}
	return &services.StudentProvision{UserID: id, ApplicationID: "app-" + id, TempPassword: "Temp12345678"}, nil
}

func (f *fakeUsers) Authenticate(_ context.Context, email, password string) (*auth.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.accounts {
		if a.email == email && a.password == password {
			return &auth.Identity{UserID: a.id, IsAdmin: a.isAdmin}, nil
		}
	}
	return nil, common.ErrorInvalidCredentials
}

func (f *fakeUsers) ResetPassword(_ context.Context, caller *auth.Identity, target string) (string, error) {
	if err := auth.AuthorizeAdmin(caller); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.accounts {
		if a.id == target {
			f.accounts[i].password = "NewTemp12345"
			return "NewTemp12345", nil
		}
	}
	return "", common.ErrorNotFound
}

func (f *fakeUsers) ListNonAdminUsers(_ context.Context, caller *auth.Identity) ([]models.UserSummary, error) {
	if err := auth.AuthorizeAdmin(caller); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.UserSummary{}
	for _, a := range f.accounts {
		if !a.isAdmin {
			out = append(out, models.UserSummary{ID: a.id, Email: a.email})
		}
	}
	return out, nil
}

func (f *fakeUsers) Profile(_ context.Context, caller *auth.Identity) (*models.User, error) {
	if err := auth.Authorize(caller, true); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.id == caller.UserID {
			return &models.User{ID: a.id, Email: a.email, IsAdmin: a.isAdmin}, nil
		}
	}
	return nil, common.ErrorNotFound
}

// fakeApps keeps one application per user, like the real service.
type fakeApps struct {
	mu     sync.Mutex
	byUser map[string]*models.Application
	fields []services.Fields
	err    error
}

func newFakeApps() *fakeApps {
	return &fakeApps{byUser: map[string]*models.Application{}}
}

func (f *fakeApps) SubmitOrUpdate(_ context.Context, caller *auth.Identity, fields services.Fields) (bool, error) {
	if err := auth.Authorize(caller, true); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	f.fields = append(f.fields, fields)
	app, ok := f.byUser[caller.UserID]
	if !ok {
		app = &models.Application{ID: "app-" + caller.UserID, UserID: caller.UserID}
		f.byUser[caller.UserID] = app
	}
	if v, ok := fields["first_name"].(string); ok {
		app.FirstName = &v
	}
	return !ok, nil
}

func (f *fakeApps) AttachFile(_ context.Context, caller *auth.Identity, kind, path string) (bool, error) {
	if err := auth.Authorize(caller, true); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.byUser[caller.UserID]
	if !ok {
		return false, nil
	}
	*app.TextField(kind) = &path
	return true, nil
}

func (f *fakeApps) GetByUser(_ context.Context, caller *auth.Identity, target string) (*models.Application, error) {
	if err := auth.Authorize(caller, auth.CanAccessApplication(caller, target)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.byUser[target]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return app, nil
}

func (f *fakeApps) find(id string) *models.Application {
	for _, a := range f.byUser {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (f *fakeApps) GetByID(_ context.Context, caller *auth.Identity, id string) (*models.Application, error) {
	if err := auth.AuthorizeAdmin(caller); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if a := f.find(id); a != nil {
		return a, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeApps) ListAll(_ context.Context, caller *auth.Identity) ([]models.ApplicationSummary, error) {
	if err := auth.AuthorizeAdmin(caller); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.ApplicationSummary{}
	for _, a := range f.byUser {
		out = append(out, models.ApplicationSummary{ID: a.ID, UserID: a.UserID, Email: "Unknown", FirstName: a.FirstName})
	}
	return out, nil
}

func (f *fakeApps) UpdateByID(_ context.Context, caller *auth.Identity, id string, fields services.Fields) error {
	if err := auth.AuthorizeAdmin(caller); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	a := f.find(id)
	if a == nil {
		return common.ErrorNotFound
	}
	f.fields = append(f.fields, fields)
	return nil
}

func (f *fakeApps) DeleteByID(_ context.Context, caller *auth.Identity, id string) error {
	if err := auth.AuthorizeAdmin(caller); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.find(id)
	if a == nil {
		return common.ErrorNotFound
	}
	delete(f.byUser, a.UserID)
	return nil
}

type memBlobs struct {
	mu    sync.Mutex
	data  map[string][]byte
	types map[string]string
	err   error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{data: map[string][]byte{}, types: map[string]string{}}
}

func (m *memBlobs) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	path := "uploads/" + key
	m.data[path] = b
	m.types[path] = contentType
	return path, nil
}

// warnLogger keeps warn messages with their key/value args.
type warnLogger struct {
	logging.Nop
	mu    sync.Mutex
	warns []string
	args  [][]any
}

func (l *warnLogger) Warn(_ context.Context, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
	l.args = append(l.args, args)
}

func (l *warnLogger) With(...any) logging.Logger { return l }

// --- test server plumbing ---

type testEnv struct {
	users    *fakeUsers
	apps     *fakeApps
	blobs    *memBlobs
	log      *warnLogger
	metrics  *metrics.Metrics
	sessions *session.Manager
	router   http.Handler
}

func newTestEnv(t *testing.T, opts RouterOptions) *testEnv {
	t.Helper()
	env := &testEnv{
		users:   newFakeUsers(),
		apps:    newFakeApps(),
		blobs:   newMemBlobs(),
		log:     &warnLogger{},
		metrics: metrics.New(),
		sessions: session.NewManager(session.Options{
			CookieName: common.SessionCookieName,
			Secret:     []byte("test-secret"),
			Validity:   time.Hour,
		}),
	}
	h := NewHandler(env.users, env.apps, env.sessions, env.blobs, env.metrics, env.log, 1<<20)
	env.router = NewRouter(h, opts)
	return env
}

// do sends a request through the router with the given cookies.
func (e *testEnv) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// login returns the session cookie for the given credentials.
func (e *testEnv) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/login", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == common.SessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}
