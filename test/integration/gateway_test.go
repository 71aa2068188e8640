package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/numberwatch/gateway/internal/auth/service"
	"github.com/numberwatch/gateway/internal/backend"
	"github.com/numberwatch/gateway/internal/cache"
	"github.com/numberwatch/gateway/internal/config"
	"github.com/numberwatch/gateway/internal/middleware"
	"github.com/numberwatch/gateway/internal/models"
	"github.com/numberwatch/gateway/internal/repositories"
	"github.com/numberwatch/gateway/internal/routes"
	"github.com/numberwatch/gateway/internal/services"
	"github.com/numberwatch/gateway/internal/session"
	"github.com/numberwatch/gateway/test/fakebackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	testDB      *sql.DB
	testBackend *fakebackend.Server
	testGateway *httptest.Server
	testClient  *session.Client
	testLogger  *zap.Logger
)

// setupTestRouter creates a gateway router in front of the fake backend
func setupTestRouter(cfg *config.Config, db *sql.DB, logger *zap.Logger) chi.Router {
	var audit services.AuditRepository
	if db != nil {
		audit = repositories.NewAuditRepository(db, logger)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	routes.Register(r, routes.Dependencies{
		Backend:          backend.NewClient(testBackend.URL, 5*time.Second, logger),
		Inspector:        service.NewTokenInspector(0),
		Cache:            cache.NewMemoryStore(time.Minute),
		CacheTTL:         time.Minute,
		Audit:            audit,
		ContactPerMinute: cfg.RateLimit.ContactPerMinute,
		Logger:           logger,
	})
	return r
}

// TestMain sets up and tears down the test environment
func TestMain(m *testing.M) {
	// Initialize logger
	var err error
	testLogger, err = zap.NewDevelopment()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	cfg, err := config.LoadTestConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load test config: %v", err))
	}

	// The audit log is only exercised when a test database is configured
	if cfg.Database.Host != "" {
		testDB, err = sql.Open("mysql", cfg.DSN())
		if err != nil {
			panic(fmt.Sprintf("Failed to connect to test database: %v", err))
		}
		if err = testDB.Ping(); err != nil {
			panic(fmt.Sprintf("Failed to ping test database: %v", err))
		}
		setupTestSchemaForMain(testDB)
	}

	testBackend = fakebackend.New()
	testGateway = httptest.NewServer(setupTestRouter(cfg, testDB, testLogger))
	testClient = session.NewClient(testGateway.URL, 5*time.Second, testLogger)

	// Run tests
	code := m.Run()

	// Cleanup
	testGateway.Close()
	testBackend.Close()
	if testDB != nil {
		testDB.Close()
	}
	os.Exit(code)
}

// setupTestSchemaForMain creates the audit table (for TestMain)
func setupTestSchemaForMain(db *sql.DB) {
	query := `
		CREATE TABLE IF NOT EXISTS audit_entries (
			id INT AUTO_INCREMENT PRIMARY KEY,
			actor_id VARCHAR(64) NOT NULL,
			action VARCHAR(32) NOT NULL,
			target_type VARCHAR(16) NOT NULL,
			target_id VARCHAR(64) NOT NULL,
			detail VARCHAR(255) NOT NULL DEFAULT '',
			request_id VARCHAR(64) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_audit_entries_action (action)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
	`

	db.Exec(query)
}

// newUser stores an account with a unique email and returns its ID and a valid token
func newUser(t *testing.T, name, role string) (string, string) {
	t.Helper()
	email := fmt.Sprintf("%s-%s@example.com", strings.ToLower(name), uuid.NewString()[:8])
	id := testBackend.AddUser(name, email, "secret123", role)
	return id, testBackend.Token(id)
}

func doRequest(t *testing.T, method, path, token, body string) (*http.Response, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, testGateway.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func apiStatus(t *testing.T, err error) int {
	t.Helper()
	var apiErr *session.APIError
	require.ErrorAs(t, err, &apiErr)
	return apiErr.StatusCode
}

func TestIntegration_AuthenticatedRoutesRequireBearer(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth/verify"},
		{http.MethodPost, "/api/auth/change-password"},
		{http.MethodGet, "/api/submissions"},
		{http.MethodPost, "/api/submissions"},
		{http.MethodGet, "/api/submissions/any"},
		{http.MethodPatch, "/api/submissions/any"},
		{http.MethodDelete, "/api/submissions/any"},
		{http.MethodGet, "/api/search?phoneNumber=555"},
		{http.MethodPatch, "/api/users/any"},
		{http.MethodDelete, "/api/users/any"},
		{http.MethodGet, "/api/admin/submissions"},
		{http.MethodPatch, "/api/admin/submissions/any"},
		{http.MethodGet, "/api/admin/users"},
		{http.MethodPatch, "/api/admin/users/any"},
		{http.MethodDelete, "/api/admin/users/any"},
		{http.MethodGet, "/api/admin/audit"},
	}

	for _, route := range protected {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			resp, body := doRequest(t, route.method, route.path, "", `{}`)

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "Unauthorized", body["error"])
		})
	}
}

func TestIntegration_ExpiredToken(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	userID, _ := newUser(t, "Expired", "USER")
	before := testBackend.Requests("GET /auth/profile")

	resp, body := doRequest(t, http.MethodGet, "/api/submissions", testBackend.ExpiredToken(userID), "")

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid or expired token", body["error"])
	assert.Equal(t, before, testBackend.Requests("GET /auth/profile"))
}

func TestIntegration_LoginNormalizesRole(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	email := "admin-" + uuid.NewString()[:8] + "@example.com"
	testBackend.AddUser("Admin", email, "secret123", "ADMIN")

	resp, err := testClient.Login(context.Background(), email, "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "admin", resp.User.Role)

	_, err = testClient.Login(context.Background(), email, "wrong")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apiStatus(t, err))
}

func TestIntegration_SignupAndSession(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	ctx := context.Background()
	storage := session.NewFileTokenStorage(t.TempDir())
	manager := session.NewManager(testClient, session.NewStore(), storage, testLogger)
	email := "new-" + uuid.NewString()[:8] + "@example.com"

	current, err := manager.Signup(ctx, "Newcomer", email, "secret123")
	require.NoError(t, err)
	assert.Equal(t, "user", current.User.Role)
	assert.False(t, current.IsAdmin())

	// a fresh manager restores the persisted session
	restored := session.NewManager(testClient, session.NewStore(), storage, testLogger)
	require.NoError(t, restored.Restore(ctx))
	require.NotNil(t, restored.Store().Current())
	assert.Equal(t, current.Token, restored.Store().Token())
	assert.Equal(t, "Newcomer", restored.Store().Current().User.Name)

	// signing up twice with the same email relays the backend conflict
	_, err = testClient.Signup(ctx, "Again", email, "secret123")
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apiStatus(t, err))

	require.NoError(t, restored.Logout())
	_, err = storage.Load()
	assert.ErrorIs(t, err, session.ErrNoToken)
}

func TestIntegration_ChangePassword(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	_, token := newUser(t, "Changer", "USER")

	err := testClient.ChangePassword(context.Background(), token, "secret123", "short")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apiStatus(t, err))

	require.NoError(t, testClient.ChangePassword(context.Background(), token, "secret123", "longer-secret"))
}

func TestIntegration_SubmissionLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	ctx := context.Background()
	_, ownerToken := newUser(t, "Owner", "USER")
	_, otherToken := newUser(t, "Other", "USER")

	created, err := testClient.CreateSubmission(ctx, ownerToken, models.SubmissionRequest{
		PhoneNumber: "+15550100",
		Message:     "Claims to be my bank",
		Category:    "scam",
	})
	require.NoError(t, err)
	assert.Equal(t, "SCAM", created.Category)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "Owner", created.Name)

	stored, ok := testBackend.Report(created.ID)
	require.True(t, ok)
	assert.Equal(t, "SCAM", stored.Category)
	assert.Equal(t, "PENDING", stored.Status)

	t.Run("owner list is lower-case and filtered", func(t *testing.T) {
		list, err := testClient.Submissions(ctx, ownerToken)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, created.ID, list[0].ID)
		assert.Equal(t, "pending", list[0].Status)

		others, err := testClient.Submissions(ctx, otherToken)
		require.NoError(t, err)
		assert.Empty(t, others)
	})

	t.Run("non owner cannot read, update or delete", func(t *testing.T) {
		resp, body := doRequest(t, http.MethodGet, "/api/submissions/"+created.ID, otherToken, "")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "Unauthorized to modify this report", body["error"])

		_, err := testClient.UpdateSubmission(ctx, otherToken, created.ID, models.SubmissionRequest{Message: "hijacked"})
		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, apiStatus(t, err))

		err = testClient.DeleteSubmission(ctx, otherToken, created.ID)
		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, apiStatus(t, err))

		_, ok := testBackend.Report(created.ID)
		assert.True(t, ok)
	})

	t.Run("owner updates", func(t *testing.T) {
		updated, err := testClient.UpdateSubmission(ctx, ownerToken, created.ID, models.SubmissionRequest{Message: "Asked for my PIN", Category: "fraud"})
		require.NoError(t, err)
		assert.Equal(t, "Asked for my PIN", updated.Message)
		assert.Equal(t, "FRAUD", updated.Category)
		assert.Equal(t, "Owner", updated.Name)
	})

	t.Run("invalid category", func(t *testing.T) {
		_, err := testClient.UpdateSubmission(ctx, ownerToken, created.ID, models.SubmissionRequest{Category: "robocall"})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apiStatus(t, err))
	})

	t.Run("search", func(t *testing.T) {
		results, err := testClient.Search(ctx, otherToken, "+15550100")
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, "pending", results[0].Status)
	})

	t.Run("owner deletes", func(t *testing.T) {
		require.NoError(t, testClient.DeleteSubmission(ctx, ownerToken, created.ID))

		resp, body := doRequest(t, http.MethodGet, "/api/submissions/"+created.ID, ownerToken, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Report not found", body["error"])
	})
}

func TestIntegration_SearchValidatesBeforeAuth(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	resp, body := doRequest(t, http.MethodGet, "/api/search", "", "")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Phone number is required", body["error"])
}

func TestIntegration_Contact(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	tests := []struct {
		name           string
		message        string
		expectedStatus int
		expectedError  string
	}{
		{name: "9 characters", message: strings.Repeat("a", 9), expectedStatus: http.StatusBadRequest, expectedError: "Message must be at least 10 characters long"},
		{name: "10 characters", message: strings.Repeat("a", 10), expectedStatus: http.StatusOK},
		{name: "1000 characters", message: strings.Repeat("a", 1000), expectedStatus: http.StatusOK},
		{name: "1001 characters", message: strings.Repeat("a", 1001), expectedStatus: http.StatusBadRequest, expectedError: "Message must be less than 1000 characters"},
		{name: "multi-byte characters count once", message: strings.Repeat("я", 10), expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := json.Marshal(models.ContactMessage{
				Name:    "Visitor",
				Email:   "visitor@example.com",
				Subject: "Question",
				Message: tt.message,
			})
			require.NoError(t, err)

			resp, body := doRequest(t, http.MethodPost, "/api/contact", "", string(payload))

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, body["error"])
			} else {
				assert.Equal(t, true, body["success"])
			}
		})
	}
}

func TestIntegration_ContactRateLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	cfg := &config.Config{}
	cfg.RateLimit.ContactPerMinute = 2
	gateway := httptest.NewServer(setupTestRouter(cfg, nil, zap.NewNop()))
	defer gateway.Close()

	client := session.NewClient(gateway.URL, 5*time.Second, zap.NewNop())
	msg := models.ContactMessage{Name: "Visitor", Email: "visitor@example.com", Subject: "Question", Message: "Is this number safe?"}

	require.NoError(t, client.Contact(context.Background(), msg))
	require.NoError(t, client.Contact(context.Background(), msg))

	err := client.Contact(context.Background(), msg)
	require.Error(t, err)
	assert.Equal(t, http.StatusTooManyRequests, apiStatus(t, err))
}

func TestIntegration_AdminModeration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	ctx := context.Background()
	_, adminToken := newUser(t, "Moderator", "ADMIN")
	authorID, userToken := newUser(t, "Author", "USER")
	reportID := testBackend.AddReport(authorID, "+15550199", "Robocall about car warranty", "TELEMARKETING", "PENDING")

	t.Run("non admin is forbidden", func(t *testing.T) {
		_, err := testClient.AdminSubmissions(ctx, userToken)
		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, apiStatus(t, err))

		_, err = testClient.AdminUpdateStatus(ctx, userToken, reportID, "approved")
		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, apiStatus(t, err))

		stored, _ := testBackend.Report(reportID)
		assert.Equal(t, "PENDING", stored.Status)
	})

	t.Run("approve", func(t *testing.T) {
		report, err := testClient.AdminUpdateStatus(ctx, adminToken, reportID, "approved")
		require.NoError(t, err)
		assert.Equal(t, "APPROVED", report.Status)

		all, err := testClient.AdminSubmissions(ctx, adminToken)
		require.NoError(t, err)
		var found *models.Report
		for i := range all {
			if all[i].ID == reportID {
				found = &all[i]
			}
		}
		require.NotNil(t, found)
		assert.Equal(t, "APPROVED", found.Status)
		assert.NotEqual(t, string(models.StatusPending), found.Status)
	})

	t.Run("pending is not a moderation target", func(t *testing.T) {
		_, err := testClient.AdminUpdateStatus(ctx, adminToken, reportID, "pending")
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apiStatus(t, err))
	})

	t.Run("audit log", func(t *testing.T) {
		resp, body := doRequest(t, http.MethodGet, "/api/admin/audit?action=report.status", adminToken, "")
		if testDB == nil {
			assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
			assert.Equal(t, "Audit log is not configured", body["error"])
			return
		}
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Greater(t, body["total"], float64(0))
	})
}

func TestIntegration_AdminDeletesBlockedUser(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	ctx := context.Background()
	_, adminToken := newUser(t, "Chief", "ADMIN")
	targetID, targetToken := newUser(t, "Spammer", "USER")
	_, bystanderToken := newUser(t, "Bystander", "USER")

	blocked, err := testClient.AdminSetBlocked(ctx, adminToken, targetID, true)
	require.NoError(t, err)
	assert.True(t, blocked.Blocked)

	users, err := testClient.AdminUsers(ctx, adminToken)
	require.NoError(t, err)
	for _, user := range users {
		assert.Equal(t, strings.ToLower(user.Role), user.Role)
		if user.ID == targetID {
			assert.True(t, user.Blocked)
		}
	}

	err = testClient.AdminDeleteUser(ctx, bystanderToken, targetID)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apiStatus(t, err))
	assert.True(t, testBackend.HasUser(targetID))

	require.NoError(t, testClient.AdminDeleteUser(ctx, adminToken, targetID))
	assert.False(t, testBackend.HasUser(targetID))

	// the deleted user's token no longer resolves to a profile
	_, err = testClient.Verify(ctx, targetToken)
	require.Error(t, err)
	assert.True(t, session.IsUnauthorized(err))
}

func TestIntegration_Profile(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	userID, token := newUser(t, "Self", "USER")
	otherID, _ := newUser(t, "Stranger", "USER")

	resp, body := doRequest(t, http.MethodPatch, "/api/users/"+otherID, token, `{"name":"Renamed"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Unauthorized to modify this user", body["error"])

	resp, body = doRequest(t, http.MethodPatch, "/api/users/"+userID, token, `{"name":"Renamed"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Renamed", body["name"])

	resp, body = doRequest(t, http.MethodDelete, "/api/users/"+userID, token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "User deleted successfully", body["message"])
	assert.False(t, testBackend.HasUser(userID))
}

func TestIntegration_PublicDataIsCached(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	before := testBackend.Requests("GET /reports/public/stats")

	first, err := testClient.Stats(context.Background())
	require.NoError(t, err)
	second, err := testClient.Stats(context.Background())
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
	assert.LessOrEqual(t, testBackend.Requests("GET /reports/public/stats")-before, 1)

	resp, _ := doRequest(t, http.MethodGet, "/api/reports/recent", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIntegration_Health(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	resp, body := doRequest(t, http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
}
