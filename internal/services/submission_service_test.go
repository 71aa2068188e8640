package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/numberwatch/gateway/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockAuthorizer is a mock implementation of ReportAuthorizer
type mockAuthorizer struct {
	user   *models.User
	report *models.Report
	err    error
	calls  int
}

func (m *mockAuthorizer) Authorize(ctx context.Context, token, reportID string) (*models.User, *models.Report, error) {
	m.calls++
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.user, m.report, nil
}

func newTestSubmissionService(mock *mockBackend, auth *mockAuthorizer) *submissionService {
	return NewSubmissionService(mock, auth, zap.NewNop())
}

func TestSubmissionService_List(t *testing.T) {
	t.Run("filters by caller and lower-cases status", func(t *testing.T) {
		mock := &mockBackend{
			user: &models.User{ID: "u1"},
			reports: []models.Report{
				{ID: "r1", UserID: "u1", Status: "PENDING", Category: "SCAM", User: &models.ReportUser{Name: "Alice"}},
				{ID: "r2", UserID: "u2", Status: "APPROVED"},
				{ID: "r3", UserID: "u1", Status: "REJECTED"},
			},
		}
		svc := newTestSubmissionService(mock, &mockAuthorizer{})

		result, err := svc.List(context.Background(), "tok")

		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, "r1", result[0].ID)
		assert.Equal(t, "pending", result[0].Status)
		assert.Equal(t, "Alice", result[0].Name)
		assert.Equal(t, "r3", result[1].ID)
		assert.Equal(t, "rejected", result[1].Status)
		assert.Equal(t, models.UnknownAuthor, result[1].Name)
	})

	t.Run("no reports", func(t *testing.T) {
		svc := newTestSubmissionService(&mockBackend{user: &models.User{ID: "u1"}}, &mockAuthorizer{})

		result, err := svc.List(context.Background(), "tok")

		require.NoError(t, err)
		assert.NotNil(t, result)
		assert.Empty(t, result)
	})

	t.Run("profile failure", func(t *testing.T) {
		mock := &mockBackend{profileErr: apiError(http.StatusUnauthorized, "jwt malformed")}
		svc := newTestSubmissionService(mock, &mockAuthorizer{})

		_, err := svc.List(context.Background(), "tok")

		assertStatusError(t, err, http.StatusUnauthorized, "Failed to get user profile")
		assert.Equal(t, 0, mock.countCalls("ListReports"))
	})

	t.Run("list failure", func(t *testing.T) {
		mock := &mockBackend{user: &models.User{ID: "u1"}, listErr: apiError(http.StatusInternalServerError, "")}
		svc := newTestSubmissionService(mock, &mockAuthorizer{})

		_, err := svc.List(context.Background(), "tok")

		assertStatusError(t, err, http.StatusInternalServerError, "Failed to fetch reports")
	})
}

func TestSubmissionService_Create(t *testing.T) {
	tests := []struct {
		name            string
		req             *models.SubmissionRequest
		mock            *mockBackend
		expectedStatus  int
		expectedMessage string
	}{
		{
			name: "success upper-cases category",
			req:  &models.SubmissionRequest{PhoneNumber: "+15550100", Message: "Fake IRS call", Category: "scam"},
			mock: &mockBackend{user: &models.User{ID: "u1"}},
		},
		{
			name:            "missing message",
			req:             &models.SubmissionRequest{PhoneNumber: "+15550100", Category: "scam"},
			mock:            &mockBackend{},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Phone number, message and category are required",
		},
		{
			name:            "unknown category",
			req:             &models.SubmissionRequest{PhoneNumber: "+15550100", Message: "m", Category: "robocall"},
			mock:            &mockBackend{},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid category",
		},
		{
			name:            "backend validation message",
			req:             &models.SubmissionRequest{PhoneNumber: "x", Message: "m", Category: "spam"},
			mock:            &mockBackend{user: &models.User{ID: "u1"}, createErr: apiError(http.StatusBadRequest, "phoneNumber must be a phone number")},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "phoneNumber must be a phone number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestSubmissionService(tt.mock, &mockAuthorizer{})

			resp, err := svc.Create(context.Background(), "tok", tt.req)

			if tt.expectedStatus != 0 {
				assertStatusError(t, err, tt.expectedStatus, tt.expectedMessage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.CategoryScam, tt.mock.createReq.Category)
			assert.Equal(t, "u1", tt.mock.createReq.UserID)
			assert.Equal(t, "SCAM", resp.Category)
			assert.Equal(t, "pending", resp.Status)
		})
	}
}

func TestSubmissionService_Get(t *testing.T) {
	t.Run("owner", func(t *testing.T) {
		auth := &mockAuthorizer{
			user:   &models.User{ID: "u1"},
			report: &models.Report{ID: "r1", UserID: "u1", Status: "APPROVED"},
		}
		svc := newTestSubmissionService(&mockBackend{}, auth)

		resp, err := svc.Get(context.Background(), "tok", "r1")

		require.NoError(t, err)
		assert.Equal(t, "r1", resp.ID)
		assert.Equal(t, "approved", resp.Status)
	})

	t.Run("not owner", func(t *testing.T) {
		svc := newTestSubmissionService(&mockBackend{}, &mockAuthorizer{err: forbidden("Unauthorized to modify this report")})

		_, err := svc.Get(context.Background(), "tok", "r1")

		assertStatusError(t, err, http.StatusForbidden, "Unauthorized to modify this report")
	})
}

func TestSubmissionService_Update(t *testing.T) {
	owned := &mockAuthorizer{
		user:   &models.User{ID: "u1"},
		report: &models.Report{ID: "r1", UserID: "u1", User: &models.ReportUser{Name: "Alice"}},
	}

	t.Run("success keeps author", func(t *testing.T) {
		mock := &mockBackend{}
		svc := newTestSubmissionService(mock, owned)

		resp, err := svc.Update(context.Background(), "tok", "r1", &models.SubmissionRequest{PhoneNumber: "+15550101", Category: "fraud"})

		require.NoError(t, err)
		assert.Equal(t, models.CategoryFraud, mock.updateReq.Category)
		assert.Equal(t, "+15550101", mock.updateReq.PhoneNumber)
		assert.Equal(t, "Alice", resp.Name)
		assert.Equal(t, "pending", resp.Status)
	})

	t.Run("not owner does not update", func(t *testing.T) {
		mock := &mockBackend{}
		svc := newTestSubmissionService(mock, &mockAuthorizer{err: forbidden("Unauthorized to modify this report")})

		_, err := svc.Update(context.Background(), "tok", "r1", &models.SubmissionRequest{Message: "changed"})

		assertStatusError(t, err, http.StatusForbidden, "Unauthorized to modify this report")
		assert.Equal(t, 0, mock.countCalls("UpdateReport"))
	})

	t.Run("invalid category is rejected before lookup", func(t *testing.T) {
		auth := &mockAuthorizer{}
		svc := newTestSubmissionService(&mockBackend{}, auth)

		_, err := svc.Update(context.Background(), "tok", "r1", &models.SubmissionRequest{Category: "bogus"})

		assertStatusError(t, err, http.StatusBadRequest, "Invalid category")
		assert.Equal(t, 0, auth.calls)
	})

	t.Run("empty body", func(t *testing.T) {
		svc := newTestSubmissionService(&mockBackend{}, owned)

		_, err := svc.Update(context.Background(), "tok", "r1", &models.SubmissionRequest{})

		assertStatusError(t, err, http.StatusBadRequest, "At least one field is required")
	})

	t.Run("backend failure", func(t *testing.T) {
		svc := newTestSubmissionService(&mockBackend{updateErr: apiError(http.StatusInternalServerError, "")}, owned)

		_, err := svc.Update(context.Background(), "tok", "r1", &models.SubmissionRequest{Message: "changed"})

		assertStatusError(t, err, http.StatusInternalServerError, "Failed to update report")
	})
}

func TestSubmissionService_Delete(t *testing.T) {
	t.Run("owner", func(t *testing.T) {
		mock := &mockBackend{}
		svc := newTestSubmissionService(mock, &mockAuthorizer{user: &models.User{ID: "u1"}, report: &models.Report{ID: "r1", UserID: "u1"}})

		resp, err := svc.Delete(context.Background(), "tok", "r1")

		require.NoError(t, err)
		assert.Equal(t, "Report deleted successfully", resp.Message)
		assert.Equal(t, 1, mock.countCalls("DeleteReport"))
	})

	t.Run("not found", func(t *testing.T) {
		mock := &mockBackend{}
		svc := newTestSubmissionService(mock, &mockAuthorizer{err: notFound("Report not found", nil)})

		_, err := svc.Delete(context.Background(), "tok", "r1")

		assertStatusError(t, err, http.StatusNotFound, "Report not found")
		assert.Equal(t, 0, mock.countCalls("DeleteReport"))
	})

	t.Run("backend failure", func(t *testing.T) {
		mock := &mockBackend{deleteErr: apiError(http.StatusConflict, "Report is locked")}
		svc := newTestSubmissionService(mock, &mockAuthorizer{user: &models.User{ID: "u1"}, report: &models.Report{ID: "r1", UserID: "u1"}})

		_, err := svc.Delete(context.Background(), "tok", "r1")

		assertStatusError(t, err, http.StatusConflict, "Report is locked")
	})
}
