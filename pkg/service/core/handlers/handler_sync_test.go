package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/unheard/unheard-backend/pkg/errs"
	"github.com/unheard/unheard-backend/pkg/service"
	"github.com/unheard/unheard-backend/pkg/service/core/handlers"
	"github.com/unheard/unheard-backend/pkg/service/core/routes"
)

const (
	testCronSecret = "cron-secret"
	testAdminToken = "admin-token"
)

type MockSyncService struct {
	service.SyncService
	mock.Mock
}

func (m *MockSyncService) PushStories(ctx context.Context, opts service.SyncOptions) (*service.SyncResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*service.SyncResult), args.Error(1)
}

func (m *MockSyncService) PullStories(ctx context.Context) (*service.SyncResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*service.SyncResult), args.Error(1)
}

func (m *MockSyncService) Bidirectional(ctx context.Context, opts service.SyncOptions) (*service.SyncResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*service.SyncResult), args.Error(1)
}

func (m *MockSyncService) ApplyRemoteChange(ctx context.Context, change service.RemoteChange) (*service.Story, error) {
	args := m.Called(ctx, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*service.Story), args.Error(1)
}

func (m *MockSyncService) GetStatus(ctx context.Context) (*service.SyncStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*service.SyncStatus), args.Error(1)
}

func newSyncServer(t *testing.T, syncService service.SyncService) *httptest.Server {
	t.Helper()

	log := zerolog.New(zerolog.NewConsoleWriter())
	endpoints := routes.NewSyncEndpoints(log, handlers.NewSyncHandler(syncService, log))

	router := chi.NewRouter()
	routes.NewSyncRoutes(
		endpoints,
		handlers.CronSecretMiddleware(testCronSecret, log),
		handlers.TokenAuthMiddleware(testAdminToken, log),
	)(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server
}

func TestCronSyncRejectsMissingSecret(t *testing.T) {
	syncService := &MockSyncService{}
	server := newSyncServer(t, syncService)

	resp, err := http.Post(server.URL+"/api/sync/cron", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	syncService.AssertNotCalled(t, "Bidirectional")
}

func TestCronSyncRejectsWrongSecret(t *testing.T) {
	syncService := &MockSyncService{}
	server := newSyncServer(t, syncService)

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/sync/cron", nil)
	require.NoError(t, err)
	req.Header.Set(handlers.CronSecretHeader, "guessed")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	syncService.AssertNotCalled(t, "Bidirectional")
}

func TestCronSyncRunsBidirectional(t *testing.T) {
	syncService := &MockSyncService{}
	syncService.On("Bidirectional", mock.Anything, service.SyncOptions{IncludeRejected: false}).
		Return(&service.SyncResult{Synced: 3, Errors: []string{}}, nil)

	server := newSyncServer(t, syncService)

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/sync/cron", nil)
	require.NoError(t, err)
	req.Header.Set(handlers.CronSecretHeader, testCronSecret)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body handlers.SyncResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, 3, body.Synced)
	assert.Equal(t, 0, body.Failed)
	assert.Empty(t, body.Errors)

	syncService.AssertExpectations(t)
}

func TestTriggerSyncRequiresBearerToken(t *testing.T) {
	syncService := &MockSyncService{}
	server := newSyncServer(t, syncService)

	resp, err := http.Post(server.URL+"/api/sync", "application/json", strings.NewReader(`{"direction":"push"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	syncService.AssertNotCalled(t, "PushStories")
}

func TestTriggerSync(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		setup      func(m *MockSyncService)
		statusCode int
		success    bool
	}{
		{
			name: "push",
			body: `{"direction":"push"}`,
			setup: func(m *MockSyncService) {
				m.On("PushStories", mock.Anything, service.SyncOptions{}).
					Return(&service.SyncResult{Synced: 2, Errors: []string{}}, nil)
			},
			statusCode: http.StatusOK,
			success:    true,
		},
		{
			name: "push including rejected",
			body: `{"direction":"push","includeRejected":true}`,
			setup: func(m *MockSyncService) {
				m.On("PushStories", mock.Anything, service.SyncOptions{IncludeRejected: true}).
					Return(&service.SyncResult{Synced: 4, Errors: []string{}}, nil)
			},
			statusCode: http.StatusOK,
			success:    true,
		},
		{
			name: "pull",
			body: `{"direction":"pull"}`,
			setup: func(m *MockSyncService) {
				m.On("PullStories", mock.Anything).
					Return(&service.SyncResult{Synced: 1, Errors: []string{}}, nil)
			},
			statusCode: http.StatusOK,
			success:    true,
		},
		{
			name: "partial failure is still a completed run",
			body: `{"direction":"bidirectional"}`,
			setup: func(m *MockSyncService) {
				m.On("Bidirectional", mock.Anything, service.SyncOptions{}).
					Return(&service.SyncResult{Synced: 5, Failed: 1, Errors: []string{"abc: boom"}}, nil)
			},
			statusCode: http.StatusOK,
			success:    false,
		},
		{
			name:       "unknown direction",
			body:       `{"direction":"sideways"}`,
			setup:      func(m *MockSyncService) {},
			statusCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			syncService := &MockSyncService{}
			tc.setup(syncService)

			server := newSyncServer(t, syncService)

			req, err := http.NewRequest(http.MethodPost, server.URL+"/api/sync", strings.NewReader(tc.body))
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+testAdminToken)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, tc.statusCode, resp.StatusCode)

			if tc.statusCode == http.StatusOK {
				var body handlers.SyncResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tc.success, body.Success)
			}

			syncService.AssertExpectations(t)
		})
	}
}

func TestGetSyncStatus(t *testing.T) {
	syncService := &MockSyncService{}
	syncService.On("GetStatus", mock.Anything).
		Return(&service.SyncStatus{NeonCount: 17, CMSCount: 15, PendingCount: 4, ApprovedCount: 13}, nil)

	server := newSyncServer(t, syncService)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/sync/status", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+testAdminToken)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status service.SyncStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, 17, status.NeonCount)
	assert.Equal(t, 15, status.CMSCount)
	assert.False(t, status.InSync)
}

func TestChangeNotification(t *testing.T) {
	storyID := "6cbd6029-3dd0-4fd6-9c3b-929d6fcf0bcb"

	syncService := &MockSyncService{}
	syncService.On("ApplyRemoteChange", mock.Anything, mock.MatchedBy(func(change service.RemoteChange) bool {
		return change.StoryID.String() == storyID && change.Status == "approved"
	})).Return(&service.Story{Status: service.StoryStatusApproved}, nil)

	server := newSyncServer(t, syncService)

	payload := `{"storyId":"` + storyID + `","status":"approved","moderatorId":"moderator-1"}`

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/sync/webhook", strings.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set(handlers.CronSecretHeader, testCronSecret)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	syncService.AssertExpectations(t)
}

func TestChangeNotificationRejectsUnknownStatus(t *testing.T) {
	syncService := &MockSyncService{}
	syncService.On("ApplyRemoteChange", mock.Anything, mock.Anything).
		Return(nil, errs.E(errs.Validation, errs.Str("unrecognized status: archived")))

	server := newSyncServer(t, syncService)

	payload := `{"storyId":"6cbd6029-3dd0-4fd6-9c3b-929d6fcf0bcb","status":"archived"}`

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/sync/webhook", strings.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set(handlers.CronSecretHeader, testCronSecret)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
