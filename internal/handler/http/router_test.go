package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/history"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type stubScanService struct {
	tapErr     error
	lastTap    attendance.TapRequest
	lastFilter attendance.RecordFilter
	myCalled   bool
}

func (s *stubScanService) Tap(_ context.Context, req attendance.TapRequest) (attendance.TapResponse, error) {
	s.lastTap = req
	if s.tapErr != nil {
		return attendance.TapResponse{}, s.tapErr
	}
	return attendance.TapResponse{
		UserName: "Maria Santos",
		Action:   req.Action,
		Message:  "Maria Santos timed in for morning session",
		Outcome:  attendance.OutcomeResponse{Status: "late", TotalPenalty: "1.00", Notes: []string{}},
	}, nil
}

func (s *stubScanService) GetRecord(_ context.Context, id string) (attendance.RecordResponse, error) {
	if id != "rec-1" {
		return attendance.RecordResponse{}, attendance.ErrRecordNotFound
	}
	return attendance.RecordResponse{ID: id, PenaltyAmount: "2.00"}, nil
}

func (s *stubScanService) ListRecords(_ context.Context, filter attendance.RecordFilter) (attendance.ListRecordResponse, error) {
	s.lastFilter = filter
	return attendance.ListRecordResponse{Page: 1, Limit: 20, Records: []attendance.RecordResponse{}}, nil
}

func (s *stubScanService) GetMyRecords(_ context.Context, filter attendance.RecordFilter) (attendance.ListRecordResponse, error) {
	s.myCalled = true
	return attendance.ListRecordResponse{Records: []attendance.RecordResponse{}}, nil
}

type stubHistory struct {
	events chan history.TapEvent
}

func (s *stubHistory) Record(context.Context, history.TapEvent) error { return nil }

func (s *stubHistory) Recent(_ context.Context, limit int) ([]history.TapEvent, error) {
	return []history.TapEvent{{ID: "e1", Message: "ok"}}, nil
}

func (s *stubHistory) Subscribe(context.Context) (<-chan history.TapEvent, func()) {
	return s.events, func() {}
}

func (s *stubHistory) Close() {}

type testServer struct {
	*httptest.Server
	jwt  jwt.Service
	scan *stubScanService
	hist *stubHistory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	jwtService := jwt.NewJWTService(handlerTestSecret, "1h")
	scan := &stubScanService{}
	hist := &stubHistory{events: make(chan history.TapEvent, 1)}

	router := NewRouter(RouterConfig{Env: "test", Version: "test"}, jwtService, NewAttendanceHandler(scan), NewHistoryHandler(hist, jwtService))
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, jwt: jwtService, scan: scan, hist: hist}
}

func (s *testServer) token(t *testing.T, role user.Role) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken("u-"+strings.ToLower(string(role)), "someone@example.com", role)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, response.Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope response.Response
	_ = json.NewDecoder(resp.Body).Decode(&envelope)
	return resp, envelope
}

func TestScan_Success(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, http.MethodPost, "/api/v1/attendance/scan", srv.token(t, user.RoleGuard), map[string]string{
		"card_id": "04A22B1C", "session": "morning", "action": "time_in",
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)
	assert.Equal(t, "Maria Santos timed in for morning session", body.Message)
	assert.Equal(t, "04A22B1C", srv.scan.lastTap.CardID)
}

func TestScan_RequiresAuthAndPermission(t *testing.T) {
	srv := newTestServer(t)
	payload := map[string]string{"card_id": "04A22B1C", "session": "morning", "action": "time_in"}

	resp, _ := srv.do(t, http.MethodPost, "/api/v1/attendance/scan", "", payload)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := srv.do(t, http.MethodPost, "/api/v1/attendance/scan", srv.token(t, user.RoleFaculty), payload)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", body.Error.Code)
}

func TestScan_RejectionsMapToCodes(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{user.ErrUserNotFound, http.StatusNotFound, "CARD_NOT_REGISTERED"},
		{attendance.ErrNoScheduleConfigured, http.StatusUnprocessableEntity, "NO_SCHEDULE"},
		{attendance.ErrSessionScheduleMissing, http.StatusUnprocessableEntity, "SESSION_NOT_SCHEDULED"},
		{attendance.ErrNoPriorTimeIn, http.StatusUnprocessableEntity, "NO_PRIOR_TIME_IN"},
		{attendance.ErrAlreadyTimedIn, http.StatusConflict, "ALREADY_TIMED_IN"},
		{attendance.ErrAlreadyCompleted, http.StatusConflict, "ALREADY_COMPLETED"},
		{validator.ValidationErrors{{Field: "card_id", Message: "card_id is required"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			srv := newTestServer(t)
			srv.scan.tapErr = tc.err

			resp, body := srv.do(t, http.MethodPost, "/api/v1/attendance/scan", srv.token(t, user.RoleGuard), map[string]string{
				"card_id": "04A22B1C", "session": "morning", "action": "time_in",
			})
			assert.Equal(t, tc.status, resp.StatusCode)
			require.NotNil(t, body.Error)
			assert.Equal(t, tc.code, body.Error.Code)
		})
	}
}

func TestScan_MalformedBody(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/attendance/scan", strings.NewReader("{not json"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+srv.token(t, user.RoleGuard))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListRecords_ParsesFilter(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := srv.do(t, http.MethodGet, "/api/v1/attendance?user_id=u-1&status=late&session=morning&page=2&limit=5&sort_by=penalty_amount", srv.token(t, user.RoleAccounting), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	f := srv.scan.lastFilter
	require.NotNil(t, f.UserID)
	assert.Equal(t, "u-1", *f.UserID)
	require.NotNil(t, f.Status)
	assert.Equal(t, "late", *f.Status)
	require.NotNil(t, f.Session)
	assert.Equal(t, "morning", *f.Session)
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 5, f.Limit)
	assert.Equal(t, "penalty_amount", f.SortBy)
	assert.Nil(t, f.Date)
}

func TestRecordRoutes_Permissions(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := srv.do(t, http.MethodGet, "/api/v1/attendance", srv.token(t, user.RoleStaff), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = srv.do(t, http.MethodGet, "/api/v1/attendance/my", srv.token(t, user.RoleStaff), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, srv.scan.myCalled)

	resp, _ = srv.do(t, http.MethodGet, "/api/v1/attendance/my", srv.token(t, user.RoleGuard), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestGetRecord(t *testing.T) {
	srv := newTestServer(t)
	token := srv.token(t, user.RoleHRPersonnel)

	resp, _ := srv.do(t, http.MethodGet, "/api/v1/attendance/rec-1", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := srv.do(t, http.MethodGet, "/api/v1/attendance/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestHistory_RecentAndStreamToken(t *testing.T) {
	srv := newTestServer(t)
	token := srv.token(t, user.RoleGuard)

	resp, body := srv.do(t, http.MethodGet, "/api/v1/history?limit=10", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body.Data, 1)

	resp, _ = srv.do(t, http.MethodGet, "/api/v1/history?limit=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = srv.do(t, http.MethodGet, "/api/v1/history", srv.token(t, user.RoleAccounting), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = srv.do(t, http.MethodPost, "/api/v1/history/stream-token", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["token"])
}

func TestHistory_Stream(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := srv.do(t, http.MethodGet, "/api/v1/history/stream", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// an access token is not a stream token
	resp, _ = srv.do(t, http.MethodGet, "/api/v1/history/stream?token="+srv.token(t, user.RoleGuard), "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	streamToken, _, err := srv.jwt.GenerateSSEToken("u-guard")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/history/stream?token="+streamToken, nil)
	require.NoError(t, err)

	stream, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer stream.Body.Close()
	assert.Equal(t, "text/event-stream", stream.Header.Get("Content-Type"))

	srv.hist.events <- history.TapEvent{ID: "e42", UserName: "Maria Santos"}

	reader := bufio.NewReader(stream.Body)
	var lines []string
	for len(lines) < 8 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		lines = append(lines, strings.TrimRight(line, "\n"))
		if strings.HasPrefix(line, "data: ") && strings.Contains(line, "e42") {
			break
		}
	}

	assert.Contains(t, lines, "event: connected")
	assert.Contains(t, lines, "id: e42")
	assert.Contains(t, lines, "event: tap")
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
