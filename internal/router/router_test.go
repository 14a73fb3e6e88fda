package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/feedesk-backend/internal/cache"
	"github.com/stemsi/feedesk-backend/internal/config"
	"github.com/stemsi/feedesk-backend/internal/handler"
	"github.com/stemsi/feedesk-backend/internal/middleware"
	"github.com/stemsi/feedesk-backend/internal/model"
	"github.com/stemsi/feedesk-backend/internal/money"
	"github.com/stemsi/feedesk-backend/internal/repository/memrepo"
	"github.com/stemsi/feedesk-backend/internal/service"
	"github.com/stemsi/feedesk-backend/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

type testServer struct {
	engine  *gin.Engine
	records *memrepo.Records
	auth    *service.AuthService
}

func newTestServer(t *testing.T, mutate func(cfg *config.Config)) *testServer {
	t.Helper()
	validator.Setup()

	cfg := &config.Config{
		GinMode:           gin.TestMode,
		JWTSecret:         "test-secret",
		ReceiptPrefix:     "REC",
		ReceiptMaxRetries: 3,
		AvailableMonths:   3,
		CatalogCacheTTL:   time.Minute,
		IdempotencyTTL:    time.Hour,
		RateLimitRPS:      100,
		RateLimitBurst:    100,
	}
	if mutate != nil {
		mutate(cfg)
	}

	log := zerolog.Nop()
	store := cache.NewMemoryStore()
	students := memrepo.NewStudents()
	subjects := memrepo.NewSubjects(
		model.Subject{SubjectCode: "MATH", SubjectName: "Mathematics", Fee: money.MustParse("1200")},
		model.Subject{SubjectCode: "SCI", SubjectName: "Science", Fee: money.MustParse("1000")},
	)
	records := memrepo.NewRecords()

	auth := service.NewAuthService(cfg.JWTSecret)
	receipts := service.NewReceiptService(students, subjects, records, service.ReceiptConfig{
		Prefix: cfg.ReceiptPrefix, MaxRetries: cfg.ReceiptMaxRetries, AvailableMonths: cfg.AvailableMonths,
	}, log)

	handlers := &Handlers{
		Student:   handler.NewStudentHandler(service.NewStudentService(students, store, cfg.CatalogCacheTTL, log), log),
		Subject:   handler.NewSubjectHandler(service.NewSubjectService(subjects, store, cfg.CatalogCacheTTL, log), log),
		FeeRecord: handler.NewFeeRecordHandler(receipts, service.NewExportService(records, nil, time.Minute, log), log),
		System:    handler.NewSystemHandler(map[string]handler.Pinger{"cache": store}, log),
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	engine := SetupRouter(ctx, Deps{AuthService: auth, Cache: store, Log: log}, handlers, cfg)
	return &testServer{engine: engine, records: records, auth: auth}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func addStudent(t *testing.T, s *testServer) {
	t.Helper()
	w, _ := s.do(t, http.MethodPost, "/api/v1/students", `{"name":"Amara Perera","sid":"0001","grade":"10"}`)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	w, env := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"status":"ok"`)
}

func TestStudentsFlow(t *testing.T) {
	s := newTestServer(t, nil)
	addStudent(t, s)

	w, env := s.do(t, http.MethodPost, "/api/v1/students", `{"name":"Other","sid":"0001","grade":"11"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "DUPLICATE_KEY", env.Error.Code)

	w, env = s.do(t, http.MethodPost, "/api/v1/students", `{"name":"Nimal","sid":"12","grade":"9"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields, "sid")

	w, env = s.do(t, http.MethodPost, "/api/v1/students", `{"sid":"0003"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error.Fields, "name")
	assert.Contains(t, env.Error.Fields, "grade")

	w, env = s.do(t, http.MethodGet, "/api/v1/students", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Students []model.Student `json:"students"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Students, 1)
	assert.Equal(t, "Amara Perera", list.Students[0].StudentName)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	w, _ = s.do(t, http.MethodGet, "/api/v1/students/0001", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/api/v1/students/0001", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodDelete, "/api/v1/students/0001", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "STUDENT_NOT_FOUND", env.Error.Code)
}

func TestSubjectsFlow(t *testing.T) {
	s := newTestServer(t, nil)

	w, env := s.do(t, http.MethodPost, "/api/v1/subjects", `{"subjectCode":"ENG","subjectName":"English","subjectFee":"850.5"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, string(env.Data), `"fee":850.50`)

	w, env = s.do(t, http.MethodPost, "/api/v1/subjects", `{"subjectCode":"ART","subjectName":"Art","subjectFee":"cheap"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FEE_FORMAT", env.Error.Code)

	w, env = s.do(t, http.MethodPost, "/api/v1/subjects", `{"subjectCode":"MATH","subjectName":"Maths","subjectFee":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "DUPLICATE_KEY", env.Error.Code)

	w, env = s.do(t, http.MethodPut, "/api/v1/subjects/MATH/fee", `{"fee":1500}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"fee":1500.00`)

	w, env = s.do(t, http.MethodPut, "/api/v1/subjects/NOPE/fee", `{"fee":"10"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "SUBJECT_NOT_FOUND", env.Error.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/subjects/ENG", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/api/v1/subjects/ENG", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/subjects/ENG", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIssueFeeRecord(t *testing.T) {
	s := newTestServer(t, nil)
	addStudent(t, s)

	body := `{"studentId":"0001","monthYear":"March 2025","subjects":[{"subjectCode":"MATH","fee":"1"},{"subjectCode":"SCI"}]}`
	w, env := s.do(t, http.MethodPost, "/api/v1/fee-records", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Fee record saved successfully", env.Message)

	var got struct {
		FeeRecord model.FeeRecord `json:"feeRecord"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "2200.00", got.FeeRecord.TotalAmount.String())
	assert.Regexp(t, `^REC-\d{6}-000001$`, got.FeeRecord.ReceiptNumber)

	w, env = s.do(t, http.MethodGet, "/api/v1/fee-records/"+got.FeeRecord.ReceiptNumber, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/v1/fee-records?studentId=0001", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), got.FeeRecord.ReceiptNumber)
}

func TestIssueFeeRecordFailures(t *testing.T) {
	s := newTestServer(t, nil)
	addStudent(t, s)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"unknown student", `{"studentId":"9999","monthYear":"March 2025","subjectCodes":["MATH"]}`, http.StatusNotFound, "STUDENT_NOT_FOUND"},
		{"empty subjects", `{"studentId":"0001","monthYear":"March 2025","subjects":[]}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad month", `{"studentId":"0001","monthYear":"03/2025","subjectCodes":["MATH"]}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown subject", `{"studentId":"0001","monthYear":"March 2025","subjectCodes":["ART"]}`, http.StatusNotFound, "SUBJECT_NOT_FOUND"},
		{"stale total", `{"studentId":"0001","monthYear":"March 2025","subjectCodes":["MATH"],"totalAmount":"1100"}`, http.StatusBadRequest, "TOTAL_MISMATCH"},
		{"garbage total", `{"studentId":"0001","monthYear":"March 2025","subjectCodes":["MATH"],"totalAmount":"lots"}`, http.StatusBadRequest, "INVALID_FEE_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := s.do(t, http.MethodPost, "/api/v1/fee-records", tt.body)
			assert.Equal(t, tt.status, w.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.False(t, env.Success)
		})
	}
	assert.Empty(t, s.records.Rows)
}

func TestIssueFeeRecordIdempotentReplay(t *testing.T) {
	s := newTestServer(t, nil)
	addStudent(t, s)

	body := `{"studentId":"0001","monthYear":"March 2025","subjectCodes":["MATH"]}`
	first, _ := s.do(t, http.MethodPost, "/api/v1/fee-records", body, middleware.IdempotencyKeyHeader, "k-1")
	second, _ := s.do(t, http.MethodPost, "/api/v1/fee-records", body, middleware.IdempotencyKeyHeader, "k-1")

	require.Equal(t, http.StatusCreated, first.Code)
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(middleware.IdempotencyReplayedHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Len(t, s.records.Rows, 1)
}

func TestPreview(t *testing.T) {
	s := newTestServer(t, nil)

	w, env := s.do(t, http.MethodPost, "/api/v1/fee-records/preview", `{"subjects":[{"subjectCode":"A","fee":"1200"},{"subjectCode":"B","fee":1000}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":2200.00}`, string(env.Data))

	w, env = s.do(t, http.MethodPost, "/api/v1/fee-records/preview", `{"subjects":[{"subjectCode":"A","fee":"abc"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FEE_FORMAT", env.Error.Code)
}

func TestOversizedFeesRejected(t *testing.T) {
	s := newTestServer(t, nil)

	requests := []struct {
		name, method, path, body string
	}{
		{"preview huge exponent", http.MethodPost, "/api/v1/fee-records/preview", `{"subjects":[{"subjectCode":"A","fee":"1e10000000"}]}`},
		{"preview above column", http.MethodPost, "/api/v1/fee-records/preview", `{"subjects":[{"subjectCode":"A","fee":1e12}]}`},
		{"subject create", http.MethodPost, "/api/v1/subjects", `{"subjectCode":"BIG","subjectName":"Big","subjectFee":"10000000000"}`},
		{"subject fee update", http.MethodPut, "/api/v1/subjects/MATH/fee", `{"fee":"1e12"}`},
	}
	for _, tt := range requests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "INVALID_FEE_FORMAT", env.Error.Code)
			assert.Less(t, w.Body.Len(), 1024)
		})
	}
}

func TestMonthsAndExport(t *testing.T) {
	s := newTestServer(t, nil)

	w, env := s.do(t, http.MethodGet, "/api/v1/fee-records/months", "")
	require.Equal(t, http.StatusOK, w.Code)
	var months struct {
		Months []string `json:"months"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &months))
	assert.Len(t, months.Months, 3)
	assert.Equal(t, model.MonthYearLabel(time.Now()), months.Months[0])

	w, _ = s.do(t, http.MethodGet, "/api/v1/fee-records/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.XLSXContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	w, env = s.do(t, http.MethodPost, "/api/v1/fee-records/export/archive", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "STORAGE_DISABLED", env.Error.Code)
}

func TestAuthEnabled(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) { cfg.AuthEnabled = true })

	w, env := s.do(t, http.MethodGet, "/api/v1/students", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_REQUIRED", env.Error.Code)

	token, err := s.auth.SignToken("clerk", "Desk", time.Hour)
	require.NoError(t, err)
	w, _ = s.do(t, http.MethodGet, "/api/v1/students", "", "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
