package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredmail-be/internal/models"
	"alfredmail-be/internal/provider"
)

type pipelineMock struct {
	scanSettings models.ScanSettings
	scanReport   *models.AnalysisReport
	scanErr      error
}

func (p *pipelineMock) Connect(context.Context, string, string, string) (*provider.Session, error) {
	return &provider.Session{Provider: provider.KindGmail, Connected: true}, nil
}

func (p *pipelineMock) RunScan(_ context.Context, _ string, settings models.ScanSettings) (*models.AnalysisReport, error) {
	p.scanSettings = settings
	return p.scanReport, p.scanErr
}

func (p *pipelineMock) RedoDrafts(context.Context, string) (*models.AnalysisReport, error) {
	return p.scanReport, nil
}

func (p *pipelineMock) LastReport(context.Context, string) (*models.AnalysisReport, error) {
	return p.scanReport, nil
}

func (p *pipelineMock) ConnectionState(context.Context, string) (*models.SessionState, error) {
	return &models.SessionState{}, nil
}

func (p *pipelineMock) Profile(context.Context, string) (string, error) {
	return "user@example.com", nil
}

func (p *pipelineMock) SendDraft(context.Context, string, provider.DraftRequest) error {
	return nil
}

func (p *pipelineMock) Disconnect(context.Context, string) error {
	return nil
}

func scanRequest(t *testing.T, mock *pipelineMock, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	h := NewMailHandler(mock)
	r.POST("/api/mail/scan", h.Scan)

	req := httptest.NewRequest(http.MethodPost, "/api/mail/scan", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestScanPartialSettingsGetDefaults(t *testing.T) {
	mock := &pipelineMock{scanReport: &models.AnalysisReport{}}

	w := scanRequest(t, mock, `{"settings":{"maxEmails":5}}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 5, mock.scanSettings.MaxEmails)
	assert.Equal(t, "7d", mock.scanSettings.TimeRange)
	assert.Equal(t, models.AIModeSummary, mock.scanSettings.AIMode)
	assert.Equal(t, models.LevelDetailed, mock.scanSettings.AIProcessingLevel)
}

func TestScanEmptyBodyGetsDefaults(t *testing.T) {
	mock := &pipelineMock{scanReport: &models.AnalysisReport{}}

	w := scanRequest(t, mock, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.DefaultScanSettings(), mock.scanSettings)
}

func TestScanKeepsExplicitSettings(t *testing.T) {
	mock := &pipelineMock{scanReport: &models.AnalysisReport{}}

	w := scanRequest(t, mock, `{"settings":{"maxEmails":20,"timeRange":"1d","aiMode":"all-in-one","aiProcessingLevel":"action","unread":true}}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 20, mock.scanSettings.MaxEmails)
	assert.Equal(t, "1d", mock.scanSettings.TimeRange)
	assert.Equal(t, models.AIModeAllInOne, mock.scanSettings.AIMode)
	assert.Equal(t, models.LevelAction, mock.scanSettings.AIProcessingLevel)
	assert.True(t, mock.scanSettings.Unread)
}

func TestScanMapsAuthError(t *testing.T) {
	mock := &pipelineMock{scanErr: &provider.AuthError{Reason: "no email provider connected for this session"}}

	w := scanRequest(t, mock, `{}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "auth_error")
}
