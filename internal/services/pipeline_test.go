package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"alfredmail-be/config"
	"alfredmail-be/internal/analysis"
	"alfredmail-be/internal/gate"
	"alfredmail-be/internal/models"
	"alfredmail-be/internal/provider"
)

type stateStoreMock struct {
	state       *models.SessionState
	savedReport *models.AnalysisReport
	savedError  string
	cleared     bool
}

func (m *stateStoreMock) Find(_ context.Context, _ string) (*models.SessionState, error) {
	if m.state == nil {
		return nil, errors.New("session not found")
	}
	return m.state, nil
}

func (m *stateStoreMock) SaveConnection(_ context.Context, _ string, sess *provider.Session) error {
	m.state = &models.SessionState{
		SessionID: "s1",
		Provider:  sess.Provider,
		Connected: sess.Connected,
		Email:     sess.Email,
		Token:     sess.Token,
	}
	return nil
}

func (m *stateStoreMock) SaveReport(_ context.Context, _ string, report *models.AnalysisReport, msgs []models.NormalizedMessage) error {
	m.savedReport = report
	if m.state != nil {
		m.state.LastReport = report
		m.state.LastMessages = msgs
	}
	return nil
}

func (m *stateStoreMock) SaveError(_ context.Context, _, msg string) error {
	m.savedError = msg
	return nil
}

func (m *stateStoreMock) ClearConnection(_ context.Context, _ string) error {
	m.cleared = true
	return nil
}

type providerMock struct {
	scanResult   []models.NormalizedMessage
	scanErr      error
	scanSettings models.ScanSettings
	connectSess  *provider.Session
	connectErr   error
	draftCalls   int
	draftErrOn   int // 1-based call index that fails, 0 for never
	sent         []provider.DraftRequest
	disconnects  int
	restored     *provider.Session
}

func (p *providerMock) Connect(context.Context, string) (*provider.Session, error) {
	return p.connectSess, p.connectErr
}

func (p *providerMock) Restore(s *provider.Session) error {
	p.restored = s
	return nil
}

func (p *providerMock) ScanInbox(_ context.Context, settings models.ScanSettings) ([]models.NormalizedMessage, error) {
	p.scanSettings = settings
	return p.scanResult, p.scanErr
}

func (p *providerMock) CreateDraftReply(_ context.Context, req provider.DraftRequest) (*models.DraftResult, error) {
	p.draftCalls++
	if p.draftCalls == p.draftErrOn {
		return nil, &provider.DraftError{Reason: "quota exceeded"}
	}
	return &models.DraftResult{DraftID: fmt.Sprintf("d%d", p.draftCalls), Status: "created"}, nil
}

func (p *providerMock) SendMessage(_ context.Context, req provider.DraftRequest) error {
	p.sent = append(p.sent, req)
	return nil
}

func (p *providerMock) Disconnect(context.Context) error {
	p.disconnects++
	return nil
}

func (p *providerMock) GetUserProfile(context.Context) (string, error) {
	return "user@example.com", nil
}

type completerMock struct {
	response string
	err      error
	prompts  []analysis.Prompt
}

func (c *completerMock) Complete(_ context.Context, prompt analysis.Prompt) (string, error) {
	c.prompts = append(c.prompts, prompt)
	return c.response, c.err
}

func connectedState() *models.SessionState {
	return &models.SessionState{
		SessionID: "s1",
		Provider:  provider.KindGmail,
		Connected: true,
		Email:     "user@example.com",
		Token:     &oauth2.Token{AccessToken: "tok"},
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func scanMessages(n int) []models.NormalizedMessage {
	msgs := make([]models.NormalizedMessage, 0, n)
	for i := 0; i < n; i++ {
		msgs = append(msgs, models.NormalizedMessage{
			ID:       fmt.Sprintf("m%d", i+1),
			ThreadID: fmt.Sprintf("t%d", i+1),
			Labels:   []string{models.LabelInbox},
			Headers: map[string]string{
				"from":    fmt.Sprintf("sender%d@example.com", i+1),
				"subject": fmt.Sprintf("Subject %d", i+1),
			},
		})
	}
	return msgs
}

func newTestPipeline(states *stateStoreMock, pmock *providerMock, comp *completerMock) *PipelineService {
	cfg := &config.Config{ScanMaxEmails: 50}
	svc := NewPipelineService(cfg, states, comp, gate.New("s3cret", 7*24*time.Hour))
	svc.newProvider = func(kind string, _ *config.Config) (provider.Provider, error) {
		if kind != provider.KindGmail {
			return nil, &provider.ConfigurationError{Reason: "unsupported email provider: " + kind}
		}
		return pmock, nil
	}
	return svc
}

func TestRunScanSummaryMode(t *testing.T) {
	states := &stateStoreMock{state: connectedState()}
	pmock := &providerMock{scanResult: scanMessages(2)}
	comp := &completerMock{response: `{"summary": "Two emails reviewed"}`}
	svc := newTestPipeline(states, pmock, comp)

	report, err := svc.RunScan(context.Background(), "s1", models.DefaultScanSettings())
	require.NoError(t, err)

	assert.Equal(t, "Two emails reviewed", report.Summary)
	assert.Equal(t, 2, report.TotalEmails)
	assert.Empty(t, report.DraftResults)
	assert.Zero(t, pmock.draftCalls)
	assert.Same(t, report, states.savedReport)
}

func TestRunScanAllInOneCreatesDrafts(t *testing.T) {
	states := &stateStoreMock{state: connectedState()}
	pmock := &providerMock{scanResult: scanMessages(3), draftErrOn: 2}
	comp := &completerMock{response: `{
		"summary": "Replies needed",
		"repliesToGenerate": [
			{"emailNumber": 1, "content": "a"},
			{"emailNumber": 2, "content": "b"},
			{"emailNumber": 3, "content": "c"}
		]
	}`}
	svc := newTestPipeline(states, pmock, comp)

	settings := models.DefaultScanSettings()
	settings.AIMode = models.AIModeAllInOne

	report, err := svc.RunScan(context.Background(), "s1", settings)
	require.NoError(t, err)

	require.Len(t, report.DraftResults, 3)
	assert.Equal(t, 2, report.DraftCount)
	assert.Contains(t, report.DraftResults[1].Error, "quota exceeded")
}

func TestRunScanEmptyInbox(t *testing.T) {
	states := &stateStoreMock{state: connectedState()}
	pmock := &providerMock{}
	comp := &completerMock{}
	svc := newTestPipeline(states, pmock, comp)

	report, err := svc.RunScan(context.Background(), "s1", models.DefaultScanSettings())
	require.NoError(t, err)

	assert.Zero(t, report.TotalEmails)
	assert.Contains(t, report.Summary, "No emails found")
	assert.Empty(t, comp.prompts)
	assert.NotNil(t, states.savedReport)
}

func TestRunScanCompletionFailureRecorded(t *testing.T) {
	states := &stateStoreMock{state: connectedState()}
	pmock := &providerMock{scanResult: scanMessages(1)}
	comp := &completerMock{err: errors.New("OpenAI API error (status 429): rate limited")}
	svc := newTestPipeline(states, pmock, comp)

	_, err := svc.RunScan(context.Background(), "s1", models.DefaultScanSettings())
	require.Error(t, err)
	assert.Contains(t, states.savedError, "status 429")
	assert.Nil(t, states.savedReport)
}

func TestRunScanRequiresConnection(t *testing.T) {
	states := &stateStoreMock{state: &models.SessionState{
		SessionID: "s1",
		ExpiresAt: time.Now().Add(time.Hour),
	}}
	svc := newTestPipeline(states, &providerMock{}, &completerMock{})

	_, err := svc.RunScan(context.Background(), "s1", models.DefaultScanSettings())
	var authErr *provider.AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestRunScanExpiredAccessWindow(t *testing.T) {
	state := connectedState()
	state.ExpiresAt = time.Now().Add(-time.Minute)

	states := &stateStoreMock{state: state}
	pmock := &providerMock{scanResult: scanMessages(1)}
	svc := newTestPipeline(states, pmock, &completerMock{})

	_, err := svc.RunScan(context.Background(), "s1", models.DefaultScanSettings())
	var authErr *provider.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Reason, "expired")
	assert.Zero(t, pmock.draftCalls)
}

func TestRunScanClampsMaxEmails(t *testing.T) {
	states := &stateStoreMock{state: connectedState()}
	pmock := &providerMock{}
	svc := newTestPipeline(states, pmock, &completerMock{})

	settings := models.DefaultScanSettings()
	settings.MaxEmails = 10000

	_, err := svc.RunScan(context.Background(), "s1", settings)
	require.NoError(t, err)
	assert.Equal(t, 50, pmock.scanSettings.MaxEmails)

	settings.MaxEmails = -1
	_, err = svc.RunScan(context.Background(), "s1", settings)
	require.NoError(t, err)
	assert.Equal(t, 50, pmock.scanSettings.MaxEmails)
}

func TestDisconnectClearsStateEvenWithoutProvider(t *testing.T) {
	// Session exists but nothing is connected: the provider restore
	// fails, the persisted state is still cleared.
	states := &stateStoreMock{state: &models.SessionState{SessionID: "s1"}}
	svc := newTestPipeline(states, &providerMock{}, &completerMock{})

	err := svc.Disconnect(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, states.cleared)
}

func TestRedoDraftsUsesPersistedMessages(t *testing.T) {
	state := connectedState()
	state.LastReport = &models.AnalysisReport{
		RepliesToGenerate: []models.ReplySuggestion{
			{EmailNumber: 1, Content: "a"},
			{EmailNumber: 2, Content: "b"},
		},
	}
	state.LastMessages = scanMessages(2)

	states := &stateStoreMock{state: state}
	pmock := &providerMock{}
	svc := newTestPipeline(states, pmock, &completerMock{})

	report, err := svc.RedoDrafts(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, report.DraftResults, 2)
	assert.Equal(t, 2, report.DraftCount)
	assert.Equal(t, 2, pmock.draftCalls)
	assert.Same(t, report, states.savedReport)
}

func TestRedoDraftsWithoutReport(t *testing.T) {
	states := &stateStoreMock{state: connectedState()}
	svc := newTestPipeline(states, &providerMock{}, &completerMock{})

	_, err := svc.RedoDrafts(context.Background(), "s1")
	require.ErrorIs(t, err, ErrNoReport)
}

func TestConnectPersistsSession(t *testing.T) {
	states := &stateStoreMock{}
	pmock := &providerMock{connectSess: &provider.Session{
		Provider:  provider.KindGmail,
		Connected: true,
		Email:     "user@example.com",
		Token:     &oauth2.Token{AccessToken: "tok"},
	}}
	svc := newTestPipeline(states, pmock, &completerMock{})

	sess, err := svc.Connect(context.Background(), "s1", provider.KindGmail, "auth-code")
	require.NoError(t, err)
	assert.True(t, sess.Connected)
	require.NotNil(t, states.state)
	assert.Equal(t, "user@example.com", states.state.Email)
}
