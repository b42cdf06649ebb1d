// Package services hosts the scan pipeline: provider scan, AI analysis,
// draft generation, and persistence of the resulting report.
package services

import (
	"context"
	"errors"
	"log"

	"alfredmail-be/config"
	"alfredmail-be/internal/analysis"
	"alfredmail-be/internal/drafts"
	"alfredmail-be/internal/gate"
	"alfredmail-be/internal/models"
	"alfredmail-be/internal/provider"
)

// ErrNoReport is returned when a session has not completed a scan yet.
var ErrNoReport = errors.New("no report available for this session")

// StateStore is the subset of the state repository the pipeline needs.
type StateStore interface {
	Find(ctx context.Context, sessionID string) (*models.SessionState, error)
	SaveConnection(ctx context.Context, sessionID string, sess *provider.Session) error
	SaveReport(ctx context.Context, sessionID string, report *models.AnalysisReport, msgs []models.NormalizedMessage) error
	SaveError(ctx context.Context, sessionID, message string) error
	ClearConnection(ctx context.Context, sessionID string) error
}

type PipelineService struct {
	cfg       *config.Config
	states    StateStore
	completer analysis.Completer
	gate      *gate.Gate

	// Injectable for tests.
	newProvider func(kind string, cfg *config.Config) (provider.Provider, error)
}

func NewPipelineService(cfg *config.Config, states StateStore, completer analysis.Completer, accessGate *gate.Gate) *PipelineService {
	return &PipelineService{
		cfg:         cfg,
		states:      states,
		completer:   completer,
		gate:        accessGate,
		newProvider: provider.New,
	}
}

// Connect exchanges the OAuth code for the given provider kind and
// persists the resulting session credentials.
func (s *PipelineService) Connect(ctx context.Context, sessionID, kind, code string) (*provider.Session, error) {
	p, err := s.newProvider(kind, s.cfg)
	if err != nil {
		return nil, err
	}

	sess, err := p.Connect(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := s.states.SaveConnection(ctx, sessionID, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// RunScan is the end-to-end pipeline for one request: scan the inbox,
// analyze it, optionally generate drafts, persist the report. Provider
// configuration and auth problems propagate; analysis-format problems
// never do, the parser always yields a usable report.
func (s *PipelineService) RunScan(ctx context.Context, sessionID string, settings models.ScanSettings) (*models.AnalysisReport, error) {
	p, err := s.restore(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if settings.MaxEmails <= 0 || settings.MaxEmails > s.cfg.ScanMaxEmails {
		settings.MaxEmails = s.cfg.ScanMaxEmails
	}

	msgs, err := p.ScanInbox(ctx, settings)
	if err != nil {
		s.recordError(ctx, sessionID, err)
		return nil, err
	}

	if len(msgs) == 0 {
		report := emptyReport(settings)
		if err := s.states.SaveReport(ctx, sessionID, report, nil); err != nil {
			log.Printf("pipeline: persisting empty report failed: %v", err)
		}
		return report, nil
	}

	prompt := analysis.BuildPrompt(msgs, settings)
	raw, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		s.recordError(ctx, sessionID, err)
		return nil, err
	}

	report := analysis.ParseReport(raw, msgs, settings)

	if settings.AIMode == models.AIModeAllInOne && len(report.RepliesToGenerate) > 0 {
		attachDraftResults(report, drafts.CreateDrafts(ctx, p, report.RepliesToGenerate, msgs))
	}

	if err := s.states.SaveReport(ctx, sessionID, report, msgs); err != nil {
		log.Printf("pipeline: persisting report failed: %v", err)
	}
	return report, nil
}

// RedoDrafts re-runs draft creation for the last persisted report,
// matching replies against the messages that scan returned.
func (s *PipelineService) RedoDrafts(ctx context.Context, sessionID string) (*models.AnalysisReport, error) {
	state, err := s.states.Find(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	report := state.LastReport
	if report == nil {
		return nil, ErrNoReport
	}
	if len(report.RepliesToGenerate) == 0 {
		return report, nil
	}

	p, err := s.restore(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	report.DraftCount = 0
	attachDraftResults(report, drafts.CreateDrafts(ctx, p, report.RepliesToGenerate, state.LastMessages))

	if err := s.states.SaveReport(ctx, sessionID, report, state.LastMessages); err != nil {
		log.Printf("pipeline: persisting re-drafted report failed: %v", err)
	}
	return report, nil
}

func attachDraftResults(report *models.AnalysisReport, results []models.DraftResult) {
	report.DraftResults = results
	for _, r := range results {
		if r.Error == "" {
			report.DraftCount++
		}
	}
}

// LastReport returns the most recent persisted report for the session.
func (s *PipelineService) LastReport(ctx context.Context, sessionID string) (*models.AnalysisReport, error) {
	state, err := s.states.Find(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.LastReport == nil {
		return nil, ErrNoReport
	}
	return state.LastReport, nil
}

// Profile returns the connected account's email address.
func (s *PipelineService) Profile(ctx context.Context, sessionID string) (string, error) {
	p, err := s.restore(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return p.GetUserProfile(ctx)
}

// SendDraft sends a message immediately through the connected provider.
func (s *PipelineService) SendDraft(ctx context.Context, sessionID string, req provider.DraftRequest) error {
	p, err := s.restore(ctx, sessionID)
	if err != nil {
		return err
	}
	return p.SendMessage(ctx, req)
}

// Disconnect revokes the provider credential and clears the persisted
// connection. The revoke is best-effort; the clear is not.
func (s *PipelineService) Disconnect(ctx context.Context, sessionID string) error {
	p, err := s.restore(ctx, sessionID)
	if err == nil {
		if derr := p.Disconnect(ctx); derr != nil {
			log.Printf("pipeline: provider disconnect failed: %v", derr)
		}
	}
	return s.states.ClearConnection(ctx, sessionID)
}

// ConnectionState reports the persisted connection for the session.
func (s *PipelineService) ConnectionState(ctx context.Context, sessionID string) (*models.SessionState, error) {
	return s.states.Find(ctx, sessionID)
}

// restore rebuilds a provider adapter from the persisted session state.
// The JWT already carries the gate expiry, but the persisted window is
// checked again here so a stale token can never reach the provider.
func (s *PipelineService) restore(ctx context.Context, sessionID string) (provider.Provider, error) {
	state, err := s.states.Find(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.gate.Expired(state.ExpiresAt) {
		return nil, &provider.AuthError{Reason: "access window has expired, validate your token again"}
	}
	if !state.Connected || state.Token == nil {
		return nil, &provider.AuthError{Reason: "no email provider connected for this session"}
	}

	p, err := s.newProvider(state.Provider, s.cfg)
	if err != nil {
		return nil, err
	}
	if err := p.Restore(&provider.Session{
		Provider:  state.Provider,
		Token:     state.Token,
		Connected: true,
		Email:     state.Email,
	}); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PipelineService) recordError(ctx context.Context, sessionID string, cause error) {
	if err := s.states.SaveError(ctx, sessionID, cause.Error()); err != nil {
		log.Printf("pipeline: persisting scan error failed: %v", err)
	}
}

// emptyReport is returned when every fallback search tier came back
// empty. It is a complete report so the frontend renders it like any
// other.
func emptyReport(settings models.ScanSettings) *models.AnalysisReport {
	return &models.AnalysisReport{
		Summary:            "No emails found in the selected time range.",
		TotalEmails:        0,
		EstimatedCost:      analysis.EstimateCost(0, settings.AIProcessingLevel),
		EmailSummaries:     []models.EmailSummary{},
		EmailsAnalysis:     []models.EmailAnalysis{},
		RepliesToGenerate:  []models.ReplySuggestion{},
		ReplySummary:       "No replies need to be generated",
		OverallInsights:    "Your inbox is clear for this period.",
		PriorityActions:    []string{},
		TimeSensitiveItems: []string{},
	}
}
