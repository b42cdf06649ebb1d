package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"alfredmail-be/internal/middleware"
	"alfredmail-be/internal/models"
	"alfredmail-be/internal/provider"
	"alfredmail-be/internal/repository"
	"alfredmail-be/internal/services"
)

// scanTimeout bounds one full pipeline run: inbox scan, AI completion,
// and the draft pass.
const scanTimeout = 120 * time.Second

// Pipeline is the slice of the pipeline service the mail handlers use.
type Pipeline interface {
	Connect(ctx context.Context, sessionID, kind, code string) (*provider.Session, error)
	RunScan(ctx context.Context, sessionID string, settings models.ScanSettings) (*models.AnalysisReport, error)
	RedoDrafts(ctx context.Context, sessionID string) (*models.AnalysisReport, error)
	LastReport(ctx context.Context, sessionID string) (*models.AnalysisReport, error)
	ConnectionState(ctx context.Context, sessionID string) (*models.SessionState, error)
	Profile(ctx context.Context, sessionID string) (string, error)
	SendDraft(ctx context.Context, sessionID string, req provider.DraftRequest) error
	Disconnect(ctx context.Context, sessionID string) error
}

type MailHandler struct {
	pipeline Pipeline
}

func NewMailHandler(pipeline Pipeline) *MailHandler {
	return &MailHandler{pipeline: pipeline}
}

// Connect exchanges an OAuth authorization code for a provider session.
func (h *MailHandler) Connect(c *gin.Context) {
	var req models.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sess, err := h.pipeline.Connect(ctx, middleware.SessionID(c), req.Provider, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ConnectResponse{
		Provider:  sess.Provider,
		Connected: sess.Connected,
		Email:     sess.Email,
	})
}

// Scan runs the full pipeline and returns the analysis report. Missing
// or partial settings fall back to the frontend defaults.
func (h *MailHandler) Scan(c *gin.Context) {
	var req models.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Settings = models.DefaultScanSettings()
	}
	applySettingsDefaults(&req.Settings)

	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	report, err := h.pipeline.RunScan(ctx, middleware.SessionID(c), req.Settings)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// applySettingsDefaults fills zero-valued scan settings from the
// frontend defaults, so a partial request body behaves like the full
// default one.
func applySettingsDefaults(s *models.ScanSettings) {
	def := models.DefaultScanSettings()
	if s.MaxEmails <= 0 {
		s.MaxEmails = def.MaxEmails
	}
	if s.TimeRange == "" {
		s.TimeRange = def.TimeRange
	}
	if s.AIMode == "" {
		s.AIMode = def.AIMode
	}
	if s.AIProcessingLevel == "" {
		s.AIProcessingLevel = def.AIProcessingLevel
	}
}

// Report returns the most recent persisted analysis report.
func (h *MailHandler) Report(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	report, err := h.pipeline.LastReport(ctx, middleware.SessionID(c))
	if err != nil {
		if errors.Is(err, services.ErrNoReport) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "no_report",
				Message: "No scan has completed for this session yet",
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Status reports the persisted connection state for the session.
func (h *MailHandler) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	state, err := h.pipeline.ConnectionState(ctx, middleware.SessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ConnectResponse{
		Provider:  state.Provider,
		Connected: state.Connected,
		Email:     state.Email,
	})
}

// Profile returns the connected account's email address.
func (h *MailHandler) Profile(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	email, err := h.pipeline.Profile(ctx, middleware.SessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"email": email})
}

// Send sends a message immediately through the connected provider.
func (h *MailHandler) Send(c *gin.Context) {
	var req models.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := h.pipeline.SendDraft(ctx, middleware.SessionID(c), provider.DraftRequest{
		To:        req.To,
		Subject:   req.Subject,
		Content:   req.Content,
		ThreadID:  req.ThreadID,
		MessageID: req.MessageID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sent": true})
}

// Drafts re-runs draft creation for the last persisted report.
func (h *MailHandler) Drafts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	report, err := h.pipeline.RedoDrafts(ctx, middleware.SessionID(c))
	if err != nil {
		if errors.Is(err, services.ErrNoReport) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "no_report",
				Message: "Run a scan before generating drafts",
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Disconnect revokes the provider credential and clears the stored
// connection.
func (h *MailHandler) Disconnect(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := h.pipeline.Disconnect(ctx, middleware.SessionID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ConnectResponse{Connected: false})
}

// respondError maps the pipeline's error taxonomy to HTTP statuses.
func respondError(c *gin.Context, err error) {
	var (
		authErr  *provider.AuthError
		cfgErr   *provider.ConfigurationError
		queryErr *provider.QueryError
		draftErr *provider.DraftError
	)

	switch {
	case errors.As(err, &authErr):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "auth_error",
			Message: authErr.Error(),
		})
	case errors.As(err, &cfgErr):
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "configuration_error",
			Message: cfgErr.Error(),
		})
	case errors.As(err, &queryErr):
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "provider_error",
			Message: queryErr.Error(),
		})
	case errors.As(err, &draftErr):
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "draft_error",
			Message: draftErr.Error(),
		})
	case errors.Is(err, repository.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "session_not_found",
			Message: "Session does not exist, validate your access token again",
		})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: err.Error(),
		})
	}
}
