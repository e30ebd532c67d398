package audits

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"sow-backend/internal/audits/compliance"
	"sow-backend/internal/documents"
	"sow-backend/internal/mailer"
	"sow-backend/internal/report"
	"sow-backend/internal/shared/server/middleware"
	"sow-backend/internal/shared/server/respond"
)

// ReportMailer delivers a rendered report to a recipient.
type ReportMailer interface {
	SendReport(ctx context.Context, to, subject, body string, pdf []byte, filename string) error
}

// Handler wires HTTP handlers to the audits service.
type Handler struct {
	Svc     *Service
	DocRepo documents.DocumentsRepo
	Mail    ReportMailer
	limiter *pollLimiter
}

// NewHandler constructs a Handler. mail may be nil when SMTP is not configured.
func NewHandler(svc *Service, docRepo documents.DocumentsRepo, mail ReportMailer) *Handler {
	return &Handler{
		Svc:     svc,
		DocRepo: docRepo,
		Mail:    mail,
		limiter: newPollLimiter(pollLimitWindow, nil),
	}
}

// RegisterRoutes attaches audit routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/audits", h.startAudit)
	rg.GET("/audits", h.listAudits)
	rg.GET("/audits/:id", h.getAudit)
	rg.GET("/audits/:id/report", h.downloadReport)
	rg.POST("/audits/:id/email", h.emailReport)
}

type startAuditRequest struct {
	ProjectName    string `json:"projectName"`
	BuildEndDate   string `json:"buildEndDate"`
	TestEndDate    string `json:"testEndDate"`
	CutoverEndDate string `json:"cutoverEndDate"`
}

func (r startAuditRequest) timeline() (compliance.ProjectTimeline, error) {
	timeline := compliance.ProjectTimeline{ProjectName: strings.TrimSpace(r.ProjectName)}
	var err error
	if timeline.BuildEndDate, err = parseDate(r.BuildEndDate); err != nil {
		return timeline, fmt.Errorf("buildEndDate: %w", err)
	}
	if timeline.TestEndDate, err = parseDate(r.TestEndDate); err != nil {
		return timeline, fmt.Errorf("testEndDate: %w", err)
	}
	if timeline.CutoverEndDate, err = parseDate(r.CutoverEndDate); err != nil {
		return timeline, fmt.Errorf("cutoverEndDate: %w", err)
	}
	return timeline, nil
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", value)
}

func (h *Handler) startAudit(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	documentID := c.Param("id")
	if documentID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "document id is required", nil)
		return
	}

	// An empty body starts an audit without timeline context.
	var req startAuditRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}
	timeline, err := req.timeline()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	doc, err := h.DocRepo.GetByID(c.Request.Context(), userID, documentID)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start audit", nil)
		}
		return
	}

	ctx := WithRequestID(c.Request.Context(), c.GetString("requestId"))
	audit, err := h.Svc.Create(ctx, doc.ID, userID, timeline)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start audit", nil)
		return
	}

	c.Set("documentId", doc.ID)
	c.Set("auditId", audit.ID)
	respond.JSON(c, http.StatusAccepted, gin.H{
		"auditId": audit.ID,
		"status":  audit.Status,
	})
}

func (h *Handler) getAudit(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	auditID := c.Param("id")
	if auditID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "audit id is required", nil)
		return
	}

	if !h.limiter.Allow(userID, auditID) {
		c.Header("Retry-After", strconv.Itoa(h.limiter.RetryAfterSeconds()))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "polling too frequently", nil)
		return
	}

	audit, err := h.fetchOwned(c, userID, auditID)
	if err != nil {
		return
	}
	c.Set("auditId", audit.ID)
	c.Set("statusTransition", audit.Status)

	resp := gin.H{
		"id":     audit.ID,
		"status": audit.Status,
	}
	if audit.Status == StatusCompleted && audit.Result != nil {
		resp["result"] = audit.Result
		resp["pricing"] = audit.Pricing
		resp["schedule"] = audit.Schedule
		resp["recommendations"] = compliance.Prioritize(*audit.Result)
	}
	if audit.Status == StatusFailed {
		resp["errorCode"] = audit.ErrorCode
		if audit.ErrorMessage != nil {
			resp["errorMessage"] = *audit.ErrorMessage
		}
		resp["retryable"] = audit.ErrorRetryable
	}

	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) listAudits(c *gin.Context) {
	if isGuest, ok := c.Get("isGuest"); ok {
		if guest, ok2 := isGuest.(bool); ok2 && guest {
			respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view history", nil)
			return
		}
	}

	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}

	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	audits, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list audits", nil)
		return
	}

	resp := make([]gin.H, 0, len(audits))
	for _, a := range audits {
		item := gin.H{
			"auditId":    a.ID,
			"documentId": a.DocumentID,
			"status":     a.Status,
			"createdAt":  a.CreatedAt,
		}
		if a.Timeline.ProjectName != "" {
			item["projectName"] = a.Timeline.ProjectName
		}
		if a.Status == StatusCompleted && a.Result != nil {
			item["complianceScore"] = a.Result.ComplianceScore
			item["goNoGo"] = a.Result.GoNoGo
		}
		resp = append(resp, item)
	}

	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) downloadReport(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	auditID := c.Param("id")

	pdf, _, err := h.renderReport(c, userID, auditID)
	if err != nil {
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "sow-audit-"+auditID+".pdf"))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

type emailReportRequest struct {
	To string `json:"to"`
}

func (h *Handler) emailReport(c *gin.Context) {
	if h.Mail == nil {
		respond.Error(c, http.StatusServiceUnavailable, "mail_not_configured", "email delivery is not configured", nil)
		return
	}

	userID := middleware.UserIDFromContext(c)
	auditID := c.Param("id")

	var req emailReportRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.To) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "recipient address is required", nil)
		return
	}

	pdf, audit, err := h.renderReport(c, userID, auditID)
	if err != nil {
		return
	}

	subject := "SOW Compliance Audit Report"
	if audit.Timeline.ProjectName != "" {
		subject += " - " + audit.Timeline.ProjectName
	}
	body := buildEmailBody(audit)

	if err := h.Mail.SendReport(c.Request.Context(), strings.TrimSpace(req.To), subject, body, pdf, "sow-audit-"+auditID+".pdf"); err != nil {
		respond.Error(c, http.StatusBadGateway, "mail_send_failed", "failed to send report email", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"sent": true})
}

// fetchOwned loads an audit and hides other users' audits behind a 404.
func (h *Handler) fetchOwned(c *gin.Context, userID, auditID string) (Audit, error) {
	audit, err := h.Svc.Get(c.Request.Context(), auditID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "audit not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch audit", nil)
		}
		return Audit{}, err
	}
	if audit.UserID != userID {
		respond.Error(c, http.StatusNotFound, "not_found", "audit not found", nil)
		return Audit{}, ErrNotFound
	}
	return audit, nil
}

func (h *Handler) renderReport(c *gin.Context, userID, auditID string) ([]byte, Audit, error) {
	if auditID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "audit id is required", nil)
		return nil, Audit{}, errors.New("audit id is required")
	}

	audit, err := h.fetchOwned(c, userID, auditID)
	if err != nil {
		return nil, Audit{}, err
	}
	if audit.Status != StatusCompleted || audit.Result == nil {
		respond.Error(c, http.StatusConflict, "not_ready", "audit result not ready", nil)
		return nil, Audit{}, ErrReportNotReady
	}

	fileName := ""
	if h.DocRepo != nil {
		if doc, docErr := h.DocRepo.GetByID(c.Request.Context(), userID, audit.DocumentID); docErr == nil {
			fileName = doc.FileName
		}
	}

	input := report.Input{
		ProjectName:     audit.Timeline.ProjectName,
		FileName:        fileName,
		GeneratedAt:     time.Now().UTC(),
		Result:          *audit.Result,
		Recommendations: compliance.Prioritize(*audit.Result),
	}
	if audit.Pricing != nil {
		input.Pricing = *audit.Pricing
	}
	if audit.Schedule != nil {
		input.Schedule = *audit.Schedule
	}

	pdf, err := report.Render(input)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to render report", nil)
		return nil, Audit{}, err
	}
	return pdf, audit, nil
}

func buildEmailBody(audit Audit) string {
	var pricing compliance.PricingReport
	var schedule compliance.ScheduleReport
	if audit.Pricing != nil {
		pricing = *audit.Pricing
	}
	if audit.Schedule != nil {
		schedule = *audit.Schedule
	}
	var result compliance.Result
	if audit.Result != nil {
		result = *audit.Result
	}
	return mailer.ReportBody(audit.Timeline.ProjectName, result, pricing, schedule)
}
