package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/xskcdf/Aquiis-sub005/internal/application/service"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/entity"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/workflow"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers contains all HTTP request handlers
type Handlers struct {
	services Services
	logger   Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, logger Logger) *Handlers {
	return &Handlers{
		services: services,
		logger:   logger,
	}
}

// Response is the envelope used by endpoints that are not workflow operations
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ReasonRequest carries the free-text reason some transitions take
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// FeeRequest records an application fee payment
type FeeRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// ScheduleTourRequest books a property showing
type ScheduleTourRequest struct {
	ProspectiveTenantID string    `json:"prospective_tenant_id"`
	PropertyID          string    `json:"property_id"`
	ScheduledOn         time.Time `json:"scheduled_on"`
}

// FeedbackRequest carries tour feedback
type FeedbackRequest struct {
	Feedback string `json:"feedback"`
}

// NotesRequest carries the tenant's response notes on a lease offer
type NotesRequest struct {
	Notes string `json:"notes"`
}

// DividendChoiceRequest records how a tenant wants their dividend paid
type DividendChoiceRequest struct {
	PaymentMethod workflow.PaymentMethod `json:"payment_method"`
}

// StatusFor maps a result kind onto an HTTP status code
func StatusFor(kind workflow.Kind) int {
	switch kind {
	case workflow.KindSucceeded:
		return http.StatusOK
	case workflow.KindRejected:
		return http.StatusUnprocessableEntity
	case workflow.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func render(c *gin.Context, res workflow.Result, body any) {
	c.JSON(StatusFor(res.Kind), body)
}

func renderResult(c *gin.Context, res workflow.Result) {
	render(c, res, res)
}

// bind decodes the JSON body into dst. An empty body is accepted when optional is set.
func (h *Handlers) bind(c *gin.Context, dst any, optional bool) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return true
		}
		h.logger.Error("Invalid request body", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusBadRequest, workflow.Fail("Invalid request body", err.Error()))
		return false
	}
	return true
}

func (h *Handlers) year(c *gin.Context) (int, bool) {
	raw := c.Param("year")
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1 {
		h.logger.Error("Invalid pool year", "year", raw)
		c.JSON(http.StatusBadRequest, workflow.Fail(fmt.Sprintf("Invalid year: %s", raw)))
		return 0, false
	}
	return year, true
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// ListProperties handles GET /api/v1/properties
func (h *Handlers) ListProperties(c *gin.Context) {
	res := h.services.Directory.ListProperties(c.Request.Context())
	render(c, res.Result, res)
}

// CreateProperty handles POST /api/v1/properties
func (h *Handlers) CreateProperty(c *gin.Context) {
	var req service.CreatePropertyRequest
	if !h.bind(c, &req, false) {
		return
	}
	res := h.services.Directory.CreateProperty(c.Request.Context(), req)
	render(c, res.Result, res)
}

// ListProspects handles GET /api/v1/prospects
func (h *Handlers) ListProspects(c *gin.Context) {
	res := h.services.Directory.ListProspects(c.Request.Context())
	render(c, res.Result, res)
}

// CreateProspect handles POST /api/v1/prospects
func (h *Handlers) CreateProspect(c *gin.Context) {
	var req service.CreateProspectRequest
	if !h.bind(c, &req, false) {
		return
	}
	res := h.services.Directory.CreateProspect(c.Request.Context(), req)
	render(c, res.Result, res)
}

// GetSettings handles GET /api/v1/settings
func (h *Handlers) GetSettings(c *gin.Context) {
	res := h.services.Directory.GetSettings(c.Request.Context())
	render(c, res.Result, res)
}

// UpdateSettings handles PUT /api/v1/settings
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var req entity.OrganizationSettings
	if !h.bind(c, &req, false) {
		return
	}
	res := h.services.Directory.UpdateSettings(c.Request.Context(), req)
	render(c, res.Result, res)
}

// ScheduleTour handles POST /api/v1/tours
func (h *Handlers) ScheduleTour(c *gin.Context) {
	var req ScheduleTourRequest
	if !h.bind(c, &req, false) {
		return
	}
	res := h.services.Tours.ScheduleTour(c.Request.Context(), req.ProspectiveTenantID, req.PropertyID, req.ScheduledOn)
	render(c, res.Result, res)
}

// ListTours handles GET /api/v1/prospects/:id/tours
func (h *Handlers) ListTours(c *gin.Context) {
	res := h.services.Tours.ListTours(c.Request.Context(), c.Param("id"))
	render(c, res.Result, res)
}

// CompleteTour handles POST /api/v1/tours/:id/complete
func (h *Handlers) CompleteTour(c *gin.Context) {
	var req FeedbackRequest
	if !h.bind(c, &req, true) {
		return
	}
	renderResult(c, h.services.Tours.CompleteTour(c.Request.Context(), c.Param("id"), req.Feedback))
}

// CancelTour handles POST /api/v1/tours/:id/cancel
func (h *Handlers) CancelTour(c *gin.Context) {
	var req ReasonRequest
	if !h.bind(c, &req, true) {
		return
	}
	renderResult(c, h.services.Tours.CancelTour(c.Request.Context(), c.Param("id"), req.Reason))
}

// MarkTourNoShow handles POST /api/v1/tours/:id/no-show
func (h *Handlers) MarkTourNoShow(c *gin.Context) {
	renderResult(c, h.services.Tours.MarkTourNoShow(c.Request.Context(), c.Param("id")))
}

// SubmitApplication handles POST /api/v1/applications
func (h *Handlers) SubmitApplication(c *gin.Context) {
	var req service.SubmitApplicationRequest
	if !h.bind(c, &req, false) {
		return
	}
	res := h.services.Applications.SubmitApplication(c.Request.Context(), req)
	render(c, res.Result, res)
}

// GetApplicationWorkflowState handles GET /api/v1/applications/:id
func (h *Handlers) GetApplicationWorkflowState(c *gin.Context) {
	res := h.services.Applications.GetApplicationWorkflowState(c.Request.Context(), c.Param("id"))
	render(c, res.Result, res)
}

// MarkApplicationFeePaid handles POST /api/v1/applications/:id/fee
func (h *Handlers) MarkApplicationFeePaid(c *gin.Context) {
	var req FeeRequest
	if !h.bind(c, &req, false) {
		return
	}
	renderResult(c, h.services.Applications.MarkApplicationFeePaid(c.Request.Context(), c.Param("id"), req.Amount))
}

// MarkUnderReview handles POST /api/v1/applications/:id/review
func (h *Handlers) MarkUnderReview(c *gin.Context) {
	renderResult(c, h.services.Applications.MarkUnderReview(c.Request.Context(), c.Param("id")))
}

// InitiateScreening handles POST /api/v1/applications/:id/screening
func (h *Handlers) InitiateScreening(c *gin.Context) {
	var req service.ScreeningRequest
	if !h.bind(c, &req, false) {
		return
	}
	res := h.services.Applications.InitiateScreening(c.Request.Context(), c.Param("id"), req)
	render(c, res.Result, res)
}

// CompleteScreening handles POST /api/v1/applications/:id/screening/complete
func (h *Handlers) CompleteScreening(c *gin.Context) {
	var req service.ScreeningOutcome
	if !h.bind(c, &req, false) {
		return
	}
	renderResult(c, h.services.Applications.CompleteScreening(c.Request.Context(), c.Param("id"), req))
}

// ApproveApplication handles POST /api/v1/applications/:id/approve
func (h *Handlers) ApproveApplication(c *gin.Context) {
	renderResult(c, h.services.Applications.ApproveApplication(c.Request.Context(), c.Param("id")))
}

// DenyApplication handles POST /api/v1/applications/:id/deny
func (h *Handlers) DenyApplication(c *gin.Context) {
	var req ReasonRequest
	if !h.bind(c, &req, true) {
		return
	}
	renderResult(c, h.services.Applications.DenyApplication(c.Request.Context(), c.Param("id"), req.Reason))
}

// WithdrawApplication handles POST /api/v1/applications/:id/withdraw
func (h *Handlers) WithdrawApplication(c *gin.Context) {
	var req ReasonRequest
	if !h.bind(c, &req, true) {
		return
	}
	renderResult(c, h.services.Applications.WithdrawApplication(c.Request.Context(), c.Param("id"), req.Reason))
}

// ExpireApplication handles POST /api/v1/applications/:id/expire
func (h *Handlers) ExpireApplication(c *gin.Context) {
	renderResult(c, h.services.Applications.ExpireApplication(c.Request.Context(), c.Param("id")))
}

// GenerateLeaseOffer handles POST /api/v1/applications/:id/lease-offer
func (h *Handlers) GenerateLeaseOffer(c *gin.Context) {
	var req service.LeaseTerms
	if !h.bind(c, &req, false) {
		return
	}
	res := h.services.LeaseOffers.GenerateLeaseOffer(c.Request.Context(), c.Param("id"), req)
	render(c, res.Result, res)
}

// GetLeaseOffer handles GET /api/v1/lease-offers/:id
func (h *Handlers) GetLeaseOffer(c *gin.Context) {
	res := h.services.LeaseOffers.GetLeaseOffer(c.Request.Context(), c.Param("id"))
	render(c, res.Result, res)
}

// AcceptLeaseOffer handles POST /api/v1/lease-offers/:id/accept
func (h *Handlers) AcceptLeaseOffer(c *gin.Context) {
	var req NotesRequest
	if !h.bind(c, &req, true) {
		return
	}
	res := h.services.LeaseOffers.AcceptLeaseOffer(c.Request.Context(), c.Param("id"), req.Notes)
	render(c, res.Result, res)
}

// DeclineLeaseOffer handles POST /api/v1/lease-offers/:id/decline
func (h *Handlers) DeclineLeaseOffer(c *gin.Context) {
	var req ReasonRequest
	if !h.bind(c, &req, true) {
		return
	}
	renderResult(c, h.services.LeaseOffers.DeclineLeaseOffer(c.Request.Context(), c.Param("id"), req.Reason))
}

// WithdrawLeaseOffer handles POST /api/v1/lease-offers/:id/withdraw
func (h *Handlers) WithdrawLeaseOffer(c *gin.Context) {
	var req ReasonRequest
	if !h.bind(c, &req, true) {
		return
	}
	renderResult(c, h.services.LeaseOffers.WithdrawLeaseOffer(c.Request.Context(), c.Param("id"), req.Reason))
}

// ExpireLeaseOffer handles POST /api/v1/lease-offers/:id/expire
func (h *Handlers) ExpireLeaseOffer(c *gin.Context) {
	renderResult(c, h.services.LeaseOffers.ExpireLeaseOffer(c.Request.Context(), c.Param("id")))
}

// GetPool handles GET /api/v1/pools/:year
func (h *Handlers) GetPool(c *gin.Context) {
	year, ok := h.year(c)
	if !ok {
		return
	}
	res := h.services.Deposits.GetPool(c.Request.Context(), year)
	render(c, res.Result, res)
}

// ListDividends handles GET /api/v1/pools/:year/dividends
func (h *Handlers) ListDividends(c *gin.Context) {
	year, ok := h.year(c)
	if !ok {
		return
	}
	res := h.services.Deposits.ListDividends(c.Request.Context(), year)
	render(c, res.Result, res)
}

// CalculateDividends handles POST /api/v1/pools/:year/calculate
func (h *Handlers) CalculateDividends(c *gin.Context) {
	year, ok := h.year(c)
	if !ok {
		return
	}
	var req service.PoolEarnings
	if !h.bind(c, &req, false) {
		return
	}
	res := h.services.Deposits.CalculateDividends(c.Request.Context(), year, req)
	render(c, res.Result, res)
}

// DistributeDividends handles POST /api/v1/pools/:year/distribute
func (h *Handlers) DistributeDividends(c *gin.Context) {
	year, ok := h.year(c)
	if !ok {
		return
	}
	res := h.services.Deposits.DistributeDividends(c.Request.Context(), year)
	render(c, res.Result, res)
}

// ClosePool handles POST /api/v1/pools/:year/close
func (h *Handlers) ClosePool(c *gin.Context) {
	year, ok := h.year(c)
	if !ok {
		return
	}
	renderResult(c, h.services.Deposits.ClosePool(c.Request.Context(), year))
}

// ExportDividendReport handles GET /api/v1/pools/:year/report
func (h *Handlers) ExportDividendReport(c *gin.Context) {
	year, ok := h.year(c)
	if !ok {
		return
	}

	// Buffered so a failure can still be reported as JSON
	var buf bytes.Buffer
	res := h.services.Deposits.ExportDividendReport(c.Request.Context(), year, &buf)
	if !res.Success {
		renderResult(c, res)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="dividends-%d.xlsx"`, year))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// RecordDividendChoice handles POST /api/v1/dividends/:id/choice
func (h *Handlers) RecordDividendChoice(c *gin.Context) {
	var req DividendChoiceRequest
	if !h.bind(c, &req, false) {
		return
	}
	renderResult(c, h.services.Deposits.RecordDividendChoice(c.Request.Context(), c.Param("id"), req.PaymentMethod))
}
