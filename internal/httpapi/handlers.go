package httpapi

import (
	"errors"
	"net/http"
	"time"

	"gavalink/internal/analytics"
	"gavalink/internal/applications"
	"gavalink/internal/auth"
	"gavalink/internal/broadcast"
	"gavalink/internal/documents"
	"gavalink/internal/payments"
	"gavalink/internal/pinverify"
	"gavalink/internal/returns"
	"gavalink/internal/support"
	"gavalink/internal/voicerequests"
	"gavalink/pkg/logger"
	"gavalink/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth          *auth.Manager
	VoiceRequests *voicerequests.Service
	Returns       *returns.Service
	Payments      *payments.Service
	Documents     *documents.Service
	Applications  *applications.Service
	Support       *support.Service
	Analytics     *analytics.Service
	Broadcast     *broadcast.Service

	// Rdb backs the per-user rate limit on voice request submission.
	Rdb *redis.Client
}

// voiceRequestLimit caps how many requests one user may submit per window.
const (
	voiceRequestLimit  = 10
	voiceRequestWindow = time.Minute
)

// --- Auth ---

type loginRequest struct {
	UserID      string `json:"user_id"`
	TaxpayerPIN string `json:"taxpayer_pin"`
	Role        string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials
// against the taxpayer registry.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, role required"})
		return
	}
	if req.Role == "citizen" && !pinverify.Check(req.TaxpayerPIN).Valid {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "valid taxpayer_pin required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.TaxpayerPIN, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Voice agent requests ---

type createVoiceRequest struct {
	RequestType string                 `json:"request_type"`
	Description string                 `json:"description"`
	Priority    voicerequests.Priority `json:"priority,omitempty"`
}

func (h Handlers) CreateVoiceRequest(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id required"})
		return
	}

	if h.Rdb != nil {
		allowed, err := utils.AllowRequest(c.Request.Context(), h.Rdb, "voice_requests:"+userID, voiceRequestLimit, voiceRequestWindow)
		if err != nil {
			logger.FromGin(c).Warn("rate limit check failed", "err", err)
		} else if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
	}

	var req createVoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	created, err := h.VoiceRequests.Create(c.Request.Context(), voicerequests.CreateRequest{
		UserID:      userID,
		RequestType: req.RequestType,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h Handlers) ListVoiceRequests(c *gin.Context) {
	status := voicerequests.Status(c.Query("status"))
	out, err := h.VoiceRequests.List(c.Request.Context(), status)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": out})
}

type decideVoiceRequest struct {
	Approve      bool   `json:"approve"`
	OfficerNotes string `json:"officer_notes,omitempty"`
}

func (h Handlers) DecideVoiceRequest(c *gin.Context) {
	officerID, _ := auth.UserID(c.Request.Context())
	officerRole, _ := auth.Role(c.Request.Context())

	var req decideVoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	updated, err := h.VoiceRequests.Decide(c.Request.Context(), c.Param("id"), officerID, officerRole, voicerequests.Decision{
		Approve:      req.Approve,
		OfficerNotes: req.OfficerNotes,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// --- Returns ---

func (h Handlers) FileReturn(c *gin.Context) {
	pin, err := auth.TaxpayerPIN(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "taxpayer_pin required"})
		return
	}
	var req returns.FileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	filed, err := h.Returns.File(c.Request.Context(), pin, req)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, filed)
}

func (h Handlers) ListReturns(c *gin.Context) {
	pin, err := auth.TaxpayerPIN(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "taxpayer_pin required"})
		return
	}
	out, err := h.Returns.List(c.Request.Context(), pin)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"returns": out})
}

// AdvanceReturn moves a filed return through processing by an officer.
func (h Handlers) AdvanceReturn(c *gin.Context) {
	var req struct {
		Status returns.Status `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	out, err := h.Returns.Advance(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- Payments ---

func (h Handlers) InitiatePayment(c *gin.Context) {
	pin, err := auth.TaxpayerPIN(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "taxpayer_pin required"})
		return
	}
	var req payments.InitiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := h.Payments.Initiate(c.Request.Context(), pin, req)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, p)
}

func (h Handlers) ListPayments(c *gin.Context) {
	pin, err := auth.TaxpayerPIN(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "taxpayer_pin required"})
		return
	}
	out, err := h.Payments.List(c.Request.Context(), pin)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": out})
}

// ConfirmPayment simulates the M-Pesa settlement callback.
func (h Handlers) ConfirmPayment(c *gin.Context) {
	p, err := h.Payments.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// FailPayment simulates the M-Pesa failure callback (timeout or cancelled
// STK prompt).
func (h Handlers) FailPayment(c *gin.Context) {
	p, err := h.Payments.Fail(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// --- Documents ---

func (h Handlers) UploadDocument(c *gin.Context) {
	pin, err := auth.TaxpayerPIN(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "taxpayer_pin required"})
		return
	}
	var req documents.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	d, err := h.Documents.Upload(c.Request.Context(), pin, req)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h Handlers) ListDocuments(c *gin.Context) {
	pin, err := auth.TaxpayerPIN(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "taxpayer_pin required"})
		return
	}
	out, err := h.Documents.List(c.Request.Context(), pin)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": out})
}

func (h Handlers) ListPendingDocuments(c *gin.Context) {
	out, err := h.Documents.ListPending(c.Request.Context())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": out})
}

type stampRequest struct {
	StampType string `json:"stamp_type"`
}

func (h Handlers) StampDocument(c *gin.Context) {
	officerID, _ := auth.UserID(c.Request.Context())
	officerRole, _ := auth.Role(c.Request.Context())

	var req stampRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	d, err := h.Documents.Stamp(c.Request.Context(), c.Param("id"), officerID, officerRole, req.StampType)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h Handlers) StampAllDocuments(c *gin.Context) {
	officerID, _ := auth.UserID(c.Request.Context())
	officerRole, _ := auth.Role(c.Request.Context())

	var req stampRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	stamped, err := h.Documents.StampAllPending(c.Request.Context(), officerID, officerRole, req.StampType)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stamped": stamped})
}

func (h Handlers) VerifyDocument(c *gin.Context) {
	ok, err := h.Documents.Verify(c.Request.Context(), c.Param("id"), c.Query("serial"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": ok})
}

// --- Applications ---

func (h Handlers) SubmitApplication(c *gin.Context) {
	pin, err := auth.TaxpayerPIN(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "taxpayer_pin required"})
		return
	}
	var req applications.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	a, err := h.Applications.Submit(c.Request.Context(), pin, req)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h Handlers) ListApplications(c *gin.Context) {
	pin, err := auth.TaxpayerPIN(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "taxpayer_pin required"})
		return
	}
	out, err := h.Applications.List(c.Request.Context(), pin)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": out})
}

type transitionRequest struct {
	Status applications.Status `json:"status"`
	Note   string              `json:"note,omitempty"`
}

func (h Handlers) TransitionApplication(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	a, err := h.Applications.Transition(c.Request.Context(), c.Param("id"), req.Status, req.Note)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// --- Support ---

func (h Handlers) CreateTicket(c *gin.Context) {
	pin, err := auth.TaxpayerPIN(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "taxpayer_pin required"})
		return
	}
	var req support.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	ticket, err := h.Support.Create(c.Request.Context(), pin, req)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (h Handlers) ListTickets(c *gin.Context) {
	pin, err := auth.TaxpayerPIN(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "taxpayer_pin required"})
		return
	}
	out, err := h.Support.List(c.Request.Context(), pin)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": out})
}

func (h Handlers) ListOpenTickets(c *gin.Context) {
	out, err := h.Support.ListOpen(c.Request.Context())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": out})
}

type ticketStatusRequest struct {
	Status support.Status `json:"status"`
}

func (h Handlers) UpdateTicketStatus(c *gin.Context) {
	var req ticketStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	ticket, err := h.Support.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// --- Analytics ---

func (h Handlers) AnalyticsOverview(c *gin.Context) {
	r, err := parseRange(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.Analytics.Overview(c.Request.Context(), r)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func parseRange(c *gin.Context) (analytics.TimeRange, error) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		return analytics.TimeRange{}, errors.New("from must be RFC3339")
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		return analytics.TimeRange{}, errors.New("to must be RFC3339")
	}
	return analytics.TimeRange{From: from, To: to}, nil
}

// --- PIN verification ---

type bulkPINRequest struct {
	PINs string `json:"pins"`
}

func (h Handlers) BulkVerifyPINs(c *gin.Context) {
	var req bulkPINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	results := pinverify.CheckBulk(req.PINs)
	if results == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "at least one PIN required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// --- Broadcast ---

func (h Handlers) SendBroadcast(c *gin.Context) {
	officerID, _ := auth.UserID(c.Request.Context())
	officerRole, _ := auth.Role(c.Request.Context())

	var req broadcast.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	b, err := h.Broadcast.Send(c.Request.Context(), officerID, officerRole, req)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, b)
}

// abortWithServiceError maps package sentinel errors onto HTTP statuses.
func abortWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, voicerequests.ErrNotFound),
		errors.Is(err, returns.ErrNotFound),
		errors.Is(err, payments.ErrNotFound),
		errors.Is(err, documents.ErrNotFound),
		errors.Is(err, applications.ErrNotFound),
		errors.Is(err, support.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, voicerequests.ErrAlreadyDecided),
		errors.Is(err, returns.ErrDuplicatePeriod),
		errors.Is(err, payments.ErrNotPending),
		errors.Is(err, documents.ErrAlreadyStamped),
		errors.Is(err, applications.ErrClosed),
		errors.Is(err, support.ErrTicketClosed):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, voicerequests.ErrInvalidArgument),
		errors.Is(err, returns.ErrInvalidArgument),
		errors.Is(err, payments.ErrInvalidArgument),
		errors.Is(err, payments.ErrInvalidPhone),
		errors.Is(err, documents.ErrInvalidArgument),
		errors.Is(err, applications.ErrInvalidArgument),
		errors.Is(err, support.ErrInvalidArgument),
		errors.Is(err, broadcast.ErrInvalidArgument),
		errors.Is(err, analytics.ErrInvalidRequest):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.FromGin(c).Error("request failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
