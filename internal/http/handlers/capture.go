package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/signalpost/leadcapture-backend/internal/crm"
	"github.com/signalpost/leadcapture-backend/internal/http/response"
	"github.com/signalpost/leadcapture-backend/internal/platform/logger"
)

type CaptureHandler struct {
	log *logger.Logger
	svc *crm.UpsertService
}

func NewCaptureHandler(log *logger.Logger, svc *crm.UpsertService) *CaptureHandler {
	return &CaptureHandler{log: log.With("handler", "CaptureHandler"), svc: svc}
}

type captureRequest struct {
	Email string `json:"email"`
	Notes string `json:"notes"`
}

// Capture validates the email before the core runs; a missing email never
// reaches the resolver or any remote call.
func (h *CaptureHandler) Capture(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20)

	var req captureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_email", errors.New("email is required"))
		return
	}

	outcome, err := h.svc.Upsert(c.Request.Context(), strings.TrimSpace(req.Email), req.Notes)
	if err != nil {
		h.respondUpsertError(c, err)
		return
	}
	response.RespondOK(c, outcome)
}

func (h *CaptureHandler) respondUpsertError(c *gin.Context, err error) {
	var ce *crm.Error
	if !errors.As(err, &ce) {
		h.log.Error("capture failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "internal_error", err)
		return
	}

	h.log.Error("capture failed",
		"code", string(ce.Code),
		"remote_status", ce.RemoteStatus,
		"remote_body", ce.RemoteBody,
		"error", err,
	)

	switch ce.Code {
	case crm.CodeValidation:
		response.RespondError(c, http.StatusBadRequest, string(ce.Code), err)
	case crm.CodeEngagementCreateFailed:
		// The contact resolved; surface its id so the caller can retry
		// attachment alone.
		response.RespondErrorDetails(c, http.StatusBadGateway, string(ce.Code), err, gin.H{
			"contactId": ce.ContactID,
		})
	default:
		response.RespondError(c, http.StatusBadGateway, string(ce.Code), err)
	}
}
