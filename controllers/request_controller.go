package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Batussaii/BANT3D/sender"
	"github.com/Batussaii/BANT3D/services"
)

// maxAttachmentSize caps uploaded attachments at 10MB.
const maxAttachmentSize = 10 << 20

type RequestController struct {
	svc    services.ContactService
	logger *zap.Logger
}

func NewRequestController(svc services.ContactService, logger *zap.Logger) *RequestController {
	return &RequestController{svc: svc, logger: logger}
}

// SubmitRequest handles POST /api/request: a contact/quote form with an
// optional single attachment.
func (rc *RequestController) SubmitRequest(c *gin.Context) {
	req := &services.ContactRequest{
		Name:    c.PostForm("name"),
		Email:   c.PostForm("email"),
		Service: c.PostForm("service"),
		Budget:  c.PostForm("budget"),
		Details: c.PostForm("details"),
	}

	fileHeader, err := c.FormFile("attachment")
	if err == nil && fileHeader != nil {
		if fileHeader.Size > maxAttachmentSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "El archivo adjunto supera los 10MB."})
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			rc.logger.Error("attachment open failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo enviar la solicitud."})
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxAttachmentSize+1))
		if err != nil || int64(len(data)) > maxAttachmentSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "El archivo adjunto supera los 10MB."})
			return
		}
		req.Attachment = &sender.Attachment{Filename: fileHeader.Filename, Data: data}
	}

	if svcErr := rc.svc.SendContactRequest(c.Request.Context(), req); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// SubmitColorRequest handles POST /api/color-request.
func (rc *RequestController) SubmitColorRequest(c *gin.Context) {
	req := &services.ColorRequest{
		Product: c.PostForm("product"),
		Name:    c.PostForm("name"),
		Phone:   c.PostForm("phone"),
		Email:   c.PostForm("email"),
		Color:   c.PostForm("color"),
		Notes:   c.PostForm("notes"),
	}

	if svcErr := rc.svc.SendColorRequest(c.Request.Context(), req); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
