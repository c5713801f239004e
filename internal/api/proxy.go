package api

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/naseer2426/telegram-proxy/internal/relay"
)

type ProxyHandler struct {
	Relay          *relay.Service
	Log            *zap.SugaredLogger
	MaxUploadBytes int64
}

func (p *ProxyHandler) Status(c *gin.Context) {
	c.String(http.StatusOK, relay.StatusText)
}

func (p *ProxyHandler) SendMessage(c *gin.Context) {
	req, err := p.parseJSON(c)
	if err != nil {
		p.Log.Infow("rejecting sendMessage body", "request_id", requestid.Get(c), "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": relay.ErrInvalidJSON.Error()})
		return
	}

	res := p.Relay.SendMessage(c.Request.Context(), req)
	c.JSON(res.Status, res.Body)
}

func (p *ProxyHandler) SendPhoto(c *gin.Context) {
	req, err := p.parseMultipart(c)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": relay.MsgPhotoTooLarge})
		return
	}
	if err != nil {
		p.Log.Errorw("read photo upload failed", "request_id", requestid.Get(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	res := p.Relay.SendPhoto(c.Request.Context(), req)
	c.JSON(res.Status, res.Body)
}

func (p *ProxyHandler) baseRequest(c *gin.Context) *relay.Request {
	return &relay.Request{
		ID:         requestid.Get(c),
		Header:     c.Request.Header,
		RemoteAddr: c.Request.RemoteAddr,
		Fields:     map[string]string{},
	}
}

func (p *ProxyHandler) parseJSON(c *gin.Context) (*relay.Request, error) {
	bodyBytes, err := c.GetRawData()
	if err != nil {
		return nil, errors.New("failed to read body")
	}
	fields, err := relay.FieldsFromJSON(bodyBytes)
	if err != nil {
		return nil, err
	}
	req := p.baseRequest(c)
	req.Fields = fields
	return req, nil
}

// parseMultipart only fails for oversized uploads or unreadable files. A
// missing or malformed form is left for the relay to answer with "No photo
// provided".
func (p *ProxyHandler) parseMultipart(c *gin.Context) (*relay.Request, error) {
	req := p.baseRequest(c)
	if p.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, p.MaxUploadBytes)
	}
	form, err := c.MultipartForm()
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return nil, err
	}
	if err != nil {
		p.Log.Debugw("no multipart form", "request_id", req.ID, "error", err)
		return req, nil
	}
	fields, photo, err := relay.FromMultipartForm(form)
	if err != nil {
		return nil, err
	}
	req.Fields = fields
	req.Photo = photo
	return req, nil
}
