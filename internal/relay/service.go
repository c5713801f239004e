package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/naseer2426/telegram-proxy/internal/geo"
	"github.com/naseer2426/telegram-proxy/internal/telegram"
)

const (
	StatusText = "Telegram Proxy Service is running."

	RouteSendMessage = "sendMessage"
	RouteSendPhoto   = "sendPhoto"

	msgNoPhoto = "No photo provided"

	MsgPhotoTooLarge = "Photo exceeds upload limit"
)

// Sender delivers enriched payloads to the Bot API.
type Sender interface {
	SendMessage(ctx context.Context, requestID, chatID, text string) (json.RawMessage, error)
	SendPhoto(ctx context.Context, requestID, chatID, caption string, photo telegram.InputFile) (json.RawMessage, error)
}

// Entry describes one relay attempt. UpstreamStatus is zero when the Bot API
// was never reached.
type Entry struct {
	RequestID      string
	Route          string
	ClientIP       string
	Country        string
	City           string
	OS             string
	UpstreamStatus int
	Error          string
}

// Recorder persists relay attempts. Failures are logged and ignored.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

type SuccessBody struct {
	Success          bool            `json:"success"`
	TelegramResponse json.RawMessage `json:"telegram_response"`
}

// ErrorBody carries either a message string or the upstream JSON body.
type ErrorBody struct {
	Error any `json:"error"`
}

// Result is what a host adapter renders: a status and a JSON body.
type Result struct {
	Status int
	Body   any
}

func ErrorResult(status int, msg string) Result {
	return Result{Status: status, Body: ErrorBody{Error: msg}}
}

type Options struct {
	ChatID   string
	Locator  geo.Locator
	Sender   Sender
	Recorder Recorder
	Logger   *zap.SugaredLogger
}

// Service is the host-agnostic proxy core shared by the HTTP service and the
// Lambda handler. It holds no per-request state.
type Service struct {
	chatID   string
	locator  geo.Locator
	sender   Sender
	recorder Recorder
	log      *zap.SugaredLogger
}

func NewService(opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{
		chatID:   opts.ChatID,
		locator:  opts.Locator,
		sender:   opts.Sender,
		recorder: opts.Recorder,
		log:      log,
	}
}

// ClientInfo resolves the caller's IP, location and OS hint.
func (s *Service) ClientInfo(ctx context.Context, req *Request) ClientInfo {
	ip := req.ClientIP()
	return ClientInfo{
		IP:       ip,
		OS:       req.OSVersion(),
		Location: s.locator.Lookup(ctx, req.ID, ip),
	}
}

// SendMessage appends the client info block to the text field and forwards it.
func (s *Service) SendMessage(ctx context.Context, req *Request) Result {
	info := s.ClientInfo(ctx, req)
	text := req.Fields[FieldText] + "\n" + info.Block()

	body, err := s.sender.SendMessage(ctx, req.ID, s.chatID, text)
	return s.finish(ctx, RouteSendMessage, req, info, body, err)
}

// SendPhoto appends the client info block to the caption and forwards the
// photo. Without a photo the Bot API is not called.
func (s *Service) SendPhoto(ctx context.Context, req *Request) Result {
	if req.Photo == nil {
		return ErrorResult(http.StatusBadRequest, msgNoPhoto)
	}

	info := s.ClientInfo(ctx, req)
	caption := req.Fields[FieldCaption] + "\n" + info.Block()

	body, err := s.sender.SendPhoto(ctx, req.ID, s.chatID, caption, *req.Photo)
	return s.finish(ctx, RouteSendPhoto, req, info, body, err)
}

func (s *Service) finish(ctx context.Context, route string, req *Request, info ClientInfo, body json.RawMessage, err error) Result {
	entry := Entry{
		RequestID: req.ID,
		Route:     route,
		ClientIP:  info.IP,
		Country:   info.Country,
		City:      info.City,
		OS:        info.OS,
	}

	var res Result
	var apiErr *telegram.APIError
	switch {
	case err == nil:
		res = Result{Status: http.StatusOK, Body: SuccessBody{Success: true, TelegramResponse: body}}
		entry.UpstreamStatus = http.StatusOK
	case errors.As(err, &apiErr):
		s.log.Warnw("telegram rejected relay", "request_id", req.ID, "route", route, "status", apiErr.StatusCode, "error", err)
		res = Result{Status: apiErr.StatusCode, Body: ErrorBody{Error: apiErr.Body}}
		entry.UpstreamStatus = apiErr.StatusCode
		entry.Error = err.Error()
	default:
		s.log.Errorw("error forwarding to telegram", "request_id", req.ID, "route", route, "error", err)
		res = ErrorResult(http.StatusInternalServerError, err.Error())
		entry.Error = err.Error()
	}

	s.record(ctx, entry)
	return res
}

func (s *Service) record(ctx context.Context, entry Entry) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		s.log.Warnw("failed to record relay", "request_id", entry.RequestID, "error", err)
	}
}
