package submit

import (
	"context"

	"github.com/nojima/httpform-go/exchange"
	"github.com/nojima/httpform-go/page"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Fetcher performs one request/response exchange.
type Fetcher interface {
	Fetch(ctx context.Context, req *exchange.Request) (*exchange.Response, error)
}

// Handler submits a form and shows the outcome in its output element.
// It keeps no state between submissions and may run concurrently with
// itself; the last submission to finish owns the output text.
type Handler struct {
	config  Config
	fetcher Fetcher
	output  *page.Element
	logger  *zap.Logger
}

func NewHandler(config Config, doc *page.Document, fetcher Fetcher, logger *zap.Logger) (*Handler, error) {
	if config.Method == "" {
		return nil, errors.New("submit handler needs a method")
	}
	output := doc.GetElementByID(config.OutputID)
	if output == nil {
		return nil, errors.Errorf("no output element with id '%s'", config.OutputID)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		config:  config,
		fetcher: fetcher,
		output:  output,
		logger:  logger.With(zap.String("method", config.Method), zap.String("output", config.OutputID)),
	}, nil
}

// NewPostSubmitter is NewHandler with PostConfig.
func NewPostSubmitter(doc *page.Document, outputID string, fetcher Fetcher, logger *zap.Logger) (*Handler, error) {
	return NewHandler(PostConfig(outputID), doc, fetcher, logger)
}

// NewDeleteSubmitter is NewHandler with DeleteConfig.
func NewDeleteSubmitter(doc *page.Document, outputID string, fetcher Fetcher, logger *zap.Logger) (*Handler, error) {
	return NewHandler(DeleteConfig(outputID), doc, fetcher, logger)
}

func (h *Handler) Config() Config {
	return h.config
}

// HandleSubmit is the page.SubmitListener for the form.
func (h *Handler) HandleSubmit(ctx context.Context, event *page.SubmitEvent) {
	h.Submit(ctx, event.Data)
}

// Submit sends one request built from data and writes either the response
// text or the fixed error message into the output element. Failures are
// logged and never returned.
func (h *Handler) Submit(ctx context.Context, data *page.FormData) {
	req := h.buildRequest(data)
	logger := h.logger.With(zap.String("filename", req.Filename))
	logger.Debug("submitting form")

	resp, err := h.fetcher.Fetch(ctx, req)
	if err != nil {
		logger.Error("form request failed", zap.Error(err))
		h.output.SetErrorText(h.config.ErrorMessage)
		return
	}

	logger.Debug("form request completed", zap.Int("status", resp.StatusCode), zap.Int("length", len(resp.Text)))
	h.output.SetText(resp.Text)
}

func (h *Handler) buildRequest(data *page.FormData) *exchange.Request {
	req := &exchange.Request{
		Method:   h.config.Method,
		Filename: data.Get(h.config.FilenameField),
	}
	if h.config.BodyField != "" {
		body := data.Get(h.config.BodyField)
		req.Body = &body
		req.ContentType = h.config.ContentType
	}
	return req
}
