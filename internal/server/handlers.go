package server

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"

	"support-bot/internal/bot"
	"support-bot/internal/botlog"
	"support-bot/internal/config"
	"support-bot/internal/embedding"
	"support-bot/internal/models"
	"support-bot/internal/qa"
	"support-bot/internal/telemetry"
)

// BotHandler serves the upload-and-ask API. Uploads take the write lock
// while rebuilding the index; queries share the read side, so the index
// stays read-only while in use.
type BotHandler struct {
	cfg      *config.Config
	embedder embedding.Embedder
	answerer qa.Answerer
	log      *botlog.Logger
	metrics  *telemetry.Metrics

	mu       sync.RWMutex
	doc      *models.Document
	bot      *bot.Bot
	sections int
}

// NewBotHandler creates the handler; call Reload before serving queries.
func NewBotHandler(cfg *config.Config, embedder embedding.Embedder, answerer qa.Answerer, lg *botlog.Logger, metrics *telemetry.Metrics) *BotHandler {
	if lg == nil {
		lg = botlog.Discard()
	}
	return &BotHandler{cfg: cfg, embedder: embedder, answerer: answerer, log: lg, metrics: metrics}
}

// Register mounts the API routes on the given group.
func (h *BotHandler) Register(g *echo.Group) {
	g.POST("/documents", h.upload)
	g.GET("/document", h.document)
	g.POST("/ask", h.ask)
}

// Reload rebuilds the bot from the document at path. Loading a document
// rebuilds the whole index; there is no incremental path.
func (h *BotHandler) Reload(ctx context.Context, path string) error {
	doc, ix, err := bot.LoadAndIndex(ctx, h.log, h.embedder, path, h.cfg.Retrieval.SimilarityThreshold)
	if err != nil {
		return err
	}

	b := bot.New(ix, h.answerer, h.log, bot.Options{
		ConfidenceThreshold: h.cfg.Feedback.ConfidenceThreshold,
		MaxIterations:       h.cfg.Feedback.MaxIterations,
		Metrics:             h.metrics,
	})

	h.mu.Lock()
	h.doc = doc
	h.bot = b
	h.sections = ix.Len()
	h.mu.Unlock()
	return nil
}

type uploadResponse struct {
	Document *models.Document `json:"document"`
	Sections int              `json:"sections"`
}

// upload accepts a .txt or .pdf document, saves it under the data dir and
// rebuilds the index from it.
func (h *BotHandler) upload(c echo.Context) error {
	file, err := c.FormFile("document")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "document file required")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".txt" && ext != ".pdf" {
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported file format, use .txt or .pdf")
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer src.Close()

	if err := os.MkdirAll(h.cfg.Document.DataDir, 0o755); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	dstPath := filepath.Join(h.cfg.Document.DataDir, "uploaded_doc"+ext)
	dst, err := os.Create(dstPath)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := dst.Close(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.Reload(c.Request().Context(), dstPath); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	h.mu.RLock()
	resp := uploadResponse{Document: h.doc, Sections: h.sections}
	h.mu.RUnlock()
	return c.JSON(http.StatusCreated, resp)
}

// document reports metadata of the active document.
func (h *BotHandler) document(c echo.Context) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.doc == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no document loaded")
	}
	return c.JSON(http.StatusOK, uploadResponse{Document: h.doc, Sections: h.sections})
}

type askRequest struct {
	Query string `json:"query"`
}

type askResponse struct {
	Query    string            `json:"query"`
	Answer   string            `json:"answer"`
	Verdicts []models.Verdict  `json:"verdicts"`
	Trace    []models.Exchange `json:"trace"`
}

// ask runs the full refinement loop for one query and returns the final
// answer along with the per-iteration trace, mirroring the console demo's
// initial/updated/final output.
func (h *BotHandler) ask(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query required")
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.bot == nil {
		return echo.NewHTTPError(http.StatusConflict, "no document loaded")
	}

	result, err := h.bot.Process(c.Request().Context(), req.Query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, askResponse{
		Query:    result.Query,
		Answer:   result.Final.Text,
		Verdicts: result.Verdicts(),
		Trace:    result.Exchanges,
	})
}
