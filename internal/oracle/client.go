package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ParryPee/EzCensor/constants"
	"github.com/ParryPee/EzCensor/internal/common"
)

// Config for the Ollama-backed analyzer.
type Config struct {
	BaseURL string // default http://localhost:11434
	Model   string // e.g. "llama3.2"

	// Temperature and TopP are floored at 0.1 and 0.9: zero means
	// "unset" here, so fully greedy sampling is not expressible. The
	// analysis prompt is parsed mechanically and needs the same shape
	// across calls, never argmax determinism.
	Temperature float32
	TopP        float32

	Timeout time.Duration // http client timeout
}

// Client implements Analyzer against an Ollama chat endpoint.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.2"
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.1
	}
	if cfg.TopP <= 0 {
		cfg.TopP = 0.9
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Analyze sends text to the model and shapes its reply into an
// AnalysisResult. Transport failures degrade to a "no PII" result with
// a diagnostic; malformed replies degrade to found_pii=true with the
// raw output kept for review. Neither propagates an error.
func (c *Client) Analyze(ctx context.Context, text string) AnalysisResult {
	// reuse the caller's pipeline run ID so oracle events correlate with
	// the rest of the run's log lines
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
	}
	start := time.Now()

	c.logger.Info("oracle.analyze.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(text),
	)

	body := map[string]any{
		"model":  c.cfg.Model,
		"stream": false,
		"messages": []map[string]any{
			{"role": "user", "content": buildAnalysisPrompt(text)},
		},
		"options": map[string]any{
			"temperature": c.cfg.Temperature,
			"top_p":       c.cfg.TopP,
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/api/chat"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.logger.Error("oracle.analyze.transport_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return AnalysisResult{
			FoundPII:       false,
			Status:         StatusUnreachable,
			Diagnostic:     err.Error(),
			Recommendation: "Analysis failed - manual review required",
		}
	}

	var chat struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(raw, &chat); err != nil {
		c.logger.Error("oracle.analyze.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return degraded(string(raw))
	}

	result, ok := parseAnalysis(chat.Message.Content)
	if !ok {
		c.logger.Warn("oracle.analyze.malformed_response",
			"req_id", rid, "content_len", len(chat.Message.Content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return degraded(chat.Message.Content)
	}

	c.logger.Info("oracle.analyze.ok",
		"req_id", rid,
		"found_pii", result.FoundPII,
		"findings", len(result.Findings),
		"categories", len(result.Categories),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result
}

func degraded(rawContent string) AnalysisResult {
	return AnalysisResult{
		FoundPII:       true,
		Categories:     []constants.Category{constants.Unknown},
		Status:         StatusDegraded,
		RawFallback:    rawContent,
		Recommendation: "Manual review recommended",
	}
}

// parseAnalysis turns raw model output into an AnalysisResult. The
// lenient pre-pass unwraps code fences and surrounding prose; the
// schema check rejects structurally wrong replies before decoding.
func parseAnalysis(content string) (AnalysisResult, bool) {
	doc := ExtractJSONObject(content)
	if doc == "" {
		return AnalysisResult{}, false
	}
	if err := ValidateJSONAgainstSchema(BuildAnalysisJSONSchema(), []byte(doc)); err != nil {
		return AnalysisResult{}, false
	}

	var wire struct {
		FoundPII   bool     `json:"found_pii"`
		Categories []string `json:"categories"`
		Details    []struct {
			Type       string  `json:"type"`
			Text       string  `json:"text"`
			Confidence float64 `json:"confidence"`
			StartPos   *int    `json:"start_pos"`
			EndPos     *int    `json:"end_pos"`
		} `json:"details"`
		Recommendation string `json:"recommendation"`
	}
	if err := json.Unmarshal([]byte(doc), &wire); err != nil {
		return AnalysisResult{}, false
	}

	result := AnalysisResult{
		FoundPII:       wire.FoundPII,
		Recommendation: wire.Recommendation,
		Status:         StatusOK,
	}
	seen := make(map[constants.Category]bool)
	for _, c := range wire.Categories {
		cat, _ := constants.Canonicalize(c)
		if !seen[cat] {
			seen[cat] = true
			result.Categories = append(result.Categories, cat)
		}
	}
	if !wire.FoundPII {
		// honor the invariant even when the model still lists details
		return result, true
	}
	for _, d := range wire.Details {
		cat, _ := constants.Canonicalize(d.Type)
		result.Findings = append(result.Findings, Finding{
			Category:   cat,
			Text:       d.Text,
			Confidence: d.Confidence,
			StartPos:   d.StartPos,
			EndPos:     d.EndPos,
		})
	}
	return result, true
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.logger.Warn("ollama response body close error", "error", cerr)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ollama status %d: %s", resp.StatusCode, truncate(buf.String(), 512))
	}
	return buf.Bytes(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
