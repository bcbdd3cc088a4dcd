package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/passgen/internal/config"
	"github.com/hpungsan/passgen/internal/errors"
	"github.com/hpungsan/passgen/internal/generator"
	"github.com/hpungsan/passgen/internal/record"
	"github.com/hpungsan/passgen/internal/store"
	"github.com/hpungsan/passgen/internal/strength"
)

// Handlers holds dependencies for MCP tool handlers.
// The store is not safe for concurrent use, so every handler touching it holds mu.
type Handlers struct {
	mu    sync.Mutex
	store *store.Store
	cfg   *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(s *store.Store, cfg *config.Config) *Handlers {
	return &Handlers{store: s, cfg: cfg}
}

// GenerateRequest represents the arguments for password_generate.
// Nil class flags mean "include".
type GenerateRequest struct {
	Length           *int  `json:"length,omitempty"`
	Uppercase        *bool `json:"uppercase,omitempty"`
	Lowercase        *bool `json:"lowercase,omitempty"`
	Numbers          *bool `json:"numbers,omitempty"`
	Symbols          *bool `json:"symbols,omitempty"`
	ExcludeSimilar   bool  `json:"exclude_similar,omitempty"`
	ExcludeAmbiguous bool  `json:"exclude_ambiguous,omitempty"`
}

// ScoreRequest represents the arguments for password_score.
type ScoreRequest struct {
	Password string `json:"password"`
}

// SaveRequest represents the arguments for password_save.
type SaveRequest struct {
	Password    string `json:"password"`
	Description string `json:"description,omitempty"`
}

// GenerateOutput is returned by password_generate.
type GenerateOutput struct {
	Password string `json:"password"`
	Length   int    `json:"length"`
	strength.Report
}

// ListOutput is returned by password_list.
type ListOutput struct {
	Items   []record.Record `json:"items"`
	Count   int             `json:"count"`
	Warning string          `json:"warning,omitempty"`
}

// ClearOutput is returned by password_clear.
type ClearOutput struct {
	Cleared int `json:"cleared"`
}

// options converts the request into generator options, applying config defaults.
func (r GenerateRequest) options(cfg *config.Config) (generator.Options, error) {
	opts := generator.DefaultOptions()
	opts.Length = cfg.DefaultLength
	if r.Length != nil {
		opts.Length = *r.Length
	}
	if opts.Length < cfg.MinLength || opts.Length > cfg.MaxLength {
		return opts, errors.NewInvalidRequest(fmt.Sprintf("length must be between %d and %d", cfg.MinLength, cfg.MaxLength))
	}
	opts.Uppercase = boolOr(r.Uppercase, true)
	opts.Lowercase = boolOr(r.Lowercase, true)
	opts.Numbers = boolOr(r.Numbers, true)
	opts.Symbols = boolOr(r.Symbols, true)
	opts.ExcludeSimilar = r.ExcludeSimilar
	opts.ExcludeAmbiguous = r.ExcludeAmbiguous
	return opts, nil
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// HandleGenerate handles the password_generate tool.
func (h *Handlers) HandleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var r GenerateRequest
	if err := decode(req, &r); err != nil {
		return errorResult(err), nil
	}

	opts, err := r.options(h.cfg)
	if err != nil {
		return errorResult(err), nil
	}

	pw, err := generator.Generate(opts)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(GenerateOutput{
		Password: pw,
		Length:   record.CountChars(pw),
		Report:   strength.Evaluate(pw),
	})
}

// HandleScore handles the password_score tool.
func (h *Handlers) HandleScore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var r ScoreRequest
	if err := decode(req, &r); err != nil {
		return errorResult(err), nil
	}
	return successResult(strength.Evaluate(r.Password))
}

// HandleList handles the password_list tool.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	items := h.store.Records()
	out := ListOutput{Items: items, Count: len(items)}
	if w := h.store.LoadWarning(); w != nil {
		out.Warning = w.Error()
	}
	return successResult(out)
}

// HandleSave handles the password_save tool.
func (h *Handlers) HandleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var r SaveRequest
	if err := decode(req, &r); err != nil {
		return errorResult(err), nil
	}
	if r.Password == "" {
		return errorResult(errors.NewInvalidRequest("password is required")), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	rec, err := h.store.Append(r.Password, r.Description)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(rec)
}

// HandleClear handles the password_clear tool.
func (h *Handlers) HandleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := h.store.Len()
	if err := h.store.Clear(); err != nil {
		return errorResult(err), nil
	}
	return successResult(ClearOutput{Cleared: n})
}

// decode round-trips the raw arguments through JSON into dst.
func decode(req mcp.CallToolRequest, dst any) error {
	raw, err := json.Marshal(req.GetArguments())
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid arguments: %v", err))
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid arguments: %v", err))
	}
	return nil
}

// errorResult creates an MCP error result from any error.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var pErr *errors.PassgenError
	if stderrors.As(err, &pErr) {
		errorObj := map[string]any{
			"code":    pErr.Code,
			"message": pErr.Message,
			"status":  pErr.Status,
		}
		if pErr.Code != errors.ErrInternal && pErr.Details != nil {
			errorObj["details"] = pErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
