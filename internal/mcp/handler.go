// Package mcp serves the recommender as MCP tool calls over plain HTTP.
package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"github.com/vbonduro/nutribot/internal/catalog"
	"github.com/vbonduro/nutribot/internal/chat"
	"github.com/vbonduro/nutribot/internal/recommend"
)

const (
	ToolRecommendSnacks = "recommend_snacks"
	ToolListSnacks      = "list_snacks"
)

// ErrInvalidArguments is returned when tool arguments do not decode into the
// tool's parameters.
var ErrInvalidArguments = errors.New("invalid tool arguments")

type RecommendParams struct {
	Message string `json:"message" description:"Free text such as '70kg craving nachos want to lose weight'"`
}

type toolFunc func(*protocol.CallToolRequest) (*protocol.CallToolResult, error)

type Handler struct {
	engine  *recommend.Engine
	catalog *catalog.Catalog
	logger  *slog.Logger
	tools   map[string]toolFunc
}

func NewHandler(engine *recommend.Engine, cat *catalog.Catalog, logger *slog.Logger) *Handler {
	h := &Handler{engine: engine, catalog: cat, logger: logger}
	h.tools = map[string]toolFunc{
		ToolRecommendSnacks: h.handleRecommend,
		ToolListSnacks:      h.handleListSnacks,
	}
	return h
}

// Tools lists the registered tool names.
func (h *Handler) Tools() []string {
	return []string{ToolListSnacks, ToolRecommendSnacks}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	tool, ok := h.tools[req.Name]
	if !ok {
		http.Error(w, fmt.Sprintf("unknown tool: %s", req.Name), http.StatusNotFound)
		return
	}

	result, err := tool(&req)
	if errors.Is(err, chat.ErrEmptyInput) || errors.Is(err, ErrInvalidArguments) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("tool call failed", "tool", req.Name, "error", err)
		http.Error(w, "tool call failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("failed to encode tool result", "tool", req.Name, "error", err)
	}
}

func (h *Handler) handleRecommend(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params RecommendParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	ans, err := chat.Respond(h.engine, params.Message)
	if err != nil {
		return nil, err
	}
	h.logger.Debug("mcp recommendation", "help", ans.Help)
	return jsonResult(ans)
}

func (h *Handler) handleListSnacks(_ *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	return jsonResult(h.catalog.All())
}

// extractParams decodes the loosely typed argument map into target.
func extractParams(req *protocol.CallToolRequest, target any) error {
	data, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}

func jsonResult(v any) (*protocol.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &protocol.CallToolResult{
		Content: []protocol.Content{
			&protocol.TextContent{Type: "text", Text: string(data)},
		},
	}, nil
}
