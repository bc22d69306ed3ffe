// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Tool is a named operation the server exposes over tools/list and
// tools/call. Handler receives the raw JSON arguments from the call
// and returns the text to embed in the result's content block. A
// handler error becomes a tool-level error result (IsError true), not
// a JSON-RPC error.
type Tool struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Annotations *ToolAnnotations
	Handler     func(ctx context.Context, args json.RawMessage) (string, error)
}

// ServerConfig configures a Server.
type ServerConfig struct {
	// Name is reported as the server name during initialization.
	Name string

	// Version is reported as the server version during initialization.
	Version string

	// Tools is the static tool table. Order is preserved in
	// tools/list responses.
	Tools []Tool

	// Logger receives diagnostic output. Must not write to the
	// server's output stream. If nil, logging is discarded.
	Logger *slog.Logger
}

// Server speaks MCP over newline-delimited JSON-RPC 2.0 on a byte
// stream, conventionally stdin/stdout. It is single-threaded: requests
// are handled one at a time in arrival order.
type Server struct {
	name    string
	version string
	tools   []Tool
	byName  map[string]*Tool
	logger  *slog.Logger

	mu          sync.Mutex
	initialized bool
}

// NewServer builds a Server from the config. Tool names must be
// unique.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("mcp: server name is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		name:    cfg.Name,
		version: cfg.Version,
		tools:   cfg.Tools,
		byName:  make(map[string]*Tool, len(cfg.Tools)),
		logger:  logger,
	}
	for i := range s.tools {
		tool := &s.tools[i]
		if tool.Name == "" {
			return nil, fmt.Errorf("mcp: tool %d has no name", i)
		}
		if tool.Handler == nil {
			return nil, fmt.Errorf("mcp: tool %q has no handler", tool.Name)
		}
		if _, exists := s.byName[tool.Name]; exists {
			return nil, fmt.Errorf("mcp: duplicate tool name %q", tool.Name)
		}
		s.byName[tool.Name] = tool
	}
	return s, nil
}

// Run reads newline-delimited JSON-RPC requests from input and writes
// responses to output until input is exhausted or ctx is canceled.
// Malformed lines produce JSON-RPC error responses rather than
// terminating the loop.
func (s *Server) Run(ctx context.Context, input io.Reader, output io.Writer) error {
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("unparseable request line", "error", err)
			if err := writeResponse(output, errorResponse(nil, codeParseError, "parse error: "+err.Error())); err != nil {
				return fmt.Errorf("mcp: write response: %w", err)
			}
			continue
		}

		resp := s.handle(ctx, &req)
		if resp == nil {
			continue
		}
		if err := writeResponse(output, resp); err != nil {
			return fmt.Errorf("mcp: write response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("mcp: read input: %w", err)
	}
	return nil
}

// handle dispatches a single request. It returns nil for
// notifications, which receive no response.
func (s *Server) handle(ctx context.Context, req *request) *response {
	if req.JSONRPC != "2.0" {
		if req.isNotification() {
			return nil
		}
		return errorResponse(req.ID, codeInvalidRequest, "jsonrpc must be \"2.0\"")
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		s.mu.Lock()
		s.initialized = true
		s.mu.Unlock()
		return nil
	case "ping":
		if req.isNotification() {
			return nil
		}
		return &response{JSONRPC: "2.0", ID: req.ID, Result: struct{}{}}
	case "tools/list":
		if !s.isInitialized() {
			return errorResponse(req.ID, codeInvalidRequest, "server not initialized")
		}
		return s.handleToolsList(req)
	case "tools/call":
		if !s.isInitialized() {
			return errorResponse(req.ID, codeInvalidRequest, "server not initialized")
		}
		return s.handleToolsCall(ctx, req)
	default:
		if req.isNotification() {
			s.logger.Debug("ignoring unknown notification", "method", req.Method)
			return nil
		}
		return errorResponse(req.ID, codeMethodNotFound, "method not found: "+req.Method)
	}
}

func (s *Server) handleInitialize(req *request) *response {
	var params initializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, codeInvalidParams, "invalid initialize params: "+err.Error())
		}
	}
	s.logger.Info("client connected",
		"client", params.ClientInfo.Name,
		"client_version", params.ClientInfo.Version,
		"requested_protocol", params.ProtocolVersion)

	// Clients are expected to follow initialize with the
	// notifications/initialized notification, but some skip it. Treat
	// a completed initialize exchange as sufficient to serve tools.
	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()

	return &response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: initializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities: serverCapabilities{
				Tools: &toolCapability{},
			},
			ServerInfo: serverInfo{Name: s.name, Version: s.version},
		},
	}
}

func (s *Server) handleToolsList(req *request) *response {
	descriptions := make([]toolDescription, 0, len(s.tools))
	for i := range s.tools {
		tool := &s.tools[i]
		schema := tool.InputSchema
		if len(schema) == 0 {
			schema = json.RawMessage(`{"type":"object"}`)
		}
		descriptions = append(descriptions, toolDescription{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: schema,
			Annotations: tool.Annotations,
		})
	}
	return &response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  toolsListResult{Tools: descriptions},
	}
}

func (s *Server) handleToolsCall(ctx context.Context, req *request) *response {
	var params toolsCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "invalid tools/call params: "+err.Error())
	}
	tool, ok := s.byName[params.Name]
	if !ok {
		return errorResponse(req.ID, codeInvalidParams, "unknown tool: "+params.Name)
	}

	text, err := tool.Handler(ctx, params.Arguments)
	if err != nil {
		s.logger.Warn("tool call failed", "tool", params.Name, "error", err)
		return &response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result: toolsCallResult{
				Content: []contentBlock{{Type: "text", Text: err.Error()}},
				IsError: true,
			},
		}
	}
	return &response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: toolsCallResult{
			Content: []contentBlock{{Type: "text", Text: text}},
		},
	}
}

func (s *Server) isInitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func errorResponse(id json.RawMessage, code int, message string) *response {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	return &response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: message},
	}
}

func writeResponse(output io.Writer, resp *response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = output.Write(data)
	return err
}
