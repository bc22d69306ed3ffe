// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// runServer feeds the given request lines to a server with the given
// tools and returns the decoded response lines.
func runServer(t *testing.T, tools []Tool, lines ...string) []map[string]any {
	t.Helper()
	server, err := NewServer(ServerConfig{
		Name:    "focuslog-test",
		Version: "0.0.0-test",
		Tools:   tools,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	input := strings.NewReader(strings.Join(lines, "\n") + "\n")
	var output bytes.Buffer
	if err := server.Run(context.Background(), input, &output); err != nil {
		t.Fatalf("Run: %v", err)
	}
	var responses []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(output.String()), "\n") {
		if line == "" {
			continue
		}
		var resp map[string]any
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("unmarshal response %q: %v", line, err)
		}
		responses = append(responses, resp)
	}
	return responses
}

// initLine is a minimal initialize request used by tests that exercise
// methods gated behind initialization. Its response is responses[0].
const initLine = `{"jsonrpc":"2.0","id":0,"method":"initialize","params":{"protocolVersion":"2025-11-25","clientInfo":{"name":"test-client"}}}`

func echoTool() Tool {
	return Tool{
		Name:        "echo",
		Description: "Returns its message argument.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"message":{"type":"string"}}}`),
		Handler: func(_ context.Context, args json.RawMessage) (string, error) {
			var params struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(args, &params); err != nil {
				return "", err
			}
			return params.Message, nil
		},
	}
}

func TestInitialize(t *testing.T) {
	responses := runServer(t, []Tool{echoTool()},
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-11-25","clientInfo":{"name":"test-client"}}}`,
	)
	if len(responses) != 1 {
		t.Fatalf("got %d responses, want 1", len(responses))
	}
	result, ok := responses[0]["result"].(map[string]any)
	if !ok {
		t.Fatalf("initialize response has no result: %v", responses[0])
	}
	if got := result["protocolVersion"]; got != protocolVersion {
		t.Errorf("protocolVersion = %v, want %v", got, protocolVersion)
	}
	info, ok := result["serverInfo"].(map[string]any)
	if !ok || info["name"] != "focuslog-test" {
		t.Errorf("serverInfo = %v, want name focuslog-test", result["serverInfo"])
	}
}

func TestInitializedNotificationHasNoResponse(t *testing.T) {
	responses := runServer(t, []Tool{echoTool()},
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
	)
	if len(responses) != 1 {
		t.Fatalf("got %d responses, want 1 (only the ping)", len(responses))
	}
	if id := responses[0]["id"]; id != float64(2) {
		t.Errorf("response id = %v, want 2", id)
	}
}

func TestToolsList(t *testing.T) {
	responses := runServer(t, []Tool{echoTool()},
		initLine,
		`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`,
	)
	if len(responses) != 2 {
		t.Fatalf("got %d responses, want 2", len(responses))
	}
	result := responses[1]["result"].(map[string]any)
	tools := result["tools"].([]any)
	if len(tools) != 1 {
		t.Fatalf("got %d tools, want 1", len(tools))
	}
	tool := tools[0].(map[string]any)
	if tool["name"] != "echo" {
		t.Errorf("tool name = %v, want echo", tool["name"])
	}
	if _, ok := tool["inputSchema"]; !ok {
		t.Error("tool description missing inputSchema")
	}
}

func TestToolsCall(t *testing.T) {
	responses := runServer(t, []Tool{echoTool()},
		initLine,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"echo","arguments":{"message":"hello"}}}`,
	)
	if len(responses) != 2 {
		t.Fatalf("got %d responses, want 2", len(responses))
	}
	result := responses[1]["result"].(map[string]any)
	if isErr, _ := result["isError"].(bool); isErr {
		t.Fatalf("tool call unexpectedly errored: %v", result)
	}
	content := result["content"].([]any)
	block := content[0].(map[string]any)
	if block["text"] != "hello" {
		t.Errorf("content text = %v, want hello", block["text"])
	}
}

func TestToolsCallHandlerError(t *testing.T) {
	failing := Tool{
		Name:        "broken",
		Description: "Always fails.",
		Handler: func(context.Context, json.RawMessage) (string, error) {
			return "", errors.New("no data available")
		},
	}
	responses := runServer(t, []Tool{failing},
		initLine,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"broken","arguments":{}}}`,
	)
	result := responses[1]["result"].(map[string]any)
	if isErr, _ := result["isError"].(bool); !isErr {
		t.Fatal("handler error should surface as isError result")
	}
	if _, hasRPCError := responses[1]["error"]; hasRPCError {
		t.Error("handler error must not become a JSON-RPC error")
	}
	content := result["content"].([]any)
	block := content[0].(map[string]any)
	if !strings.Contains(block["text"].(string), "no data available") {
		t.Errorf("error text = %v, want handler message", block["text"])
	}
}

func TestToolsCallUnknownTool(t *testing.T) {
	responses := runServer(t, []Tool{echoTool()},
		initLine,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"missing"}}`,
	)
	errObj, ok := responses[1]["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected JSON-RPC error, got %v", responses[1])
	}
	if code := errObj["code"]; code != float64(codeInvalidParams) {
		t.Errorf("error code = %v, want %d", code, codeInvalidParams)
	}
}

func TestToolsCallBeforeInitialize(t *testing.T) {
	responses := runServer(t, []Tool{echoTool()},
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"echo","arguments":{"message":"hi"}}}`,
	)
	errObj, ok := responses[0]["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected JSON-RPC error, got %v", responses[0])
	}
	if code := errObj["code"]; code != float64(codeInvalidRequest) {
		t.Errorf("error code = %v, want %d", code, codeInvalidRequest)
	}
}

func TestMethodNotFound(t *testing.T) {
	responses := runServer(t, []Tool{echoTool()},
		`{"jsonrpc":"2.0","id":9,"method":"resources/list"}`,
	)
	errObj, ok := responses[0]["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected JSON-RPC error, got %v", responses[0])
	}
	if code := errObj["code"]; code != float64(codeMethodNotFound) {
		t.Errorf("error code = %v, want %d", code, codeMethodNotFound)
	}
}

func TestParseErrorKeepsServing(t *testing.T) {
	responses := runServer(t, []Tool{echoTool()},
		`{not json`,
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`,
	)
	if len(responses) != 2 {
		t.Fatalf("got %d responses, want 2", len(responses))
	}
	errObj, ok := responses[0]["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected parse error response, got %v", responses[0])
	}
	if code := errObj["code"]; code != float64(codeParseError) {
		t.Errorf("error code = %v, want %d", code, codeParseError)
	}
	if _, ok := responses[1]["result"]; !ok {
		t.Errorf("ping after parse error should still succeed: %v", responses[1])
	}
}

func TestDuplicateToolNameRejected(t *testing.T) {
	_, err := NewServer(ServerConfig{
		Name:  "dup",
		Tools: []Tool{echoTool(), echoTool()},
	})
	if err == nil {
		t.Fatal("NewServer should reject duplicate tool names")
	}
}
