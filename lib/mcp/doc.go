// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

// Package mcp implements a minimal Model Context Protocol server
// speaking JSON-RPC 2.0 over newline-delimited streams, conventionally
// stdin and stdout. The server exposes a static table of tools; tool
// handlers return plain text that is wrapped in MCP content blocks.
//
// Protocol-level failures (malformed JSON, unknown methods, bad
// parameters) are reported as JSON-RPC errors. Tool execution failures
// are reported inside a successful tools/call result with isError set,
// as the MCP specification requires, so that the model can observe and
// react to them.
package mcp
