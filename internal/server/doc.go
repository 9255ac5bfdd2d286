// Package server implements the MCP (Model Context Protocol) server for
// ingredient recognition.
//
// This package provides a JSON-RPC 2.0 server that exposes the recognition
// pipeline through the MCP protocol, so assistants can turn a photo of food
// into an ingredient list.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_quality_metrics: Brightness, contrast and blur of an image
//   - image_enhance: Low-light enhancement, returned as base64 PNG
//   - image_detect: Ingredient list with per-ingredient boxes
//   - image_detect_batch: image_detect over several files
//
// Single-image tools accept either a file path or inline base64 data with a
// MIME type. Only JPEG and PNG are accepted.
//
// # Image Caching
//
// Images loaded by path are decoded once and cached. A cached image is
// decoded again when its file's modification time or size changes, and the
// least recently used images are dropped once the cache is full.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses with:
//   - code: -32602 when the request is at fault (bad arguments, unsupported
//     media type, undecodable or missing image), -32000 for everything else
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	p := pipeline.New(detector)
//	srv := server.New(p, server.WithLogger(log))
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal("server stopped", zap.Error(err))
//	}
package server
