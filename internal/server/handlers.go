package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"io/fs"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/recipe-detect-mcp/internal/imaging"
	"github.com/ironsheep/recipe-detect-mcp/internal/logging"
	"github.com/ironsheep/recipe-detect-mcp/internal/pipeline"
)

// errInvalidArguments marks tool calls whose arguments are missing or
// malformed. It is reported as a client error.
var errInvalidArguments = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_detect").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Errors caused by the request (bad arguments, unsupported media type,
// undecodable or missing image) return code -32602. Everything else,
// including detector failures, returns -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	log := s.log.With(
		zap.String(logging.FieldTool, params.Name),
		zap.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()),
	)
	if err != nil {
		if isClientError(err) {
			log.Info("tool rejected request", zap.Error(err))
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		log.Error("tool execution failed", zap.Error(err))
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	log.Debug("tool finished")

	return s.toolResponse(req.ID, params.Name, result)
}

// toolResponse wraps a tool result in MCP's text content. A result that
// cannot be encoded is logged and reported as a tool failure.
func (s *Server) toolResponse(id interface{}, tool string, result interface{}) *MCPResponse {
	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		s.log.Error("failed to encode tool result", zap.String(logging.FieldTool, tool), zap.Error(err))
		return s.errorResponse(id, codeToolFailed, "Tool execution failed", "failed to encode result: "+err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": string(text),
				},
			},
		},
	}
}

func isClientError(err error) bool {
	return pipeline.IsClientError(err) || errors.IsAny(err, errInvalidArguments, fs.ErrNotExist)
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_quality_metrics":
		return s.handleQualityMetrics(args)
	case "image_enhance":
		return s.handleEnhance(args)
	case "image_detect":
		return s.handleDetect(ctx, args)
	case "image_detect_batch":
		return s.handleDetectBatch(ctx, args)
	default:
		return nil, errors.Mark(errors.Newf("unknown tool: %s", name), errInvalidArguments)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return errors.Mark(errors.Wrap(err, "malformed arguments"), errInvalidArguments)
	}
	return nil
}

// imageSourceArgs selects the image a tool works on.
type imageSourceArgs struct {
	Path        string `json:"path"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// load returns the image named by path (through the cache) or decodes the
// inline data with its declared MIME type.
func (s *Server) load(a imageSourceArgs) (image.Image, error) {
	switch {
	case a.Path != "" && a.ImageBase64 != "":
		return nil, errors.Mark(errors.New("give either path or image_base64, not both"), errInvalidArguments)
	case a.Path != "":
		return s.cache.Load(a.Path)
	case a.ImageBase64 != "":
		data, err := base64.StdEncoding.DecodeString(a.ImageBase64)
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "image_base64 is not valid base64"), errInvalidArguments)
		}
		return imaging.Decode(data, a.MimeType)
	default:
		return nil, errors.Mark(errors.New("path or image_base64 is required"), errInvalidArguments)
	}
}

// === Quality and Enhancement Handlers ===

type qualityResult struct {
	Width   int                    `json:"width"`
	Height  int                    `json:"height"`
	Metrics imaging.QualityMetrics `json:"metrics"`
	Enhance bool                   `json:"enhance_recommended"`
	Policy  imaging.EnhancePolicy  `json:"policy"`
}

func (s *Server) handleQualityMetrics(args json.RawMessage) (interface{}, error) {
	var a imageSourceArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.load(a)
	if err != nil {
		return nil, err
	}

	m := imaging.Analyze(img)
	policy := s.pipeline.Policy()
	b := img.Bounds()
	return &qualityResult{
		Width:   b.Dx(),
		Height:  b.Dy(),
		Metrics: m,
		Enhance: policy.ShouldEnhance(m),
		Policy:  policy,
	}, nil
}

type enhanceArgs struct {
	imageSourceArgs
	Force     bool     `json:"force"`
	ClipLimit *float64 `json:"clip_limit"`
	TileGrid  *int     `json:"tile_grid"`
}

type enhanceResult struct {
	Applied bool                   `json:"applied"`
	Before  imaging.QualityMetrics `json:"before"`
	After   imaging.QualityMetrics `json:"after"`
	Image   *imaging.EncodedImage  `json:"image"`
}

func (s *Server) handleEnhance(args json.RawMessage) (interface{}, error) {
	var a enhanceArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	policy := s.pipeline.Policy()
	if a.ClipLimit != nil {
		if *a.ClipLimit < 0 {
			return nil, errors.Mark(errors.Newf("clip_limit must not be negative, got %v", *a.ClipLimit), errInvalidArguments)
		}
		policy.ClipLimit = *a.ClipLimit
	}
	if a.TileGrid != nil {
		if *a.TileGrid < 1 {
			return nil, errors.Mark(errors.Newf("tile_grid must be at least 1, got %d", *a.TileGrid), errInvalidArguments)
		}
		policy.TileGrid = *a.TileGrid
	}

	img, err := s.load(a.imageSourceArgs)
	if err != nil {
		return nil, err
	}

	before := imaging.Analyze(img)
	var out image.Image
	var applied bool
	if a.Force {
		out, applied = imaging.Enhance(img, policy.ClipLimit, policy.TileGrid), true
	} else {
		out, applied = imaging.DecideAndEnhance(img, before, policy)
	}

	encoded, err := imaging.EncodePNG(out)
	if err != nil {
		return nil, err
	}
	return &enhanceResult{
		Applied: applied,
		Before:  before,
		After:   imaging.Analyze(out),
		Image:   encoded,
	}, nil
}

// === Detection Handlers ===

func (s *Server) handleDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageSourceArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.load(a)
	if err != nil {
		return nil, err
	}

	resp, err := s.pipeline.Run(ctx, img)
	if err != nil {
		return nil, err
	}
	s.log.Info("detected ingredients",
		zap.String(logging.FieldRequestID, resp.RequestID),
		zap.Strings("ingredients", resp.IngredientList),
		zap.Bool(logging.FieldEnhanced, resp.Enhanced),
	)
	return resp, nil
}

type detectBatchArgs struct {
	Paths []string `json:"paths"`
}

type batchItem struct {
	Path     string             `json:"path"`
	Response *pipeline.Response `json:"response,omitempty"`
	Error    string             `json:"error,omitempty"`
}

type batchResult struct {
	Results []batchItem `json:"results"`
	Failed  int         `json:"failed"`
}

func (s *Server) handleDetectBatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a detectBatchArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, errors.Mark(errors.New("paths must list at least one image"), errInvalidArguments)
	}

	items := make([]batchItem, len(a.Paths))
	imgs := make([]image.Image, 0, len(a.Paths))
	slots := make([]int, 0, len(a.Paths))
	for i, path := range a.Paths {
		items[i].Path = path
		img, err := s.cache.Load(path)
		if err != nil {
			items[i].Error = err.Error()
			continue
		}
		imgs = append(imgs, img)
		slots = append(slots, i)
	}

	results, err := s.pipeline.RunBatch(ctx, imgs, s.workers)
	if err != nil {
		return nil, err
	}
	for j, r := range results {
		item := &items[slots[j]]
		if r.Err != nil {
			item.Error = r.Err.Error()
			continue
		}
		item.Response = r.Response
	}

	failed := 0
	for _, item := range items {
		if item.Error != "" {
			failed++
		}
	}
	return &batchResult{Results: items, Failed: failed}, nil
}
