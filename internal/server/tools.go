package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// imageSourceProperties are shared by every tool that takes a single image:
// either a file path or inline base64 data with its MIME type.
func imageSourceProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to a .jpg, .jpeg or .png file. Files rewritten on disk are re-read",
		},
		"image_base64": map[string]interface{}{
			"type":        "string",
			"description": "Base64-encoded image bytes, used instead of path",
		},
		"mime_type": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"image/jpeg", "image/png"},
			"description": "MIME type of image_base64",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	enhanceProps := imageSourceProperties()
	enhanceProps["force"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Enhance even if the image is bright and contrasty enough. Default false",
		"default":     false,
	}
	enhanceProps["clip_limit"] = map[string]interface{}{
		"type":        "number",
		"description": "CLAHE clip limit. Defaults to the server policy (2.0)",
	}
	enhanceProps["tile_grid"] = map[string]interface{}{
		"type":        "integer",
		"description": "CLAHE tiles per axis. Defaults to the server policy (8)",
	}

	return []Tool{
		{
			Name:        "image_quality_metrics",
			Description: "Measure brightness (mean luminance), contrast (luminance standard deviation) and sharpness (variance of the Laplacian) of an image, and report whether low-light enhancement would be applied.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": imageSourceProperties(),
			},
		},
		{
			Name:        "image_enhance",
			Description: "Apply low-light enhancement (CLAHE on the L* channel of CIE Lab) when the image is too dark or flat, and return the result as base64-encoded PNG with before/after metrics.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": enhanceProps,
			},
		},
		{
			Name:        "image_detect",
			Description: "Recognize food items in a photo. Returns the ingredient list ordered by confidence, with a count, best box and every box per ingredient.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": imageSourceProperties(),
			},
		},
		{
			Name:        "image_detect_batch",
			Description: "Run image_detect over several image files. Results keep the input order; a failing file reports its error without stopping the rest.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths to .jpg, .jpeg or .png files",
						"minItems":    1,
					},
				},
				"required": []string{"paths"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
