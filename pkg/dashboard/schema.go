package dashboard

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// File 模板文件的 JSON 结构，用于生成 JSON Schema
type File struct {
	Info       Info                 `json:"template_info"        jsonschema:"required"`
	Parameters map[string]Parameter `json:"parameters,omitempty"`
	Dashboard  map[string]any       `json:"dashboard"            jsonschema:"required"`
}

// Schema 生成 v 的 JSON Schema，常用 File 或 Metadata
func Schema(v any) ([]byte, error) {
	r := &jsonschema.Reflector{
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
	}

	data, err := json.MarshalIndent(r.Reflect(v), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}

	return data, nil
}
