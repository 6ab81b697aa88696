package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/encartelab/flyer-tracker/internal/common"
)

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// ParsePayload validates sanitized model output against the flyer schema and
// decodes it. Any failure wraps common.ErrPayloadParse; callers must keep the
// stored artifact (it is never rolled back on parse failure).
func ParsePayload(sanitized string) (ExtractedPayload, error) {
	raw := []byte(sanitized)

	if err := ValidateJSONAgainstSchema(BuildFlyerJSONSchema(), raw); err != nil {
		return ExtractedPayload{}, fmt.Errorf("%w: %w", common.ErrPayloadParse, err)
	}

	var out ExtractedPayload
	if err := json.Unmarshal(raw, &out); err != nil {
		return ExtractedPayload{}, fmt.Errorf("%w: decode: %w", common.ErrPayloadParse, err)
	}
	return out, nil
}
