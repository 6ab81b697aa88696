package llm

// BuildFlyerJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. It is the explicit contract between sanitization and
// persistence: payloads that don't match are rejected with field-level
// reasons instead of failing incidentally later.
func BuildFlyerJSONSchema() map[string]any {
	lineItem := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"produto_nome":        map[string]any{"type": "string", "minLength": 1},
			"marca":               map[string]any{"type": []string{"string", "null"}},
			"preco_float":         map[string]any{"type": "number", "minimum": 0.0},
			"unidade_padronizada": map[string]any{"type": "string", "minLength": 1},
			"valor_padronizado":   map[string]any{"type": "number", "exclusiveMinimum": 0.0},
			"preco_por_unidade":   map[string]any{"type": "number", "minimum": 0.0},
		},
		"required": []string{
			"produto_nome", "preco_float", "unidade_padronizada",
			"valor_padronizado", "preco_por_unidade",
		},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"supermercado":      map[string]any{"type": "string", "minLength": 1},
			"validade_promocao": map[string]any{"type": []string{"string", "null"}},
			"produtos": map[string]any{
				"type":  "array",
				"items": lineItem,
			},
		},
		// The hard invariant: an object with a produtos sequence.
		"required": []string{"supermercado", "produtos"},
	}
}
