package llm

import "context"

// LineItem is one priced product extracted from a flyer photograph.
// JSON keys follow the wire contract with the model (Portuguese field names).
type LineItem struct {
	ProductName       string  `json:"produto_nome"`
	Brand             *string `json:"marca"`
	PriceAmount       float64 `json:"preco_float"`
	StandardizedUnit  string  `json:"unidade_padronizada"`
	StandardizedValue float64 `json:"valor_padronizado"`
	PricePerUnit      float64 `json:"preco_por_unidade"`
}

// ExtractedPayload is the normalized shape we want from the model for one flyer.
type ExtractedPayload struct {
	MerchantName    string     `json:"supermercado"`
	PromotionExpiry *string    `json:"validade_promocao"`
	LineItems       []LineItem `json:"produtos"`
}

// Extractor is the interface the pipeline depends on for inference.
// Infer sends the prompt template plus the image in a single multi-part
// request and returns the model's raw text.
type Extractor interface {
	Infer(ctx context.Context, imageData []byte, mimeType string) (string, error)
}
