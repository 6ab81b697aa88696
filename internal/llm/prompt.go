package llm

import "strings"

// DefaultPrompt is the fixed instruction text attached to every inference
// request alongside the flyer image. The JSON keys are the wire contract;
// changing them breaks parsing downstream.
const DefaultPrompt = `Você é um extrator de dados de encartes de supermercado. Analise a imagem do encarte e retorne SOMENTE um objeto JSON, sem texto adicional, com esta estrutura exata:

{
  "supermercado": "nome do supermercado",
  "validade_promocao": "data de validade da promoção (texto livre, ou null se não visível)",
  "produtos": [
    {
      "produto_nome": "nome do produto",
      "marca": "marca do produto ou null",
      "preco_float": 19.9,
      "unidade_padronizada": "kg, l ou un",
      "valor_padronizado": 5,
      "preco_por_unidade": 3.98
    }
  ]
}

Regras:
- "preco_float" é o preço anunciado, como número (use ponto decimal).
- "unidade_padronizada" converte a embalagem para kg, l ou un.
- "valor_padronizado" é a quantidade na unidade padronizada (ex.: 5 para 5kg).
- "preco_por_unidade" é preco_float dividido por valor_padronizado.
- Inclua todos os produtos visíveis com preço legível; omita os ilegíveis.
- Nunca invente valores. Se um campo não estiver visível, use null.`

// BuildPrompt returns the instruction text for inference, preferring a
// configured override when one is set.
func BuildPrompt(override string) string {
	if p := strings.TrimSpace(override); p != "" {
		return p
	}
	return DefaultPrompt
}
