package assistant

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/tracefirst/digilink/internal/product"
)

// BuildPrompt constructs the grounding prompt for one question about one
// product. It is deterministic: identical inputs yield identical bytes.
func BuildPrompt(p *product.ProductData, question string) string {
	var b strings.Builder
	b.WriteString("You are an expert product assistant for the following product:\n")
	fmt.Fprintf(&b, "Name: %s\n", p.Name)
	fmt.Fprintf(&b, "Brand: %s\n", p.Brand)
	fmt.Fprintf(&b, "Description: %s\n", p.Description)
	fmt.Fprintf(&b, "Ingredients: %s\n", strings.Join(p.Ingredients, ", "))
	fmt.Fprintf(&b, "Allergens: %s\n", strings.Join(p.Allergens, ", "))
	fmt.Fprintf(&b, "Origin: %s\n", p.Traceability.Origin)
	fmt.Fprintf(&b, "Carbon Footprint: %gkg CO2e\n", p.Sustainability.CarbonFootprint)
	b.WriteString("\n")
	fmt.Fprintf(&b, "User Question: %q\n", question)
	b.WriteString("\n")
	b.WriteString("Answer concisely, in a helpful and friendly retail assistant tone.\n")
	b.WriteString("If the user asks for a recipe and the product is food, suggest one using the product.\n")
	b.WriteString("Keep the answer under 100 words.\n")
	return b.String()
}

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
)

// EstimateTokens returns a rough token count for text. Gemini does not
// share OpenAI's vocabulary, so this is an estimate used only for logging;
// 0 means the tokenizer was unavailable.
func EstimateTokens(text string) int {
	codecOnce.Do(func() {
		c, err := tokenizer.Get(tokenizer.Cl100kBase)
		if err == nil {
			codec = c
		}
	})
	if codec == nil {
		return 0
	}
	n, err := codec.Count(text)
	if err != nil {
		return 0
	}
	return n
}
