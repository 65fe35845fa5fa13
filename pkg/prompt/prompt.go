// Package prompt builds the instruction text sent to the generation service.
// Every builder is pure: identical requests produce identical prompts.
package prompt

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/zen-systems/listingsmith/pkg/listing"
)

// MaxPastSales is the number of historical sales embedded in a price prompt.
const MaxPastSales = 10

var pesos = message.NewPrinter(language.English)

// Build returns the prompt for any supported request.
func Build(req listing.Request) (string, error) {
	switch r := req.(type) {
	case listing.CaptionRequest:
		return Caption(r), nil
	case *listing.CaptionRequest:
		return Caption(*r), nil
	case listing.TagsRequest:
		return Tags(r), nil
	case *listing.TagsRequest:
		return Tags(*r), nil
	case listing.PriceRequest:
		return Price(r), nil
	case *listing.PriceRequest:
		return Price(*r), nil
	case listing.AutoFillRequest:
		return AutoFill(r), nil
	case *listing.AutoFillRequest:
		return AutoFill(*r), nil
	default:
		return "", fmt.Errorf("%w: unsupported request type %T", listing.ErrInvalidRequest, req)
	}
}

// FillTemplate replaces the {model}, {condition}, {storage}, {ram} and
// {variant} placeholders, in that order. Each replacement sees the output
// of the previous one, so a token inside an earlier value is filled too.
// Missing values become empty strings.
func FillTemplate(template string, req listing.CaptionRequest) string {
	out := template
	for _, field := range [][2]string{
		{"{model}", req.Model},
		{"{condition}", req.Condition},
		{"{storage}", req.Storage},
		{"{ram}", req.RAM},
		{"{variant}", req.Variant},
	} {
		out = strings.ReplaceAll(out, field[0], field[1])
	}
	return out
}

// Caption builds the marketplace caption prompt.
func Caption(req listing.CaptionRequest) string {
	var sb strings.Builder

	sb.WriteString("Write a Facebook Marketplace caption for a phone listing. ")
	sb.WriteString("Write it as the seller posting directly: the listing text only, with no introduction or explanation.\n\n")

	sb.WriteString("Phone details:\n")
	writeDetail(&sb, "Model", req.Model)
	writeDetail(&sb, "Condition", req.Condition)
	writeDetail(&sb, "Storage", req.Storage)
	writeDetail(&sb, "RAM", req.RAM)
	writeDetail(&sb, "Color/Variant", req.Variant)

	hasTemplate := strings.TrimSpace(req.Template) != ""
	if hasTemplate {
		sb.WriteString("\nIMPORTANT: Follow this exact style and format template:\n")
		sb.WriteString(FillTemplate(req.Template, req))
		sb.WriteString("\n\nUse the template as the guide for structure, tone and formatting.\n")
	}

	sb.WriteString("\nRequirements:\n")
	sb.WriteString("1. Start directly with the phone information. Do NOT open with phrases such as \"Here's a caption\" or \"Here is your listing\".\n")
	sb.WriteString("2. Plain text only. No markdown: no **, no *, no _, no headings, no bullet markers.\n")
	sb.WriteString("3. Keep it concise and natural, the way a real seller posts on a marketplace.\n")
	sb.WriteString("4. Disclose the condition and any issues honestly.\n")
	sb.WriteString("5. End with relevant hashtags.\n")
	if hasTemplate {
		sb.WriteString("6. Follow the template's style and format exactly, using the values given above.\n")
	} else {
		sb.WriteString("6. Use a natural marketplace listing format.\n")
	}

	sb.WriteString("\nReturn ONLY the caption text.")
	return sb.String()
}

// Tags builds the search keyword prompt.
func Tags(req listing.TagsRequest) string {
	var sb strings.Builder

	sb.WriteString("Generate search tags for a phone listing on Facebook Marketplace: the terms buyers type to find this phone.\n\n")

	sb.WriteString("Phone details:\n")
	writeDetail(&sb, "Model", req.Model)
	writeDetail(&sb, "Storage", req.Storage)
	writeDetail(&sb, "Color/Variant", req.Variant)

	sb.WriteString("\nGenerate 15-20 lowercase keywords. Include:\n")
	sb.WriteString("- brand name (e.g. samsung, apple, iphone)\n")
	sb.WriteString("- model name split into tokens (e.g. s22, ultra, pro, max)\n")
	sb.WriteString("- storage size (e.g. 128gb, 256gb)\n")
	sb.WriteString("- color or variant when given\n")
	sb.WriteString("- generic category terms (e.g. phone, smartphone, cellphone, android, mobile)\n")

	sb.WriteString("\nReturn ONLY a comma-separated list of keywords with no hashtags and no other text. ")
	sb.WriteString("Example: samsung,s22,ultra,android,cellphone,phone,256gb,black,smartphone")
	return sb.String()
}

// Price builds the price suggestion prompt. At most MaxPastSales sales are
// embedded; the caller orders them newest first.
func Price(req listing.PriceRequest) string {
	var sb strings.Builder

	sb.WriteString("Suggest accurate pricing for a phone listing based on current marketplace prices.\n\n")

	sb.WriteString("Phone details:\n")
	writeDetail(&sb, "Model", req.Model)
	writeDetail(&sb, "Storage", req.Storage)
	writeDetail(&sb, "Condition", req.Condition)

	sales := req.PastSales
	if len(sales) > MaxPastSales {
		sales = sales[:MaxPastSales]
	}
	if len(sales) > 0 {
		sb.WriteString("\nPast sales:\n")
		for _, s := range sales {
			condition := strings.TrimSpace(s.Condition)
			if condition == "" {
				condition = "unspecified"
			}
			sb.WriteString(fmt.Sprintf("- %s: %s\n", condition, FormatPeso(s.Price)))
		}
	}

	rng := req.MarketplaceRange
	if rng != nil {
		sb.WriteString("\nCurrent marketplace price range:\n")
		sb.WriteString(fmt.Sprintf("- Minimum: %s\n", FormatPeso(rng.Min)))
		sb.WriteString(fmt.Sprintf("- Maximum: %s\n", FormatPeso(rng.Max)))
		sb.WriteString("\nCRITICAL: this range is a hard bound. Every price you return MUST be between ")
		sb.WriteString(fmt.Sprintf("%s and %s. Base the numbers on actual market prices, not inflated estimates.\n",
			FormatPeso(rng.Min), FormatPeso(rng.Max)))
	}

	sb.WriteString("\nProvide 4 prices in PHP (Philippine Peso):\n")
	sb.WriteString("1. suggested: balanced, competitive market price\n")
	sb.WriteString("2. rush: quick sale, 5-10% below suggested\n")
	sb.WriteString("3. safe: conservative, slightly below suggested\n")
	if rng != nil {
		sb.WriteString("4. high: for patient buyers, at the upper end of the marketplace range\n")
	} else {
		sb.WriteString("4. high: for patient buyers, the maximum reasonable price\n")
	}

	sb.WriteString("\nReturn ONLY a JSON object with exactly these numeric keys: suggested, rush, safe, high\n")
	sb.WriteString(`Example: {"suggested": 25000, "rush": 23000, "safe": 24000, "high": 27000}`)
	return sb.String()
}

// AutoFill builds the catalog metadata prompt.
func AutoFill(req listing.AutoFillRequest) string {
	var sb strings.Builder

	sb.WriteString("Provide auto-fill information for a phone model based on real-world marketplace data.\n\n")
	sb.WriteString(fmt.Sprintf("Model: %s\n\n", req.Model))

	sb.WriteString("Return a JSON object with:\n")
	sb.WriteString(`- storageOptions: array of every storage size sold for this model (e.g. ["64GB", "128GB", "256GB"])` + "\n")
	sb.WriteString(`- colorVariants: array of every color or variant sold for this model (e.g. ["Black", "White", "Blue"])` + "\n")
	sb.WriteString(`- commonIssues: array of defects users commonly report for this model (e.g. ["Green lines", "Battery drain"])` + "\n")
	sb.WriteString(`- conditionSuggestions: array of condition labels used in marketplace listings (e.g. ["Mint", "Good", "Fair"])` + "\n")
	sb.WriteString("- typicalPriceRange: object with numeric min and max in PHP (Philippine Peso) from current marketplace prices\n")

	sb.WriteString(fmt.Sprintf("\nBe specific to %s only; do not describe other models.\n", req.Model))
	sb.WriteString("\nReturn ONLY valid JSON, no additional text.")
	return sb.String()
}

// FormatPeso renders an amount as pesos with thousands separators.
func FormatPeso(amount float64) string {
	if amount == math.Trunc(amount) && math.Abs(amount) < 1e15 {
		return pesos.Sprintf("₱%d", int64(amount))
	}
	return pesos.Sprintf("₱%.2f", amount)
}

func writeDetail(sb *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	sb.WriteString(fmt.Sprintf("- %s: %s\n", label, value))
}
