package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"lumiere/internal/domain/model"
	repo "lumiere/internal/repository"
)

const (
	// 上流の失敗時に返す文言
	FallbackReasoning = "We are having trouble connecting to our stylist right now, but please explore our collection."
	// AIが未設定のとき
	NoCompleterReasoning = "API Key missing. Showing default recommendations."
	// AIが理由を返さなかったとき
	DefaultReasoning = "Here are some items we think you'll love."

	stylistCatalogLimit = 50
	stylistMaxPicks     = 3
	stylistQueryMaxLen  = 500
)

var recommendationSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"recommendedProductIds": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "Array of matching product IDs",
		},
		"reasoning": map[string]any{
			"type":        "string",
			"description": "A short, warm paragraph explaining the choice to the customer.",
		},
	},
	"required":             []string{"recommendedProductIds", "reasoning"},
	"additionalProperties": false,
}

type Recommendation struct {
	RecommendedIDs []string `json:"recommendedIds"`
	Reasoning      string   `json:"reasoning"`
}

type StylistUsecase struct {
	productRepo repo.ProductRepository
	completer   Completer
	logger      *slog.Logger
}

// completer が nil ならAI無しで先頭の商品を返す
func NewStylistUsecase(productRepo repo.ProductRepository, completer Completer, logger *slog.Logger) *StylistUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &StylistUsecase{productRepo: productRepo, completer: completer, logger: logger}
}

func fallbackRecommendation() Recommendation {
	return Recommendation{RecommendedIDs: []string{}, Reasoning: FallbackReasoning}
}

// Recommend は上流の失敗をエラーにしない（空の推薦 + 定型文）。
// エラーを返すのは入力不正のときだけ。
func (u *StylistUsecase) Recommend(ctx context.Context, query string) (Recommendation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Recommendation{}, NewHTTPError(http.StatusBadRequest, "Missing query")
	}
	query = truncateRunes(query, stylistQueryMaxLen)

	products, err := u.productRepo.List(ctx, repo.ProductListQuery{Limit: stylistCatalogLimit})
	if err != nil {
		u.logger.ErrorContext(ctx, "stylist: load catalog failed", "err", err)
		return fallbackRecommendation(), nil
	}

	if u.completer == nil {
		ids := make([]string, 0, 2)
		for i := 0; i < len(products) && i < 2; i++ {
			ids = append(ids, products[i].ID)
		}
		return Recommendation{RecommendedIDs: ids, Reasoning: NoCompleterReasoning}, nil
	}

	raw, err := u.completer.CompleteJSON(ctx, CompletionRequest{
		System:     "You are an expert personal shopper for Lumière, a high-end minimalist jewelry brand.",
		Prompt:     stylistPrompt(query, products),
		SchemaName: "product_recommendation",
		Schema:     recommendationSchema,
	})
	if err != nil {
		u.logger.ErrorContext(ctx, "stylist: completion failed", "err", err)
		return fallbackRecommendation(), nil
	}

	var parsed struct {
		RecommendedProductIDs []string `json:"recommendedProductIds"`
		Reasoning             string   `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		u.logger.ErrorContext(ctx, "stylist: unparsable completion", "err", err)
		return fallbackRecommendation(), nil
	}

	//カタログに無いIDは捨てる
	known := make(map[string]struct{}, len(products))
	for _, p := range products {
		known[p.ID] = struct{}{}
	}
	ids := make([]string, 0, stylistMaxPicks)
	seen := map[string]struct{}{}
	for _, id := range parsed.RecommendedProductIDs {
		if _, ok := known[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
		if len(ids) == stylistMaxPicks {
			break
		}
	}

	reasoning := strings.TrimSpace(parsed.Reasoning)
	if reasoning == "" {
		reasoning = DefaultReasoning
	}

	return Recommendation{RecommendedIDs: ids, Reasoning: reasoning}, nil
}

func stylistPrompt(query string, products []model.Product) string {
	var b strings.Builder

	fmt.Fprintf(&b, "User Request: %q\n\n", query)
	b.WriteString("Available Products Inventory:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "ID: %s, Name: %s, Category: %s, Description: %s, Price: $%s\n",
			p.ID, p.Name, p.Category, p.Description, p.Price.StringFixed(2))
	}
	b.WriteString("\nTask: Recommend 1-3 products that best match the user's request. ")
	b.WriteString("Explain briefly why you chose them.\n")
	b.WriteString("Return ONLY JSON.")

	return b.String()
}

// truncateRunes は文字単位で切る（マルチバイト文字を途中で割らない）
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
