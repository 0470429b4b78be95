package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"lumiere/internal/domain/model"
	repo "lumiere/internal/repository"
	"lumiere/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func catalog() []model.Product {
	return []model.Product{ring("p1", "10"), ring("p2", "20"), ring("p3", "30"), ring("p4", "40")}
}

func TestRecommend_MissingQuery(t *testing.T) {
	uc := usecase.NewStylistUsecase(new(ProductRepoMock), nil, discardLogger())

	_, err := uc.Recommend(context.Background(), "  ")
	assertHTTPError(t, err, http.StatusBadRequest, "Missing query")
}

func TestRecommend_NoCompleter(t *testing.T) {
	products := new(ProductRepoMock)
	products.On("List", mock.Anything, repo.ProductListQuery{Limit: 50}).Return(catalog(), nil).Once()
	uc := usecase.NewStylistUsecase(products, nil, discardLogger())

	rec, err := uc.Recommend(context.Background(), "gift for my sister")

	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, rec.RecommendedIDs)
	assert.Equal(t, usecase.NoCompleterReasoning, rec.Reasoning)
}

func TestRecommend_CatalogErrorFallsBack(t *testing.T) {
	products := new(ProductRepoMock)
	products.On("List", mock.Anything, mock.Anything).Return(nil, errDB).Once()
	uc := usecase.NewStylistUsecase(products, new(CompleterMock), discardLogger())

	rec, err := uc.Recommend(context.Background(), "gold")

	require.NoError(t, err)
	assert.Empty(t, rec.RecommendedIDs)
	assert.NotNil(t, rec.RecommendedIDs)
	assert.Equal(t, usecase.FallbackReasoning, rec.Reasoning)
}

func TestRecommend_Completion(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		err       error
		wantIDs   []string
		reasoning string
	}{
		{
			name:      "filters unknown and duplicate ids",
			raw:       `{"recommendedProductIds":["p3","nope","p3","p1"],"reasoning":"Minimal and warm."}`,
			wantIDs:   []string{"p3", "p1"},
			reasoning: "Minimal and warm.",
		},
		{
			name:      "caps at three",
			raw:       `{"recommendedProductIds":["p1","p2","p3","p4"],"reasoning":"All of them."}`,
			wantIDs:   []string{"p1", "p2", "p3"},
			reasoning: "All of them.",
		},
		{
			name:      "empty reasoning",
			raw:       `{"recommendedProductIds":["p2"],"reasoning":" "}`,
			wantIDs:   []string{"p2"},
			reasoning: usecase.DefaultReasoning,
		},
		{
			name:      "upstream error",
			err:       errors.New("429"),
			wantIDs:   []string{},
			reasoning: usecase.FallbackReasoning,
		},
		{
			name:      "not json",
			raw:       "Sure! Here you go",
			wantIDs:   []string{},
			reasoning: usecase.FallbackReasoning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := new(ProductRepoMock)
			products.On("List", mock.Anything, mock.Anything).Return(catalog(), nil).Once()
			completer := new(CompleterMock)
			completer.On("CompleteJSON", mock.Anything, mock.MatchedBy(func(req usecase.CompletionRequest) bool {
				return req.SchemaName == "product_recommendation" &&
					strings.Contains(req.Prompt, `"something minimal"`) &&
					strings.Contains(req.Prompt, "ID: p4")
			})).Return(tt.raw, tt.err).Once()

			uc := usecase.NewStylistUsecase(products, completer, discardLogger())
			rec, err := uc.Recommend(context.Background(), "something minimal")

			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, rec.RecommendedIDs)
			assert.Equal(t, tt.reasoning, rec.Reasoning)
			completer.AssertExpectations(t)
		})
	}
}

func TestRecommend_LongQueryCutOnRuneBoundary(t *testing.T) {
	products := new(ProductRepoMock)
	products.On("List", mock.Anything, mock.Anything).Return(catalog(), nil).Once()
	query := strings.Repeat("a", 499) + "💍💍"
	want := `"` + strings.Repeat("a", 499) + `💍"`

	completer := new(CompleterMock)
	completer.On("CompleteJSON", mock.Anything, mock.MatchedBy(func(req usecase.CompletionRequest) bool {
		return utf8.ValidString(req.Prompt) &&
			strings.Contains(req.Prompt, want) &&
			!strings.Contains(req.Prompt, `\x`)
	})).Return(`{"recommendedProductIds":["p1"],"reasoning":"ok"}`, nil).Once()

	rec, err := usecase.NewStylistUsecase(products, completer, discardLogger()).Recommend(context.Background(), query)

	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, rec.RecommendedIDs)
	completer.AssertExpectations(t)
}

func TestEmailCopy(t *testing.T) {
	t.Run("invalid type", func(t *testing.T) {
		uc := usecase.NewEmailCopyUsecase(nil, discardLogger())
		_, err := uc.Generate(context.Background(), usecase.EmailCopyInput{Type: "spam"})
		assertHTTPError(t, err, http.StatusBadRequest, "invalid email type")
	})

	t.Run("no completer", func(t *testing.T) {
		uc := usecase.NewEmailCopyUsecase(nil, discardLogger())
		out, err := uc.Generate(context.Background(), usecase.EmailCopyInput{Type: usecase.EmailAbandonedCart})
		require.NoError(t, err)
		assert.Equal(t, "Your items are waiting", out.Subject)
	})

	t.Run("completion fills blanks", func(t *testing.T) {
		completer := new(CompleterMock)
		completer.On("CompleteJSON", mock.Anything, mock.MatchedBy(func(req usecase.CompletionRequest) bool {
			return strings.Contains(req.Prompt, "Customer Name: Valued Customer")
		})).Return(`{"subject":"New arrivals","body":"","cta":""}`, nil).Once()

		uc := usecase.NewEmailCopyUsecase(completer, discardLogger())
		out, err := uc.Generate(context.Background(), usecase.EmailCopyInput{Type: usecase.EmailNewCollection})

		require.NoError(t, err)
		assert.Equal(t, "New arrivals", out.Subject)
		assert.Equal(t, "We saved your items for you", out.Body)
		assert.Equal(t, "Complete your order", out.CTA)
	})

	t.Run("completion error", func(t *testing.T) {
		completer := new(CompleterMock)
		completer.On("CompleteJSON", mock.Anything, mock.Anything).Return("", errors.New("boom")).Once()

		uc := usecase.NewEmailCopyUsecase(completer, discardLogger())
		out, err := uc.Generate(context.Background(), usecase.EmailCopyInput{Type: usecase.EmailOrderConfirmation, CustomerName: "Ada"})

		require.NoError(t, err)
		assert.Equal(t, "We saved your items", out.Subject)
	})
}
