package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/enhancemyseo/enhancemyseo/internal/history"
	"github.com/enhancemyseo/enhancemyseo/internal/llm"
	"github.com/enhancemyseo/enhancemyseo/internal/metrics"
	"github.com/enhancemyseo/enhancemyseo/internal/model"
)

const (
	defaultKeywordCount = 20
	maxKeywordCount     = 50
)

// KeywordInput defines input for keyword generation.
type KeywordInput struct {
	Topic   string
	BrandID string
	Count   int
}

// KeywordService generates SEO keyword ideas.
type KeywordService struct {
	generator
}

// NewKeywordService creates a new KeywordService.
func NewKeywordService(completer Completer, brands BrandLookup, usage *UsageService, publisher HistoryPublisher, recorder metrics.Recorder, logger *slog.Logger) *KeywordService {
	return &KeywordService{
		generator: newGenerator(completer, brands, usage, publisher, recorder, logger.With("component", "keywords")),
	}
}

// Generate asks the LLM for keyword ideas. The decoded array is returned
// as the model produced it.
func (s *KeywordService) Generate(ctx context.Context, ac *model.AuthContext, input KeywordInput) (keywords []string, err error) {
	topic := strings.TrimSpace(input.Topic)
	if topic == "" {
		return nil, ErrTopicRequired
	}
	count := input.Count
	if count <= 0 {
		count = defaultKeywordCount
	}
	if count > maxKeywordCount {
		count = maxKeywordCount
	}

	if err := s.checkQuota(ctx, ac, model.UsageKeywords); err != nil {
		return nil, err
	}
	brand, err := s.brand(ctx, ac.UserID, input.BrandID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { s.finish(model.UsageKeywords, start, err) }()

	out, err := s.llm.Complete(ctx, keywordPrompt(topic, count, brand))
	if err != nil {
		return nil, err
	}

	keywords, err = llm.ExtractJSONArray(out)
	if err != nil {
		s.logger.Warn("keyword response not a JSON array", "user_id", ac.UserID, "error", err)
		return nil, llm.ErrInvalidResponse
	}

	s.usage.Record(ctx, ac.UserID, ac.Tier, model.UsageKeywords)
	s.publisher.PublishAsync(history.NewEvent(ac.UserID, model.HistoryKeywords, "",
		fmt.Sprintf("%d keywords for %q", len(keywords), topic)))

	return keywords, nil
}

func keywordPrompt(topic string, count int, brand *model.BrandProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d SEO keyword ideas for the topic: %s.\n", count, topic)
	b.WriteString("Mix short-tail and long-tail keywords with clear search intent.\n")
	if brand != nil {
		fmt.Fprintf(&b, "The keywords are for %s", brand.Name)
		if brand.BusinessType != "" {
			fmt.Fprintf(&b, ", a %s", brand.BusinessType)
		}
		b.WriteString(".\n")
		if brand.TargetAudience != "" {
			fmt.Fprintf(&b, "Target audience: %s.\n", brand.TargetAudience)
		}
		if len(brand.Keywords) > 0 {
			fmt.Fprintf(&b, "Existing focus keywords: %s.\n", strings.Join(brand.Keywords, ", "))
		}
	}
	b.WriteString("Respond with only a JSON array of strings and nothing else.")
	return b.String()
}
