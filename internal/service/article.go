package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/enhancemyseo/enhancemyseo/internal/discovery"
	"github.com/enhancemyseo/enhancemyseo/internal/history"
	"github.com/enhancemyseo/enhancemyseo/internal/metrics"
	"github.com/enhancemyseo/enhancemyseo/internal/model"
	"github.com/enhancemyseo/enhancemyseo/internal/repository"
)

const maxInternalLinks = 8

// ArticleStore persists articles.
type ArticleStore interface {
	CreateArticle(ctx context.Context, a *model.Article) error
	GetArticle(ctx context.Context, userID, id string) (*model.Article, error)
	ListArticles(ctx context.Context, userID, cursor string, limit int) ([]*model.Article, string, error)
	UpdateArticleContent(ctx context.Context, a *model.Article) error
	MarkArticlePublished(ctx context.Context, userID, id, publishURL string, at time.Time) (*model.Article, error)
	DeleteArticle(ctx context.Context, userID, id string) error
}

// Researcher gathers background facts for a keyword. An empty string
// means no research is available.
type Researcher interface {
	Research(ctx context.Context, keyword string) string
}

// PageSearcher finds pages of a site relevant to a query.
type PageSearcher interface {
	Search(ctx context.Context, req discovery.Request) (*discovery.Result, error)
}

// ArticleInput defines input for article generation.
type ArticleInput struct {
	Keyword    string
	BrandID    string
	WebsiteURL string
	Research   *bool
}

// ArticleUpdate defines an edit. Nil fields are left unchanged.
type ArticleUpdate struct {
	Title   *string
	Content *string
}

// ArticleService generates and manages long-form articles.
type ArticleService struct {
	generator
	store      ArticleStore
	researcher Researcher
	pages      PageSearcher
	now        func() time.Time
}

// NewArticleService creates a new ArticleService. researcher and pages may be nil.
func NewArticleService(store ArticleStore, completer Completer, brands BrandLookup, researcher Researcher, pages PageSearcher, usage *UsageService, publisher HistoryPublisher, recorder metrics.Recorder, logger *slog.Logger) *ArticleService {
	return &ArticleService{
		generator:  newGenerator(completer, brands, usage, publisher, recorder, logger.With("component", "articles")),
		store:      store,
		researcher: researcher,
		pages:      pages,
		now:        nowUTC,
	}
}

// Generate writes an article for input.Keyword in the voice of the brand.
func (s *ArticleService) Generate(ctx context.Context, ac *model.AuthContext, input ArticleInput) (article *model.Article, err error) {
	keyword := strings.TrimSpace(input.Keyword)
	if keyword == "" {
		return nil, ErrKeywordRequired
	}
	if input.BrandID == "" {
		return nil, ErrBrandRequired
	}

	if err := s.checkQuota(ctx, ac, model.UsageArticles); err != nil {
		return nil, err
	}
	brand, err := s.brand(ctx, ac.UserID, input.BrandID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { s.finish(model.UsageArticles, start, err) }()

	research := ""
	if s.researcher != nil && (input.Research == nil || *input.Research) {
		research = s.researcher.Research(ctx, keyword)
	}

	site := strings.TrimSpace(input.WebsiteURL)
	if site == "" {
		site = brand.Website()
	}
	links := s.internalLinks(ctx, site, keyword)

	system := ""
	if research != "" {
		system = fmt.Sprintf("Use %s as closely as possible", research)
	}
	out, err := s.llm.CompleteWithSystem(ctx, system, articlePrompt(keyword, research, brand, links))
	if err != nil {
		return nil, err
	}

	content := trimToH1(out)
	title := extractH1(content)
	if title == "" {
		title = keyword
	}

	now := s.now()
	article = &model.Article{
		ID:             ulid.Make().String(),
		UserID:         ac.UserID,
		BrandProfileID: brand.ID,
		Keyword:        keyword,
		Title:          title,
		Content:        content,
		Research:       research,
		InternalLinks:  links,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateArticle(ctx, article); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}

	s.usage.Record(ctx, ac.UserID, ac.Tier, model.UsageArticles)
	s.publisher.PublishAsync(history.NewEvent(ac.UserID, model.HistoryArticle, article.ID, title))

	s.logger.Info("article generated",
		"user_id", ac.UserID,
		"article_id", article.ID,
		"internal_links", len(links),
		"research", research != "",
	)
	return article, nil
}

// internalLinks picks pages of site relevant to keyword. Discovery
// failures are logged and yield no links.
func (s *ArticleService) internalLinks(ctx context.Context, site, keyword string) []string {
	if s.pages == nil || site == "" {
		return []string{}
	}

	res, err := s.pages.Search(ctx, discovery.Request{URL: site, Query: keyword, Limit: maxInternalLinks})
	if err != nil {
		s.logger.Warn("content discovery failed", "site", site, "error", err)
		return []string{}
	}

	links := make([]string, 0, len(res.Pages))
	for _, p := range res.Pages {
		links = append(links, p.URL)
	}
	return links
}

func articlePrompt(keyword, research string, brand *model.BrandProfile, links []string) string {
	var b strings.Builder
	b.WriteString("DO NOT START WITH ANYTHING EXCEPT <H1>. Start every page off immediately, do not chat back to me in any way.\n")
	if research != "" {
		fmt.Fprintf(&b, "Use %s to inform all of your decisions and claims.\n", research)
	}
	fmt.Fprintf(&b, "You are writing for %s. Write from the perspective of this brand.\n", brand.Name)
	b.WriteString("DO NOT INCLUDE ANY EXTERNAL LINKS TO COMPETITORS.\n")
	fmt.Fprintf(&b, "Please write a long-form SEO-optimized article with 1500 words about the following keyword: %s.\n", keyword)
	b.WriteString("Answer in HTML, starting with one single <h1> tag, as this is going on a blog, do not give unnecessary HTML tags.\n")
	b.WriteString("Please use a lot of formatting, tables are great for ranking on Google.\n")
	b.WriteString("Always include a key takeaways table at the top giving the key information for this topic at the very top of the article.\n\n")

	tone := brand.Tone
	if tone == "" {
		tone = "professional"
	}
	fmt.Fprintf(&b, "The article should be written in a %s tone and framed as an expert piece.\n", tone)
	if brand.Guidelines != "" {
		fmt.Fprintf(&b, "Incorporate the brand guidelines:\n%s\n\n", brand.Guidelines)
	}
	if brand.TargetAudience != "" {
		fmt.Fprintf(&b, "The target audience is %s.\n", brand.TargetAudience)
	}
	if brand.BusinessType != "" {
		fmt.Fprintf(&b, "This is a %s so write from the perspective of that business.\n", brand.BusinessType)
	}

	if len(links) > 0 {
		b.WriteString("\nWhere relevant, link naturally to these pages from the brand's own website:\n")
		for _, l := range links {
			fmt.Fprintf(&b, "- %s\n", l)
		}
	}
	return b.String()
}

var h1Pattern = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
var tagPattern = regexp.MustCompile(`<[^>]+>`)

// trimToH1 drops anything the model wrote before the first <h1.
func trimToH1(content string) string {
	if i := strings.Index(strings.ToLower(content), "<h1"); i > 0 {
		return content[i:]
	}
	return strings.TrimSpace(content)
}

// extractH1 returns the plain text of the first h1 element.
func extractH1(content string) string {
	m := h1Pattern.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	text := tagPattern.ReplaceAllString(m[1], "")
	return strings.Join(strings.Fields(html.UnescapeString(text)), " ")
}

// List returns a page of the user's articles, newest first.
func (s *ArticleService) List(ctx context.Context, userID, cursor string, limit int) ([]*model.Article, string, error) {
	articles, next, err := s.store.ListArticles(ctx, userID, cursor, clampPageSize(limit))
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCursor) {
			return nil, "", ErrInvalidCursor
		}
		return nil, "", fmt.Errorf("list articles: %w", err)
	}
	return articles, next, nil
}

// Get returns an article owned by userID.
func (s *ArticleService) Get(ctx context.Context, userID, id string) (*model.Article, error) {
	a, err := s.store.GetArticle(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	return a, nil
}

// Update edits an article's title or content.
func (s *ArticleService) Update(ctx context.Context, userID, id string, update ArticleUpdate) (*model.Article, error) {
	a, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		a.Title = title
	}
	if update.Content != nil {
		a.Content = *update.Content
	}
	a.UpdatedAt = s.now()

	if err := s.store.UpdateArticleContent(ctx, a); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("update article: %w", err)
	}
	return a, nil
}

// Delete removes an article.
func (s *ArticleService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteArticle(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return ErrArticleNotFound
		}
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// Publish marks an article published under its brand's blog.
func (s *ArticleService) Publish(ctx context.Context, userID, id string) (*model.Article, error) {
	a, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	brand, err := s.brand(ctx, userID, a.BrandProfileID)
	if err != nil {
		if errors.Is(err, ErrBrandNotFound) {
			return nil, ErrNoPublishTarget
		}
		return nil, err
	}
	if brand == nil {
		return nil, ErrNoPublishTarget
	}

	publishURL := PublishURL(brand, a.Title)
	if publishURL == "" {
		return nil, ErrNoPublishTarget
	}

	published, err := s.store.MarkArticlePublished(ctx, userID, id, publishURL, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("publish article: %w", err)
	}
	return published, nil
}

// PublishURL builds the blog URL for a title under the brand's shop domain
// or, failing that, its website.
func PublishURL(brand *model.BrandProfile, title string) string {
	base := ""
	switch {
	case brand.ShopDomain != "":
		base = "https://" + brand.ShopDomain
	case brand.WebsiteURL != "":
		base = strings.TrimRight(brand.WebsiteURL, "/")
	default:
		return ""
	}
	return base + "/blogs/news/" + Slugify(title)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases s and joins its alphanumeric runs with hyphens.
func Slugify(s string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if slug == "" {
		return "article"
	}
	return slug
}
