package discovery

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/enhancemyseo/enhancemyseo/internal/model"
)

const (
	patternPoints    = 10
	datePathPoints   = 8
	hintPoints       = 5
	articlePoints    = 3
	keywordCap       = 9
	minClassifyScore = 5
)

var datePath = regexp.MustCompile(`/\d{4}/\d{2}(/|$)`)

type keywordWeight struct {
	word   string
	points int
}

type typeRule struct {
	pattern  *regexp.Regexp
	keywords []keywordWeight
	hints    []string
}

var typeRules = map[model.PageType]typeRule{
	model.PageBlog: {
		pattern: regexp.MustCompile(`(^|/)(blog|blogs|news|articles?|posts?|journal|stories|insights|guides)(/|$)`),
		keywords: []keywordWeight{
			{"posted on", 3}, {"published", 2}, {"read more", 2}, {"author", 2},
			{"min read", 3}, {"comments", 2}, {"share this", 2},
		},
		hints: []string{"article", "blogposting", "newsarticle"},
	},
	model.PageProduct: {
		pattern: regexp.MustCompile(`(^|/)(products?|item|p)/[^/]+`),
		keywords: []keywordWeight{
			{"add to cart", 3}, {"buy now", 3}, {"in stock", 2}, {"price", 2},
			{"sku", 2}, {"add to bag", 3}, {"reviews", 2},
		},
		hints: []string{"product", "offer"},
	},
	model.PageService: {
		pattern: regexp.MustCompile(`(^|/)(services?|solutions|what-we-do|consulting)(/|$)`),
		keywords: []keywordWeight{
			{"our services", 3}, {"get a quote", 3}, {"book a consultation", 3},
			{"contact us", 2}, {"we offer", 2}, {"pricing", 2},
		},
		hints: []string{"service", "professionalservice"},
	},
	model.PageCategory: {
		pattern: regexp.MustCompile(`(^|/)(collections?|categor(y|ies)|catalog|shop|department|c)(/|$)`),
		keywords: []keywordWeight{
			{"sort by", 3}, {"filter", 2}, {"products found", 3}, {"showing", 2},
			{"view all", 2}, {"results", 2},
		},
		hints: []string{"collectionpage", "itemlist", "offercatalog"},
	},
	model.PageAbout: {
		pattern: regexp.MustCompile(`(^|/)(about|about-us|our-story|team|who-we-are|company)(/|$)`),
		keywords: []keywordWeight{
			{"our story", 3}, {"our mission", 3}, {"founded", 2}, {"our team", 3},
			{"who we are", 3}, {"our values", 2},
		},
		hints: []string{"aboutpage"},
	},
}

// ClassifyURL classifies a page from its URL alone.
func ClassifyURL(raw string) (model.PageType, int) {
	u, err := url.Parse(raw)
	if err != nil {
		return model.PageOther, 0
	}
	return classify(u.Path, nil)
}

// classify scores every page type and returns the winner. signals may be
// nil when the page was not fetched.
func classify(path string, signals *pageSignals) (model.PageType, int) {
	path = strings.ToLower(path)

	best, bestScore := model.PageOther, 0
	for _, pt := range model.PageTypes {
		score := scoreType(pt, path, signals)
		if score > bestScore {
			best, bestScore = pt, score
		}
	}

	if bestScore < minClassifyScore {
		return model.PageOther, bestScore
	}
	return best, bestScore
}

func scoreType(pt model.PageType, path string, signals *pageSignals) int {
	rule := typeRules[pt]
	score := 0

	if rule.pattern.MatchString(path) {
		score += patternPoints
	}
	if pt == model.PageBlog && datePath.MatchString(path) {
		score += datePathPoints
	}

	if signals == nil {
		return score
	}

	kw := 0
	for _, k := range rule.keywords {
		if strings.Contains(signals.Text, k.word) {
			kw += k.points
		}
	}
	score += min(kw, keywordCap)

	if hasHint(rule.hints, signals) {
		score += hintPoints
	}
	if pt == model.PageBlog && signals.HasArticle {
		score += articlePoints
	}
	return score
}

func hasHint(hints []string, signals *pageSignals) bool {
	for _, h := range hints {
		if signals.OGType == h {
			return true
		}
		for _, st := range signals.SchemaTypes {
			if strings.EqualFold(st, h) {
				return true
			}
		}
	}
	return false
}
