package toolset

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/effective-security/agentui/embed"
	"github.com/effective-security/agentui/pkg/metricskey"
	"github.com/effective-security/xlog"
)

// SearchConfig holds the search and auto-activation parameters.
type SearchConfig struct {
	// SimilarityFloor is the minimum cosine similarity for a semantic
	// match to be reported at all.
	SimilarityFloor float64 `json:"similarity_floor" yaml:"similarity_floor"`
	// SemanticLoadThreshold auto-activates semantic matches scoring at
	// or above it.
	SemanticLoadThreshold float64 `json:"semantic_load_threshold" yaml:"semantic_load_threshold"`
	// KeywordLoadThreshold auto-activates keyword matches scoring at or
	// above it. Keyword scores are sums of 1.0 per keyword hit plus 0.5
	// for a description hit, so 1.0 means at least one exact keyword hit.
	KeywordLoadThreshold float64 `json:"keyword_load_threshold" yaml:"keyword_load_threshold"`
	// TopK is the maximum number of results returned per search.
	TopK int `json:"top_k" yaml:"top_k"`
}

// DefaultSearchConfig returns the baseline parameters. The similarity
// floor of 0.3 is a reasonable baseline for small embedding models.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		SimilarityFloor:       0.3,
		SemanticLoadThreshold: 0.4,
		KeywordLoadThreshold:  1.0,
		TopK:                  3,
	}
}

// Match is a single ranked search result.
type Match struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Score       float64 `json:"score"`
}

// Search finds tools matching the query, semantically when embeddings
// are available and by keyword otherwise. Matches scoring at or above
// the activation threshold are loaded into the active set as a side
// effect. category filters candidates when non-empty; topK <= 0 uses
// the configured default.
func (m *Manager) Search(ctx context.Context, query, category string, topK int) []Match {
	started := time.Now()
	defer metricskey.PerfToolSearch.MeasureSince(started)
	metricskey.StatsToolSearches.IncrCounter(1)

	if topK <= 0 {
		topK = m.search.TopK
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	mode := "keyword"
	var matches []Match
	if m.embedder != nil && m.hasEmbeddings() {
		matches = m.semanticMatches(ctx, query, category)
		if matches != nil {
			mode = "semantic"
		}
	}
	if len(matches) == 0 {
		logger.ContextKV(ctx, xlog.DEBUG, "search_fallback", "keyword", "query", query)
		mode = "keyword"
		matches = m.keywordMatches(query, category)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}

	threshold := m.search.KeywordLoadThreshold
	if mode == "semantic" {
		threshold = m.search.SemanticLoadThreshold
	}

	var toLoad []string
	for _, match := range matches {
		if match.Score >= threshold {
			toLoad = append(toLoad, match.Name)
		}
	}
	if len(toLoad) > 0 {
		m.loadLocked(toLoad)
		metricskey.StatsToolsAutoLoaded.IncrCounter(float64(len(toLoad)), mode)
		logger.ContextKV(ctx, xlog.INFO,
			"loaded_tools", strings.Join(toLoad, ","),
			"mode", mode,
			"query", query)
	} else if len(matches) > 0 {
		logger.ContextKV(ctx, xlog.INFO,
			"found_tools", len(matches),
			"below_threshold", threshold,
			"mode", mode)
	}

	if matches == nil {
		matches = []Match{}
	}
	return matches
}

// semanticMatches scores every candidate by cosine similarity against
// the query embedding. Returns nil when the query embedding cannot be
// computed, so the caller falls back to keyword scoring.
func (m *Manager) semanticMatches(ctx context.Context, query, category string) []Match {
	queryVec, err := m.embedder.Embed(ctx, query)
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR, "reason", "query_embedding", "err", err.Error())
		return nil
	}

	matches := []Match{}
	for _, name := range m.order {
		reg := m.registry[name]
		if category != "" && reg.Category != category {
			continue
		}
		if len(reg.Embedding) == 0 {
			continue
		}
		similarity := embed.CosineSimilarity(queryVec, reg.Embedding)
		if similarity > m.search.SimilarityFloor {
			matches = append(matches, Match{
				Name:        name,
				Description: reg.Definition.Description,
				Category:    reg.Category,
				Score:       similarity,
			})
		}
	}
	return matches
}

// keywordMatches scores candidates lexically: 1.0 per configured
// keyword found in the lowered query, plus 0.5 when any query word
// longer than 3 characters appears in the description.
func (m *Manager) keywordMatches(query, category string) []Match {
	queryLower := strings.ToLower(query)
	var queryWords []string
	for _, w := range strings.Fields(queryLower) {
		if len(w) > 3 {
			queryWords = append(queryWords, w)
		}
	}

	var matches []Match
	for _, name := range m.order {
		reg := m.registry[name]
		if category != "" && reg.Category != category {
			continue
		}

		score := 0.0
		for _, keyword := range reg.Keywords {
			if strings.Contains(queryLower, strings.ToLower(keyword)) {
				score += 1.0
			}
		}
		descLower := strings.ToLower(reg.Definition.Description)
		for _, word := range queryWords {
			if strings.Contains(descLower, word) {
				score += 0.5
				break
			}
		}

		if score > 0 {
			matches = append(matches, Match{
				Name:        name,
				Description: reg.Definition.Description,
				Category:    reg.Category,
				Score:       score,
			})
		}
	}
	return matches
}
