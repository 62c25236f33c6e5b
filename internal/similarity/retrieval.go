package similarity

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/go-ego/gse"

	"report-reconciliation-engine/internal/models"
	engerrors "report-reconciliation-engine/pkg/errors"
	"report-reconciliation-engine/pkg/logger"
)

// Case is one retrievable historical record: an identifier and its combined
// descriptive text.
type Case struct {
	ID   string
	Text string
}

// RetrieverConfig holds the retrieval options.
type RetrieverConfig struct {
	// MaxFeatures caps the TF-IDF vocabulary at the most frequent terms.
	MaxFeatures int
	// MinSimilarity filters near-zero matches before top-N truncation.
	// Callers that need weak results anyway lower this floor.
	MinSimilarity float64
}

// DefaultRetrieverConfig is the full-corpus profile: 500 features.
func DefaultRetrieverConfig() *RetrieverConfig {
	return &RetrieverConfig{MaxFeatures: 500, MinSimilarity: 0.05}
}

// CompactRetrieverConfig is the small-corpus profile used for valuation
// anomaly lookups: 100 features.
func CompactRetrieverConfig() *RetrieverConfig {
	return &RetrieverConfig{MaxFeatures: 100, MinSimilarity: 0.05}
}

// Validate checks the configuration.
func (c *RetrieverConfig) Validate() error {
	if c.MaxFeatures <= 0 {
		return engerrors.NewConfigError(engerrors.CodeInvalidConfig,
			"max features must be positive, got %d", c.MaxFeatures)
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		return engerrors.NewConfigError(engerrors.CodeInvalidConfig,
			"min similarity must be in [0,1], got %f", c.MinSimilarity)
	}
	return nil
}

// Retriever indexes a case corpus for cosine-similarity lookup. The corpus
// text is segmented with a CJK-aware tokenizer, vectorized with TF-IDF over
// a capped vocabulary, and compared by cosine similarity.
//
// The index is immutable after construction; concurrent FindSimilar calls
// are safe.
type Retriever struct {
	config     *RetrieverConfig
	segmenter  gse.Segmenter
	corpus     []Case
	vocabulary map[string]int
	idf        []float64
	docVectors [][]float64
	log        logger.Logger
}

// NewRetriever builds the index over the corpus. Construction segments and
// vectorizes every case up front so queries only pay for themselves.
func NewRetriever(config *RetrieverConfig, corpus []Case, log logger.Logger) (*Retriever, error) {
	if config == nil {
		config = DefaultRetrieverConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	r := &Retriever{
		config: config,
		corpus: corpus,
		log:    log.WithComponent("retrieval"),
	}
	if err := r.segmenter.LoadDict(); err != nil {
		return nil, engerrors.Wrap(err, engerrors.CategoryConfiguration,
			engerrors.CodeInvalidConfig, "failed to load segmentation dictionary")
	}

	r.buildIndex()
	r.log.WithFields(logger.Fields{
		"cases": len(corpus),
		"terms": len(r.vocabulary),
	}).Info("case index built")
	return r, nil
}

// buildIndex computes the capped vocabulary, IDF weights and normalized
// document vectors.
func (r *Retriever) buildIndex() {
	docTokens := make([][]string, len(r.corpus))
	termCounts := make(map[string]int)
	docFrequency := make(map[string]int)

	for i, c := range r.corpus {
		tokens := r.tokenize(c.Text)
		docTokens[i] = tokens

		seen := make(map[string]bool)
		for _, tok := range tokens {
			termCounts[tok]++
			if !seen[tok] {
				docFrequency[tok]++
				seen[tok] = true
			}
		}
	}

	// Keep the MaxFeatures most frequent terms, ties broken lexically so
	// the vocabulary is deterministic.
	terms := make([]string, 0, len(termCounts))
	for term := range termCounts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if termCounts[terms[i]] != termCounts[terms[j]] {
			return termCounts[terms[i]] > termCounts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > r.config.MaxFeatures {
		terms = terms[:r.config.MaxFeatures]
	}

	r.vocabulary = make(map[string]int, len(terms))
	for i, term := range terms {
		r.vocabulary[term] = i
	}

	n := float64(len(r.corpus))
	r.idf = make([]float64, len(terms))
	for term, i := range r.vocabulary {
		r.idf[i] = math.Log((1+n)/(1+float64(docFrequency[term]))) + 1
	}

	r.docVectors = make([][]float64, len(r.corpus))
	for i, tokens := range docTokens {
		r.docVectors[i] = r.vectorize(tokens)
	}
}

// FindSimilar ranks the corpus against the query and returns at most topN
// candidates scoring above the similarity floor, best first.
func (r *Retriever) FindSimilar(query string, topN int) []models.SimilarityCandidate {
	queryVector := r.vectorize(r.tokenize(query))

	var candidates []models.SimilarityCandidate
	for i, docVector := range r.docVectors {
		score := dot(queryVector, docVector)
		if score <= r.config.MinSimilarity {
			continue
		}
		candidates = append(candidates, models.SimilarityCandidate{
			SourceID: "query",
			TargetID: r.corpus[i].ID,
			Score:    score,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if topN > 0 && len(candidates) > topN {
		candidates = candidates[:topN]
	}

	r.log.WithFields(logger.Fields{
		"matches": len(candidates),
	}).Debug("similarity query complete")
	return candidates
}

// tokenize segments text into terms, dropping whitespace and punctuation
// tokens.
func (r *Retriever) tokenize(text string) []string {
	var tokens []string
	for _, tok := range r.segmenter.Cut(text, true) {
		tok = strings.TrimSpace(tok)
		if tok == "" || isPunctuation(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// vectorize maps tokens onto the vocabulary as an L2-normalized TF-IDF
// vector. Out-of-vocabulary tokens are ignored.
func (r *Retriever) vectorize(tokens []string) []float64 {
	vector := make([]float64, len(r.vocabulary))
	for _, tok := range tokens {
		if i, ok := r.vocabulary[tok]; ok {
			vector[i]++
		}
	}

	norm := 0.0
	for i := range vector {
		vector[i] *= r.idf[i]
		norm += vector[i] * vector[i]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vector {
			vector[i] /= norm
		}
	}
	return vector
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func isPunctuation(tok string) bool {
	for _, r := range tok {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}
