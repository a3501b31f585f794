package assist

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pricewise-in/pricewise/internal/domain"
	"github.com/pricewise-in/pricewise/internal/metrics"
)

const systemPrompt = `You are a helpful shopping assistant for the Indian market.
You have the user's latest product search as context. Answer follow-up questions
about those results concisely. Reference specific products from the context when
relevant. Do not invent products, prices, or sellers.`

// maxHistoryEntryLen truncates stored exchanges so old answers cannot
// dominate the prompt.
const maxHistoryEntryLen = 200

type exchange struct {
	role string // "User" / "Assistant"
	text string
}

// snapshot is the session context captured at the start of an Ask, so
// provider calls run without holding the session lock.
type snapshot struct {
	id      string
	request domain.SearchRequest
	ranked  []domain.Product
	rec     domain.Recommendation
	history []exchange
}

// Session is a two-state conversational assistant over the latest search run.
// Until Begin is called it answers nothing; each new search replaces the
// context and clears the conversation.
type Session struct {
	completer    Completer
	searcher     Searcher
	similarityK  int
	historyDepth int
	logger       *zap.Logger

	mu      sync.Mutex
	ready   bool
	id      string
	request domain.SearchRequest
	ranked  []domain.Product
	rec     domain.Recommendation
	history []exchange
}

// NewSession creates an uninitialized assistant session.
// historyDepth is the number of prior exchanges carried into each prompt;
// similarityK bounds semantic retrieval per question.
func NewSession(completer Completer, searcher Searcher, similarityK, historyDepth int, logger *zap.Logger) *Session {
	return &Session{
		completer:    completer,
		searcher:     searcher,
		similarityK:  similarityK,
		historyDepth: historyDepth,
		logger:       logger,
	}
}

// Begin activates the session with the outcome of a search run, replacing
// any previous context and conversation.
func (s *Session) Begin(request domain.SearchRequest, ranked []domain.Product, rec domain.Recommendation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ready = true
	s.id = uuid.NewString()
	s.request = request
	s.ranked = ranked
	s.rec = rec
	s.history = nil
}

// ID returns the current session identifier, empty when uninitialized.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Ask answers a follow-up question about the active search. Returns
// ErrNoActiveSession before the first search completes. Provider failures
// degrade to a deterministic listing of relevant products.
func (s *Session) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", domain.ErrInvalidQuery
	}

	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return "", domain.ErrNoActiveSession
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	// Retrieval and completion work off the snapshot; a concurrent Begin
	// never waits behind provider calls.
	matches := s.semanticMatches(ctx, question, snap.ranked)
	prompt := buildPrompt(&snap, matches, question)

	answer, err := s.completer.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		s.logger.Warn("Assistant unavailable, listing relevant products", zap.Error(err))
		answer = s.fallbackAnswer(question, snap.ranked, matches)
	} else {
		answer = strings.TrimSpace(answer)
	}

	s.mu.Lock()
	// Drop the exchange if a new search replaced the session mid-flight.
	if s.ready && s.id == snap.id {
		s.appendHistoryLocked("User", question)
		s.appendHistoryLocked("Assistant", answer)
	}
	s.mu.Unlock()

	return answer, nil
}

// snapshotLocked copies the session context. Caller holds s.mu.
func (s *Session) snapshotLocked() snapshot {
	return snapshot{
		id:      s.id,
		request: s.request,
		ranked:  s.ranked,
		rec:     s.rec,
		history: append([]exchange(nil), s.history...),
	}
}

// buildPrompt assembles search context, semantic matches, history, and the
// question from a session snapshot.
func buildPrompt(snap *snapshot, matches []domain.Product, question string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "SEARCH CONTEXT:\nSearching for: %s\n", snap.request.Query())
	if ceiling, ok := snap.request.BudgetCeiling(); ok {
		fmt.Fprintf(&b, "Budget: up to ₹%d\n", ceiling)
	}
	fmt.Fprintf(&b, "Recommendation: %s\n", snap.rec.Summary())

	if len(snap.ranked) > 0 {
		b.WriteString("\nTop Products:\n")
		for i, p := range topProducts(snap.ranked, 3) {
			fmt.Fprintf(&b, "%d. %s - ₹%d from %s\n", i+1, p.Title(), p.PriceINR(), p.Seller())
		}
	}

	if len(matches) > 0 {
		b.WriteString("\nSimilar Products:\n")
		for _, p := range matches {
			fmt.Fprintf(&b, "- %s (₹%d from %s)\n", p.Title(), p.PriceINR(), p.Seller())
		}
	}

	b.WriteString("\nConversation History:\n")
	if len(snap.history) == 0 {
		b.WriteString("No previous conversation.\n")
	} else {
		for _, e := range snap.history {
			fmt.Fprintf(&b, "%s: %s\n", e.role, e.text)
		}
	}

	fmt.Fprintf(&b, "\nUser: %s\n", question)
	return b.String()
}

// semanticMatches maps similarity-search IDs back onto the ranked products.
func (s *Session) semanticMatches(ctx context.Context, question string, ranked []domain.Product) []domain.Product {
	ids := s.searcher.SimilaritySearch(ctx, question, s.similarityK)
	if len(ids) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Product, len(ranked))
	for i := range ranked {
		byID[ranked[i].ID()] = &ranked[i]
	}

	matches := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			matches = append(matches, *p)
		}
	}
	return matches
}

func (s *Session) appendHistoryLocked(role, text string) {
	if len(text) > maxHistoryEntryLen {
		// back off to a rune boundary so multibyte text (₹, devanagari)
		// is never split mid-rune
		cut := maxHistoryEntryLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	s.history = append(s.history, exchange{role: role, text: text})
	if window := s.historyDepth; window > 0 && len(s.history) > window {
		s.history = s.history[len(s.history)-window:]
	}
}

// fallbackAnswer lists the products most relevant to the question: semantic
// matches when the index answered, keyword overlap against titles otherwise.
func (s *Session) fallbackAnswer(question string, ranked, matches []domain.Product) string {
	metrics.FallbacksTotal.WithLabelValues("assist").Inc()

	if len(matches) == 0 {
		matches = lexicalMatches(question, ranked, s.similarityK)
	}

	if len(matches) == 0 {
		return "No products in the current results match that question."
	}

	var b strings.Builder
	b.WriteString("Here are the most relevant products from your search:\n")
	for i, p := range matches {
		fmt.Fprintf(&b, "%d. %s - ₹%d from %s\n", i+1, p.Title(), p.PriceINR(), p.Seller())
	}
	return strings.TrimRight(b.String(), "\n")
}

// lexicalMatches scores products by keyword overlap between the question and
// the title, highest overlap first, top products winning ties.
func lexicalMatches(question string, ranked []domain.Product, k int) []domain.Product {
	words := strings.Fields(strings.ToLower(question))
	if len(words) == 0 || len(ranked) == 0 {
		return nil
	}

	type scored struct {
		product domain.Product
		score   int
		pos     int
	}

	var candidates []scored
	for i := range ranked {
		title := strings.ToLower(ranked[i].Title())
		score := 0
		for _, w := range words {
			if len(w) >= 3 && strings.Contains(title, w) {
				score++
			}
		}
		if score > 0 {
			candidates = append(candidates, scored{product: ranked[i], score: score, pos: i})
		}
	}
	if len(candidates) == 0 {
		// no overlap at all, fall back to the ranking order
		return topProducts(ranked, k)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].pos < candidates[j].pos
	})

	if k > 0 && len(candidates) > k {
		candidates = candidates[:k]
	}
	out := make([]domain.Product, len(candidates))
	for i := range candidates {
		out[i] = candidates[i].product
	}
	return out
}

func topProducts(ranked []domain.Product, n int) []domain.Product {
	if len(ranked) > n {
		return ranked[:n]
	}
	return ranked
}
