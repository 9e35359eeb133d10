package runtime

import (
	"strings"
	"unicode/utf8"

	"github.com/aretw0/quest/pkg/domain"
)

// phraseTokens is how many leading description tokens the phrase pass considers.
const phraseTokens = 4

// Resolver maps free-form input to one of a scene's choices.
// It is stateless and safe for concurrent use.
type Resolver struct {
	minKeywordLength int
	stopWords        map[string]struct{}
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithMinKeywordLength makes the phrase and keyword passes ignore description tokens
// shorter than n runes. Zero disables the filter.
func WithMinKeywordLength(n int) ResolverOption {
	return func(r *Resolver) {
		r.minKeywordLength = n
	}
}

// WithStopWords makes the phrase and keyword passes ignore the given tokens.
func WithStopWords(words ...string) ResolverOption {
	return func(r *Resolver) {
		if r.stopWords == nil {
			r.stopWords = make(map[string]struct{}, len(words))
		}
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				r.stopWords[w] = struct{}{}
			}
		}
	}
}

// NewResolver creates a resolver. With no options every description token is considered.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve picks a choice of the scene for the given input.
// Passes run in order (exact, phrase, keyword) and within a pass the first declared choice wins.
// It reports false when nothing matches.
func (r *Resolver) Resolve(scene domain.Scene, input string) (domain.Match, bool) {
	text := strings.ToLower(strings.TrimSpace(input))
	if text == "" || len(scene.Transitions) == 0 {
		return domain.Match{}, false
	}

	for _, t := range scene.Transitions {
		if text == t.ActionID {
			return domain.Match{ActionID: t.ActionID, Tier: domain.TierExact}, true
		}
	}

	for _, t := range scene.Transitions {
		if strings.Contains(text, t.ActionID) {
			return domain.Match{ActionID: t.ActionID, Tier: domain.TierPhrase}, true
		}
		tokens := strings.Fields(strings.ToLower(t.Description))
		if len(tokens) > phraseTokens {
			tokens = tokens[:phraseTokens]
		}
		if r.anyIn(tokens, text) {
			return domain.Match{ActionID: t.ActionID, Tier: domain.TierPhrase}, true
		}
	}

	for _, t := range scene.Transitions {
		if r.anyIn(strings.Fields(strings.ToLower(t.Description)), text) {
			return domain.Match{ActionID: t.ActionID, Tier: domain.TierKeyword}, true
		}
	}

	return domain.Match{}, false
}

func (r *Resolver) anyIn(tokens []string, text string) bool {
	for _, tok := range tokens {
		if tok == "" || r.ignored(tok) {
			continue
		}
		if strings.Contains(text, tok) {
			return true
		}
	}
	return false
}

func (r *Resolver) ignored(token string) bool {
	if r.minKeywordLength > 0 && utf8.RuneCountInString(token) < r.minKeywordLength {
		return true
	}
	_, stop := r.stopWords[token]
	return stop
}
