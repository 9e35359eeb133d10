package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/quest/pkg/domain"
	"github.com/aretw0/quest/pkg/ports"
)

// PlayerField is the pseudo key matched against patterns to decide whether the
// player's display name is masked.
const PlayerField = "player"

const mask = domain.Redacted

type piiMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks, on save, the names of entities whose
// role matches one of the patterns, and the player's name when a pattern matches PlayerField.
// Masking is one way: a loaded record carries the mask.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, key string, s *domain.Session) error {
	// The engine keeps using the caller's record, so mask a copy.
	masked := s.Clone()
	if masked.SubjectName != "" && m.matches(PlayerField) {
		masked.SubjectName = mask
	}
	for role := range masked.Entities {
		if m.matches(role) {
			masked.Entities[role] = mask
		}
	}
	return m.next.Save(ctx, key, masked)
}

func (m *piiMiddleware) Load(ctx context.Context, key string) (*domain.Session, error) {
	return m.next.Load(ctx, key)
}

func (m *piiMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) matches(field string) bool {
	for _, p := range m.patterns {
		if p.MatchString(field) {
			return true
		}
	}
	return false
}
