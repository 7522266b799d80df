package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/stepwise/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

type redactionMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware masks the values of keys matching any pattern, at any depth,
// when data is read. Writes pass through untouched, so the stored answers stay usable by
// the wizard; wrap only the stores handed to operators and other readers.
func NewRedactionMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &redactionMiddleware{next: next, patterns: patterns}
	}
}

// ExactKeys turns attribute names into anchored, literal patterns.
// Typical input is wizard.Registry.PersonalAttributes().
func ExactKeys(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = "^" + regexp.QuoteMeta(k) + "$"
	}
	return out
}

func (m *redactionMiddleware) Save(ctx context.Context, sessionID string, data map[string]any) error {
	return m.next.Save(ctx, sessionID, data)
}

func (m *redactionMiddleware) Load(ctx context.Context, sessionID string) (map[string]any, error) {
	data, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	masked := deepCopyMap(data)
	maskMap(masked, m.patterns)
	return masked, nil
}

func (m *redactionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		if matchesAny(k, patterns) {
			// nil stays nil: an unanswered question is not sensitive.
			if v != nil {
				m[k] = Mask
			}
			continue
		}
		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, patterns)
		}
	}
}

func matchesAny(key string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
