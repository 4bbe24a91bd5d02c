package auth

import "context"

type ctxKey string

const ctxKeySub ctxKey = "sub"

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ctxKeySub, sub)
}

func SubjectFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKeySub).(string); ok {
		return s
	}
	return ""
}

// UserID resolves the acting user: the token subject when present, else the
// first non-empty candidate, else fallback.
func UserID(ctx context.Context, fallback string, candidates ...string) string {
	if s := SubjectFromContext(ctx); s != "" {
		return s
	}
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return fallback
}
