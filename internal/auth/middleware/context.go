package auth

import "context"

type subjectKey struct{}

// WithSubject records the token subject: a service name for engine tokens,
// the user name for admin logins.
func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, subjectKey{}, sub)
}

func SubjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)
	return s
}

// Actor names who made a change, for the event log.
func Actor(ctx context.Context) string {
	if s := SubjectFromContext(ctx); s != "" {
		return s
	}
	return "anonymous"
}
