package session

import "context"

// Require wraps fn so that every call looks up the session registered
// under name and passes it to fn ahead of the caller's arguments.
//
// The lookup happens on each call, never at wrap time, so a wrapper can be
// built before Configure runs. When the lookup fails the wrapper returns
// the zero Out and an error matching ErrNoSession without calling fn.
// Whatever fn returns, value or error, is passed through unchanged.
//
//	getUser := session.Require(reg, "users",
//	    func(ctx context.Context, s *session.Session, id string) (*session.Response, error) {
//	        return s.Get(ctx, "/users/"+id)
//	    })
//	resp, err := getUser(ctx, "42")
//
// Require panics if r is nil, name is empty or fn is nil.
func Require[In, Out any](r *Registry, name string, fn func(ctx context.Context, s *Session, in In) (Out, error)) func(ctx context.Context, in In) (Out, error) {
	checkBinding(r, name, fn == nil)
	return func(ctx context.Context, in In) (Out, error) {
		s, err := r.Session(name)
		if err != nil {
			var zero Out
			return zero, err
		}
		return fn(ctx, s, in)
	}
}

// RequireFunc is Require for functions that take no argument besides the
// session.
func RequireFunc[Out any](r *Registry, name string, fn func(ctx context.Context, s *Session) (Out, error)) func(ctx context.Context) (Out, error) {
	checkBinding(r, name, fn == nil)
	return func(ctx context.Context) (Out, error) {
		s, err := r.Session(name)
		if err != nil {
			var zero Out
			return zero, err
		}
		return fn(ctx, s)
	}
}

func checkBinding(r *Registry, name string, nilFn bool) {
	switch {
	case r == nil:
		panic("session: Require with nil registry")
	case name == "":
		panic("session: Require with empty session name")
	case nilFn:
		panic("session: Require with nil function for " + name)
	}
}
