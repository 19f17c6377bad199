// Package session manages named, pooled HTTP client sessions.
//
// A Registry holds one Config per name. Configure turns every config into a
// live Session: a resty client bound to the origin (scheme and host) of the
// config's base URL, with its own connection limit, optional DNS cache and
// TLS settings. Business code receives sessions by name through Require,
// RequireFunc or the HTTP Middleware, which look the session up on every
// call.
//
// # Lifecycle
//
//	reg := session.NewRegistry()
//	_ = reg.Add(session.NewConfig("billing", "https://billing.example.com/v2",
//	    session.WithConnLimit(5)))
//	if err := reg.Configure(ctx); err != nil {
//	    return err
//	}
//	defer reg.Close(ctx)
//
//	status := session.RequireFunc(reg, "billing",
//	    func(ctx context.Context, s *session.Session) (int, error) {
//	        resp, err := s.Get(ctx, "/health") // https://billing.example.com/health
//	        if err != nil {
//	            return 0, err
//	        }
//	        return resp.StatusCode, nil
//	    })
//
// Configure runs once; a second call returns ErrAlreadyConfigured. Missing
// sessions surface as errors matching ErrNoSession.
package session
