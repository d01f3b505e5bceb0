// Package cachepolicy decides, per lookup, whether to serve a cached value,
// serve a stale value while a fresh one is generated, wait for generation,
// or give up with a timeout. Storage is pluggable; the package only needs a
// small Engine contract from it.
//
// Components:
//   - Client: the cache boundary. Validates keys, recomputes remaining TTL
//     from the stored record on every read and emits get/hit/miss hooks.
//   - Rule: compiled freshness rule (expiresIn or expiresAt, optional
//     staleIn/staleTimeout and generateTimeout). See Compile and Rule.TTL.
//   - Policy[V]: binds a rule, a client segment and a Codec[V]. GetOrGenerate
//     races the stale timer, the generation timeout and the generator and
//     delivers the first result exactly once.
//   - engine.Store: an Engine over any provider.Provider byte store
//     (Ristretto, BigCache, Redis).
//
// Usage:
//
//	st, _ := engine.New(engine.Config{Provider: p, Partition: "app"})
//	_ = st.Start(ctx)
//	cl, _ := cachepolicy.NewClient(st, cachepolicy.ClientOptions{})
//	pol, _ := cachepolicy.NewPolicy[User](cachepolicy.PolicyOptions[User]{
//	    Rule:    cachepolicy.RuleOptions{ExpiresIn: time.Minute, StaleIn: 40 * time.Second, StaleTimeout: 100 * time.Millisecond},
//	    Client:  cl,
//	    Segment: "user",
//	    Codec:   codec.JSON[User]{},
//	})
//	res, err := pol.GetOrGenerate(ctx, "42", loadUser)
package cachepolicy
