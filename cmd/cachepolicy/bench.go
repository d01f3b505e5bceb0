package main

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/unkn0wn-root/cachepolicy"
)

// counters is a Hooks implementation tallying client signals.
type counters struct {
	gets, hits, notFound, expired, badKey atomic.Int64
}

func (c *counters) Get(cachepolicy.Key)                                 { c.gets.Add(1) }
func (c *counters) Hit(cachepolicy.Key, cachepolicy.CachedView[[]byte]) { c.hits.Add(1) }
func (c *counters) Miss(_ cachepolicy.Key, r cachepolicy.MissReason, _ *cachepolicy.StoredRecord) {
	switch r {
	case cachepolicy.MissNotFound:
		c.notFound.Add(1)
	case cachepolicy.MissExpired:
		c.expired.Add(1)
	case cachepolicy.MissBadKey:
		c.badKey.Add(1)
	}
}

type benchResult struct {
	calls, generated, stale, timeouts, failures atomic.Int64
}

func newBenchCmd(a *app) *cobra.Command {
	var (
		total       int
		concurrency int
		keys        int
		delay       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Drive concurrent get-or-generate calls over a random key set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if keys <= 0 || total <= 0 || concurrency <= 0 {
				return errors.New("-n, -c and --keys must be positive")
			}
			hooks := &counters{}
			pol, err := a.policy(cmd.Context(), hooks)
			if err != nil {
				return err
			}

			ids := make([]string, keys)
			for i := range ids {
				ids[i] = uuid.NewString()
			}

			var res benchResult
			gen := func(ctx context.Context, id string) (string, time.Duration, error) {
				res.generated.Add(1)
				time.Sleep(delay)
				return id, 0, nil
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(concurrency)
			start := time.Now()
			for i := 0; i < total; i++ {
				id := ids[i%keys]
				g.Go(func() error {
					r, err := pol.GetOrGenerate(ctx, id, gen)
					res.calls.Add(1)
					switch {
					case errors.Is(err, cachepolicy.ErrServerTimeout):
						res.timeouts.Add(1)
					case err != nil:
						res.failures.Add(1)
					case r.Cached != nil && r.Cached.IsStale:
						res.stale.Add(1)
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			took := time.Since(start)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "calls=%d took=%s rate=%.0f/s\n", res.calls.Load(), took.Round(time.Millisecond), float64(res.calls.Load())/took.Seconds())
			fmt.Fprintf(out, "generated=%d stale=%d timeouts=%d failures=%d\n", res.generated.Load(), res.stale.Load(), res.timeouts.Load(), res.failures.Load())
			fmt.Fprintf(out, "gets=%d hits=%d notFound=%d expired=%d\n", hooks.gets.Load(), hooks.hits.Load(), hooks.notFound.Load(), hooks.expired.Load())
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVarP(&total, "requests", "n", 1000, "total calls")
	f.IntVarP(&concurrency, "concurrency", "c", 16, "parallel callers")
	f.IntVar(&keys, "keys", 100, "distinct ids")
	f.DurationVar(&delay, "delay", 5*time.Millisecond, "generator latency")
	return cmd
}
