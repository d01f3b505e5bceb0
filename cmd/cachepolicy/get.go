package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/cachepolicy"
)

func newGetCmd(a *app) *cobra.Command {
	var (
		delay    time.Duration
		value    string
		fail     bool
		repeat   int
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Run get-or-generate for one id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pol, err := a.policy(cmd.Context(), nil)
			if err != nil {
				return err
			}
			gen := func(ctx context.Context, id string) (string, time.Duration, error) {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return "", 0, ctx.Err()
				}
				if fail {
					return "", 0, errors.New("generator failed (--fail)")
				}
				if value != "" {
					return value, 0, nil
				}
				return fmt.Sprintf("%s@%s", id, time.Now().Format(time.RFC3339Nano)), 0, nil
			}

			for i := 0; i < repeat; i++ {
				if i > 0 {
					time.Sleep(interval)
				}
				start := time.Now()
				res, err := pol.GetOrGenerate(cmd.Context(), args[0], gen)
				printResult(cmd.OutOrStdout(), res, err, time.Since(start))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.DurationVar(&delay, "delay", 0, "generator latency")
	f.StringVar(&value, "value", "", "value to generate (default: id@timestamp)")
	f.BoolVar(&fail, "fail", false, "make the generator fail")
	f.IntVarP(&repeat, "repeat", "r", 1, "number of calls")
	f.DurationVar(&interval, "interval", time.Second, "pause between repeated calls")
	return cmd
}

func printResult(w io.Writer, res cachepolicy.Result[string], err error, took time.Duration) {
	source := "generated"
	switch {
	case err != nil:
		source = "error"
	case res.Cached != nil && res.Cached.IsStale:
		source = "stale"
	case res.Cached != nil:
		source = "cache"
	}
	fmt.Fprintf(w, "%-9s value=%q took=%s", source, res.Value, took.Round(time.Microsecond))
	if err != nil {
		fmt.Fprintf(w, " err=%v", err)
	}
	if r := res.Report; r != nil {
		fmt.Fprintf(w, " lookup=%s", r.Elapsed.Round(time.Microsecond))
		if !r.Stored.IsZero() {
			fmt.Fprintf(w, " stored=%s ttl=%s", r.Stored.Format(time.TimeOnly), r.TTL.Round(time.Millisecond))
		}
		if r.Err != nil {
			fmt.Fprintf(w, " lookupErr=%v", r.Err)
		}
	}
	fmt.Fprintln(w)
}
