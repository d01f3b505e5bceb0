package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/cachepolicy"
)

func newRuleCmd(a *app) *cobra.Command {
	var created []string
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Compile the configured rule and print TTLs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rule, err := cachepolicy.Compile(a.cfg.Rule, a.cfg.HasCache())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, describeRule(rule))

			now := time.Now()
			fmt.Fprintf(out, "ttl(now) = %s\n", rule.TTL(now, now))
			for _, s := range created {
				t, err := time.ParseInLocation(time.DateTime, s, time.Local)
				if err != nil {
					return fmt.Errorf("--created %q: %w", s, err)
				}
				fmt.Fprintf(out, "ttl(%s) = %s\n", s, rule.TTL(t, now))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&created, "created", nil, `creation times to evaluate ("2006-01-02 15:04:05", local)`)
	return cmd
}

func describeRule(r cachepolicy.Rule) string {
	if r.IsZero() {
		return "no-op rule (never cached)"
	}
	var s string
	if r.ExpiresAt != nil {
		s = "expiresAt=" + r.ExpiresAt.String()
	} else {
		s = "expiresIn=" + r.ExpiresIn.String()
	}
	if r.StaleIn > 0 {
		s += fmt.Sprintf(" staleIn=%s staleTimeout=%s", r.StaleIn, r.StaleTimeout)
	}
	if r.GenerateTimeout > 0 {
		s += " generateTimeout=" + r.GenerateTimeout.String()
	}
	return s
}
