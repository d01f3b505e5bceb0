package cachepolicy

import (
	"regexp"
	"strconv"
	"time"
)

const day = 24 * time.Hour

var timeOfDayRe = regexp.MustCompile(`^(\d\d?):(\d\d)$`)

// RuleOptions is the declarative rule as written by users. Exactly one of
// ExpiresIn and ExpiresAt must be set; StaleIn and StaleTimeout come as a
// pair. The zero value compiles to the no-op rule (never caches).
type RuleOptions struct {
	ExpiresIn       time.Duration `envconfig:"EXPIRES_IN" json:"expiresIn,omitempty"`
	ExpiresAt       string        `envconfig:"EXPIRES_AT" json:"expiresAt,omitempty"` // "H:MM" or "HH:MM", local to the record's clock
	StaleIn         time.Duration `envconfig:"STALE_IN" json:"staleIn,omitempty"`
	StaleTimeout    time.Duration `envconfig:"STALE_TIMEOUT" json:"staleTimeout,omitempty"`
	GenerateTimeout time.Duration `envconfig:"GENERATE_TIMEOUT" json:"generateTimeout,omitempty"`
}

// TimeOfDay is a wall-clock expiry point.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return strconv.Itoa(t.Hour) + ":" + pad2(t.Minute)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// Rule is a compiled RuleOptions. Build it with Compile.
type Rule struct {
	ExpiresIn       time.Duration
	ExpiresAt       *TimeOfDay
	StaleIn         time.Duration
	StaleTimeout    time.Duration
	GenerateTimeout time.Duration
}

// IsZero reports whether r is the no-op rule.
func (r Rule) IsZero() bool {
	return r.ExpiresIn == 0 && r.ExpiresAt == nil && r.StaleIn == 0 && r.GenerateTimeout == 0
}

// Compile validates opts. hasCache tells whether the rule will be backed by
// a cache; stale options make no sense without one.
func Compile(opts RuleOptions, hasCache bool) (Rule, error) {
	if opts == (RuleOptions{}) {
		return Rule{}, nil
	}

	for _, d := range []struct {
		name string
		v    time.Duration
	}{
		{"expiresIn", opts.ExpiresIn},
		{"staleIn", opts.StaleIn},
		{"staleTimeout", opts.StaleTimeout},
		{"generateTimeout", opts.GenerateTimeout},
	} {
		if d.v < 0 {
			return Rule{}, &RuleError{Field: d.name, Reason: "must not be negative"}
		}
	}

	hasIn, hasAt := opts.ExpiresIn > 0, opts.ExpiresAt != ""
	if hasIn == hasAt {
		return Rule{}, &RuleError{Field: "expiresIn/expiresAt", Reason: "exactly one of expiresIn or expiresAt is required"}
	}
	if (opts.StaleIn > 0) != (opts.StaleTimeout > 0) {
		return Rule{}, &RuleError{Field: "staleIn/staleTimeout", Reason: "both or neither must be set"}
	}

	var rule Rule
	if hasAt {
		if opts.StaleIn >= day {
			return Rule{}, &RuleError{Field: "staleIn", Reason: "must be less than one day when using expiresAt"}
		}
		at, err := parseTimeOfDay(opts.ExpiresAt)
		if err != nil {
			return Rule{}, err
		}
		rule.ExpiresAt = &at
	} else {
		if opts.StaleIn > 0 && opts.StaleIn >= opts.ExpiresIn {
			return Rule{}, &RuleError{Field: "staleIn", Reason: "must be less than expiresIn"}
		}
		if opts.StaleTimeout > 0 && opts.StaleTimeout >= opts.ExpiresIn {
			return Rule{}, &RuleError{Field: "staleTimeout", Reason: "must be less than expiresIn"}
		}
		if opts.StaleTimeout > 0 && opts.StaleTimeout >= opts.ExpiresIn-opts.StaleIn {
			return Rule{}, &RuleError{Field: "staleTimeout", Reason: "must be less than expiresIn - staleIn"}
		}
		rule.ExpiresIn = opts.ExpiresIn
	}

	if opts.StaleIn > 0 {
		if !hasCache {
			return Rule{}, &RuleError{Field: "staleIn", Reason: "stale options require a cache"}
		}
		rule.StaleIn = opts.StaleIn
		rule.StaleTimeout = opts.StaleTimeout
	}
	rule.GenerateTimeout = opts.GenerateTimeout
	return rule, nil
}

// MustCompile is like Compile but panics on error. Handy for package-level rules.
func MustCompile(opts RuleOptions, hasCache bool) Rule {
	r, err := Compile(opts, hasCache)
	if err != nil {
		panic(err)
	}
	return r
}

func parseTimeOfDay(s string) (TimeOfDay, error) {
	m := timeOfDayRe.FindStringSubmatch(s)
	if m == nil {
		return TimeOfDay{}, &RuleError{Field: "expiresAt", Reason: "invalid time string " + strconv.Quote(s)}
	}
	h, _ := strconv.Atoi(m[1])
	mi, _ := strconv.Atoi(m[2])
	if h > 23 || mi > 59 {
		return TimeOfDay{}, &RuleError{Field: "expiresAt", Reason: "time out of range " + strconv.Quote(s)}
	}
	return TimeOfDay{Hour: h, Minute: mi}, nil
}

// TTL returns the remaining lifetime at now of a record created at created.
// A zero created means now. The result is never negative; 0 means "do not
// cache" (no-op rule, expired, or created in the future).
func (r Rule) TTL(created, now time.Time) time.Duration {
	if created.IsZero() {
		created = now
	}
	age := now.Sub(created)
	if age < 0 {
		return 0
	}

	switch {
	case r.ExpiresIn > 0:
		return max(0, r.ExpiresIn-age)

	case r.ExpiresAt != nil:
		// Records older than a day can't be placed against the daily cutoff.
		if age > day {
			return 0
		}
		y, mo, d := created.Date()
		at := time.Date(y, mo, d, r.ExpiresAt.Hour, r.ExpiresAt.Minute, 0, 0, created.Location())
		expiresIn := at.Sub(created)
		if expiresIn <= 0 {
			expiresIn += day
		}
		return max(0, expiresIn-age)
	}
	return 0
}
