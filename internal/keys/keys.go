package keys

import (
	"errors"
	"regexp"
	"strings"
)

var partitionRe = regexp.MustCompile(`^[\w\-]+$`)

var (
	ErrEmptySegment = errors.New("empty string")
	ErrSegmentNull  = errors.New("includes null character")
	ErrSegmentColon = errors.New("includes ':' separator")
	ErrBadPartition = errors.New("partition must match [A-Za-z0-9_-]+")
)

// ValidatePartition checks a partition (top-level namespace) name.
func ValidatePartition(p string) error {
	if !partitionRe.MatchString(p) {
		return ErrBadPartition
	}
	return nil
}

// ValidateSegment checks a segment name. Segments may not contain the key
// separator so that partition:segment:id stays unambiguous.
func ValidateSegment(s string) error {
	switch {
	case s == "":
		return ErrEmptySegment
	case strings.IndexByte(s, 0) >= 0:
		return ErrSegmentNull
	case strings.IndexByte(s, ':') >= 0:
		return ErrSegmentColon
	}
	return nil
}

// Storage returns the provider key for one record.
func Storage(partition, segment, id string) string {
	return partition + ":" + segment + ":" + id
}
