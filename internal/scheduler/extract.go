package scheduler

import (
	"fmt"
	"regexp"
	"strings"
)

var numericJobIDRe = regexp.MustCompile(`^\d+$`)

// FieldRule extracts a job ID from submission output by position.
//
// The output is split on whitespace (all lines together) and the token at
// Field is taken; characters in Trim are then stripped from both ends. The
// position of the ID differs between scheduler versions, which is why it is
// configurable rather than matched by pattern.
type FieldRule struct {
	Field int
	Trim  string
}

// Extract returns the job ID found in output.
func (r FieldRule) Extract(output string) (string, error) {
	fields := strings.Fields(output)
	if r.Field < 0 || r.Field >= len(fields) {
		return "", fmt.Errorf("%w: field %d not present in %q", ErrJobIDParseFailed, r.Field, strings.TrimSpace(output))
	}
	id := strings.Trim(fields[r.Field], r.Trim)
	if !numericJobIDRe.MatchString(id) {
		return "", fmt.Errorf("%w: field %d is %q", ErrJobIDParseFailed, r.Field, fields[r.Field])
	}
	return id, nil
}
