package graph

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrInvalidArgument reports a malformed encode input. Decoding never
// returns it: stale handle strings are expected when schemas evolve, so
// the decoder signals "no match" instead of failing.
var ErrInvalidArgument = errors.New("invalid argument")

// Direction is the side of a column a connection attaches to.
type Direction string

const (
	DirIn  Direction = "in"
	DirOut Direction = "out"
)

var handlePattern = regexp.MustCompile(`^col-(\d+)-(in|out)$`)

// EncodeHandle builds the connection-point id for a column. Handles are
// derived purely from the column id and direction, never from counters,
// so rebuilding the graph from the same schema reproduces the same edge
// endpoints.
func EncodeHandle(columnID int64, dir Direction) (string, error) {
	if columnID <= 0 {
		return "", fmt.Errorf("%w: column id must be positive, got %d", ErrInvalidArgument, columnID)
	}
	if dir != DirIn && dir != DirOut {
		return "", fmt.Errorf("%w: direction must be %q or %q", ErrInvalidArgument, DirIn, DirOut)
	}
	return fmt.Sprintf("col-%d-%s", columnID, dir), nil
}

// DecodeHandle parses a handle id back to its column id. The second
// return is false when the string is not a handle this package produced.
func DecodeHandle(handleID string) (int64, bool) {
	m := handlePattern.FindStringSubmatch(handleID)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
