package ccdb

import (
	"strconv"
	"strings"

	"github.com/anthropics/calibdb/calibcore"
)

// Request is a parsed request string: a name path plus the Context it
// implies.
type Request struct {
	Path    NamePath
	Context *Context
}

// ParseRequest parses "<path>[:<run>[:<variation>[:<timestamp>]]]" per
// spec §4.8. Empty segments inherit the Context defaults.
func ParseRequest(s string) (Request, error) {
	pathStr, rest, hasRest := strings.Cut(s, ":")
	path, err := ParseNamePath(pathStr)
	if err != nil {
		return Request{}, &ParseRequestError{Input: s, Err: err}
	}

	ctx := NewContext()
	if hasRest {
		parts := strings.SplitN(rest, ":", 3)
		for len(parts) < 3 {
			parts = append(parts, "")
		}
		runStr, varStr, timeStr := parts[0], parts[1], parts[2]

		if runStr != "" {
			run, err := strconv.ParseInt(runStr, 10, 64)
			if err != nil {
				return Request{}, &ParseRequestError{Input: s, Err: &invalidRunNumberError{Text: runStr}}
			}
			ctx.WithRun(run)
		}
		if varStr != "" {
			ctx.WithVariation(varStr)
		}
		if timeStr != "" {
			t, err := calibcore.ParseTimestamp(timeStr)
			if err != nil {
				return Request{}, &ParseRequestError{Input: s, Err: err}
			}
			ctx.WithTimestamp(t)
		}
	}
	return Request{Path: path, Context: ctx}, nil
}

type invalidRunNumberError struct{ Text string }

func (e *invalidRunNumberError) Error() string {
	return "invalid run number: " + strconv.Quote(e.Text)
}
