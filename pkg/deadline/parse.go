// Copyright 2024 The acquirecloud Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package deadline

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

type (
	// specExpr is the AST root for a textual timeout spec. The accepted forms:
	//   "5", "2.5"          - seconds
	//   "1h30m", "250ms"    - a duration built from the unit terms
	//   "1h 30m 5s"         - same, the terms may be space separated
	//   "1:30:05", "2:30"   - the clock form [HH:]MM:SS
	//   "@2026-01-02T15:04:05Z" - an absolute instant (RFC3339 or a local
	//                             datetime without the zone)
	specExpr struct {
		Abs   *string    `parser:"  @Abs"`
		Clock *string    `parser:"| @Clock"`
		Terms []specTerm `parser:"| @@ { @@ }"`
	}

	specTerm struct {
		Value float64 `parser:"@Number"`
		Unit  string  `parser:"[ @Unit ]"`
	}
)

var (
	specLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: `Abs`, Pattern: `@\S+`},
		{Name: `Clock`, Pattern: `\d+:\d+(:\d+(\.\d+)?)?`},
		{Name: `Number`, Pattern: `[-+]?\d*\.?\d+([eE][-+]?\d+)?`},
		{Name: `Unit`, Pattern: `(?i)(hours|hour|hrs|hr|h|minutes|minute|mins|min|ms|m|seconds|second|secs|sec|s|us|µs|ns)`},
		{Name: `whitespace`, Pattern: `\s+`},
	})

	specParser = participle.MustBuild[specExpr](
		participle.Lexer(specLexer),
	)
)

// the number of seconds in one unit of the term
var unitSeconds = map[string]float64{
	"hours": 3600, "hour": 3600, "hrs": 3600, "hr": 3600, "h": 3600,
	"minutes": 60, "minute": 60, "mins": 60, "min": 60, "m": 60,
	"seconds": 1, "second": 1, "secs": 1, "sec": 1, "s": 1,
	"ms": 1e-3, "us": 1e-6, "µs": 1e-6, "ns": 1e-9,
}

// Parse turns the textual form into a Spec. It is the surface for the places
// where the budget arrives as a string - the command line and configuration
// files. Any form Parse cannot recognize fails with ErrInvalidSpec.
func Parse(text string) (Spec, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty value: %w", ErrInvalidSpec)
	}
	e, err := specParser.ParseString("", text)
	if err != nil {
		return nil, fmt.Errorf("could not parse %q: %w", text, ErrInvalidSpec)
	}
	switch {
	case e.Abs != nil:
		return parseAbs(*e.Abs)
	case e.Clock != nil:
		return parseClock(*e.Clock)
	}
	return parseTerms(text, e.Terms)
}

func parseAbs(v string) (Spec, error) {
	v = strings.TrimPrefix(v, "@")
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return At(t), nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", v, time.Local); err == nil {
		return At(t), nil
	}
	return nil, fmt.Errorf("could not parse the instant %q: %w", v, ErrInvalidSpec)
}

func parseClock(v string) (Spec, error) {
	parts := strings.Split(v, ":")
	ff := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("could not parse the clock form %q: %w", v, ErrInvalidSpec)
		}
		ff[i] = f
	}
	if len(ff) == 2 {
		return Parts{Minutes: ff[0], Seconds: ff[1]}, nil
	}
	return Parts{Hours: ff[0], Minutes: ff[1], Seconds: ff[2]}, nil
}

func parseTerms(text string, terms []specTerm) (Spec, error) {
	if len(terms) == 1 && terms[0].Unit == "" {
		return Seconds(terms[0].Value), nil
	}
	var secs float64
	for _, t := range terms {
		mult, ok := unitSeconds[strings.ToLower(t.Unit)]
		if !ok {
			return nil, fmt.Errorf("a term without a unit in %q: %w", text, ErrInvalidSpec)
		}
		secs += t.Value * mult
	}
	return Seconds(secs), nil
}
