// Package command parses the create_poll slash-command arguments into
// poll-creation options.
package command

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vncsmyrnk/chatpoll/internal/core/domain"
)

// offsetPattern matches an explicit zone suffix on an ISO-8601 timestamp.
var offsetPattern = regexp.MustCompile(`([+-]\d{2}:?\d{2}|Z)$`)

const naiveLayout = "2006-01-02T15:04:05"

// Parse turns tokenized command arguments into creation options. Tokens
// are key=value pairs, optionally prefixed with "--"; a key given without
// a value takes its permissive default (visibility=open,
// show_results=always, single_choice=true). An unknown key fails the
// whole command. senderUTCOffset is the sender's zone offset in hours and
// is applied to finish_at timestamps that carry no explicit offset.
func Parse(args []string, senderUTCOffset float64, now time.Time) (domain.CreatePollOptions, error) {
	opts := domain.CreatePollOptions{ShowResults: true}

	for _, arg := range args {
		arg = strings.TrimPrefix(arg, "--")
		key, value, hasValue := strings.Cut(arg, "=")

		switch key {
		case "question":
			opts.Question = value
		case "choice":
			opts.Choices = append(opts.Choices, value)
		case "visibility":
			if !hasValue {
				value = "open"
			}
			opts.IsConfidential = value == "confidential"
		case "show_results":
			if !hasValue {
				value = "always"
			}
			opts.ShowResults = value == "always"
		case "single_choice":
			if !hasValue {
				value = "true"
			}
			opts.SingleChoice = parseBoolish(value)
		case "finish_at":
			at, err := parseFinishAt(value, senderUTCOffset)
			if err != nil {
				return domain.CreatePollOptions{}, err
			}
			opts.FinishAt = &at
		default:
			return domain.CreatePollOptions{}, fmt.Errorf("%w: %s is not supported", domain.ErrInvalidOptions, key)
		}
	}

	if err := opts.Validate(now); err != nil {
		return domain.CreatePollOptions{}, err
	}
	return opts, nil
}

// Split tokenizes raw command text on whitespace, keeping double-quoted
// segments together so values like question="lunch today?" survive.
func Split(text string) []string {
	var args []string
	var cur strings.Builder
	inQuotes := false

	for _, r := range text {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case !inQuotes && (r == ' ' || r == '\t' || r == '\n'):
			if cur.Len() > 0 {
				args = append(args, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		args = append(args, cur.String())
	}
	return args
}

func parseBoolish(value string) bool {
	if b, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
		return b
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n != 0
	}
	return false
}

// parseFinishAt accepts ISO-8601 timestamps. With an explicit offset the
// instant is taken as given; without one the timestamp is read in the
// sender's zone.
func parseFinishAt(value string, senderUTCOffset float64) (time.Time, error) {
	if offsetPattern.MatchString(value) {
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			// Zone given as ±hhmm rather than ±hh:mm.
			t, err = time.Parse(naiveLayout+"-0700", value)
		}
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: cannot parse finish date %q", domain.ErrInvalidOptions, value)
		}
		return t, nil
	}

	t, err := time.Parse(naiveLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: cannot parse finish date %q", domain.ErrInvalidOptions, value)
	}
	offset := time.Duration(senderUTCOffset * float64(time.Hour))
	return t.Add(-offset), nil
}
