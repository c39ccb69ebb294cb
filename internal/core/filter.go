// Package core provides filtering, sorting and lookup over dismissal log entries.
package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/toastui/internal/history"
	"github.com/jmylchreest/toastui/internal/model"
)

// FilterOp represents a comparison operator.
type FilterOp string

const (
	FilterOpEqual     FilterOp = "="  // Exact match
	FilterOpNotEqual  FilterOp = "!=" // Not equal
	FilterOpContains  FilterOp = "~"  // Contains substring
	FilterOpRegex     FilterOp = "~=" // Regex match
	FilterOpGreater   FilterOp = ">"  // Greater than
	FilterOpLess      FilterOp = "<"  // Less than
	FilterOpGreaterEq FilterOp = ">=" // Greater than or equal
	FilterOpLessEq    FilterOp = "<=" // Less than or equal
)

// FilterCondition represents a single filter condition.
type FilterCondition struct {
	Field    string   // id, type, position, message, created, dismissed, lifetime
	Operator FilterOp // Comparison operator
	Value    string   // Value to compare against

	regex    *regexp.Regexp
	cutoff   time.Time     // created, dismissed: now minus the given age
	duration time.Duration // lifetime
}

// FilterExpr is a set of conditions that must all match.
type FilterExpr struct {
	Conditions []FilterCondition
}

// FilterOptions specifies the common listing filters.
type FilterOptions struct {
	Since    time.Duration  // Only entries dismissed within this window (0=all)
	Type     model.Type     // Exact type ("" = any)
	Position model.Position // Exact anchor ("" = any)
	Limit    int            // Maximum results (0=unlimited)
}

// Filter returns the entries matching opts, keeping their order.
func Filter(entries []history.Entry, opts FilterOptions, now time.Time) []history.Entry {
	result := make([]history.Entry, 0, len(entries))
	cutoff := now.Add(-opts.Since)

	for _, e := range entries {
		if opts.Since > 0 && e.DismissedAt.Before(cutoff) {
			continue
		}
		if opts.Type != "" && e.Type != opts.Type {
			continue
		}
		if opts.Position != "" && e.Position != opts.Position {
			continue
		}
		result = append(result, e)
	}

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result
}

// ParseDuration parses a duration string with extended formats.
// Supports: 48h, 7d, 1w, 0 (all time)
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "0" || s == "" {
		return 0, nil
	}

	if days, found := strings.CutSuffix(s, "d"); found {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	if weeks, found := strings.CutSuffix(s, "w"); found {
		n, err := strconv.Atoi(weeks)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}

// ParseFilter parses a filter expression such as "type=error,message~disk".
// Conditions are comma separated and ANDed together.
//
// Fields: id, type, position, message, created, dismissed, lifetime.
// created and dismissed take an age ("dismissed<1h" means within the last
// hour); lifetime takes a duration ("lifetime>5s").
func ParseFilter(expr string, now time.Time) (*FilterExpr, error) {
	filter := &FilterExpr{}
	if expr == "" {
		return filter, nil
	}

	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cond, err := parseCondition(part, now)
		if err != nil {
			return nil, err
		}
		filter.Conditions = append(filter.Conditions, cond)
	}
	return filter, nil
}

func parseCondition(s string, now time.Time) (FilterCondition, error) {
	// Longest operators first.
	operators := []FilterOp{
		FilterOpNotEqual,
		FilterOpGreaterEq,
		FilterOpLessEq,
		FilterOpRegex,
		FilterOpEqual,
		FilterOpContains,
		FilterOpGreater,
		FilterOpLess,
	}

	for _, op := range operators {
		idx := strings.Index(s, string(op))
		if idx <= 0 {
			continue
		}
		cond := FilterCondition{
			Field:    strings.ToLower(strings.TrimSpace(s[:idx])),
			Operator: op,
			Value:    strings.TrimSpace(s[idx+len(op):]),
		}
		if err := cond.init(now); err != nil {
			return FilterCondition{}, err
		}
		return cond, nil
	}

	return FilterCondition{}, fmt.Errorf("invalid filter condition: %s (missing operator)", s)
}

func (c *FilterCondition) init(now time.Time) error {
	switch c.Field {
	case "id":
	case "type", "kind":
		c.Field = "type"
	case "position", "pos", "anchor":
		c.Field = "position"
	case "message", "msg", "text":
		c.Field = "message"
	case "created", "created_at":
		c.Field = "created"
		age, err := ParseDuration(c.Value)
		if err != nil {
			return fmt.Errorf("invalid created value: %w", err)
		}
		c.cutoff = now.Add(-age)
	case "dismissed", "dismissed_at", "time", "ts":
		c.Field = "dismissed"
		age, err := ParseDuration(c.Value)
		if err != nil {
			return fmt.Errorf("invalid dismissed value: %w", err)
		}
		c.cutoff = now.Add(-age)
	case "lifetime", "shown":
		c.Field = "lifetime"
		d, err := ParseDuration(c.Value)
		if err != nil {
			return fmt.Errorf("invalid lifetime value: %w", err)
		}
		c.duration = d
	default:
		return fmt.Errorf("unknown filter field: %s", c.Field)
	}

	if c.Operator == FilterOpRegex {
		re, err := regexp.Compile(c.Value)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		c.regex = re
	}
	return nil
}

// Match reports whether e satisfies every condition.
func (f *FilterExpr) Match(e history.Entry) bool {
	for i := range f.Conditions {
		if !f.Conditions[i].Match(e) {
			return false
		}
	}
	return true
}

// Match reports whether e satisfies this condition.
func (c *FilterCondition) Match(e history.Entry) bool {
	switch c.Field {
	case "id":
		return c.matchString(e.ID)
	case "type":
		return c.matchString(string(e.Type))
	case "position":
		return c.matchString(string(e.Position))
	case "message":
		return c.matchString(e.Message)
	case "created":
		return c.matchAge(e.CreatedAt)
	case "dismissed":
		return c.matchAge(e.DismissedAt)
	case "lifetime":
		return c.matchDuration(time.Duration(e.LifetimeMS) * time.Millisecond)
	default:
		return false
	}
}

func (c *FilterCondition) matchString(v string) bool {
	switch c.Operator {
	case FilterOpEqual:
		return v == c.Value
	case FilterOpNotEqual:
		return v != c.Value
	case FilterOpContains:
		return strings.Contains(strings.ToLower(v), strings.ToLower(c.Value))
	case FilterOpRegex:
		return c.regex != nil && c.regex.MatchString(v)
	default:
		return false
	}
}

// matchAge compares how long ago t was with the condition's age, so
// "dismissed<1h" keeps entries younger than an hour.
func (c *FilterCondition) matchAge(t time.Time) bool {
	switch c.Operator {
	case FilterOpLess:
		return t.After(c.cutoff)
	case FilterOpLessEq:
		return !t.Before(c.cutoff)
	case FilterOpGreater:
		return t.Before(c.cutoff)
	case FilterOpGreaterEq:
		return !t.After(c.cutoff)
	default:
		return false
	}
}

func (c *FilterCondition) matchDuration(d time.Duration) bool {
	switch c.Operator {
	case FilterOpEqual:
		return d == c.duration
	case FilterOpNotEqual:
		return d != c.duration
	case FilterOpGreater:
		return d > c.duration
	case FilterOpLess:
		return d < c.duration
	case FilterOpGreaterEq:
		return d >= c.duration
	case FilterOpLessEq:
		return d <= c.duration
	default:
		return false
	}
}

// FilterWithExpr returns the entries matching expr.
func FilterWithExpr(entries []history.Entry, expr *FilterExpr) []history.Entry {
	if expr == nil || len(expr.Conditions) == 0 {
		return entries
	}

	result := make([]history.Entry, 0, len(entries))
	for _, e := range entries {
		if expr.Match(e) {
			result = append(result, e)
		}
	}
	return result
}
