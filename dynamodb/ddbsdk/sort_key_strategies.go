package ddbsdk

import (
	"fmt"

	expression2 "github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
)

// SortKeyStrategy restricts the sort key in a range query. The zero value
// means no restriction.
type SortKeyStrategy struct {
	op     string
	values []any
}

// IsSet reports whether the strategy restricts anything.
func (s SortKeyStrategy) IsSet() bool {
	return s.op != ""
}

func (s SortKeyStrategy) condition(skName string) expression2.KeyConditionBuilder {
	key := expression2.Key(skName)
	switch s.op {
	case "=":
		return expression2.KeyEqual(key, expression2.Value(s.values[0]))
	case "begins_with":
		return expression2.KeyBeginsWith(key, s.values[0].(string))
	case "between":
		return expression2.KeyBetween(key, expression2.Value(s.values[0]), expression2.Value(s.values[1]))
	case ">=":
		return expression2.KeyGreaterThanEqual(key, expression2.Value(s.values[0]))
	case "<=":
		return expression2.KeyLessThanEqual(key, expression2.Value(s.values[0]))
	}
	panic(fmt.Sprintf("unknown sort key operator %q", s.op))
}

func (s SortKeyStrategy) String() string {
	switch s.op {
	case "":
		return "any"
	case "begins_with":
		return fmt.Sprintf("begins_with(%v)", s.values[0])
	case "between":
		return fmt.Sprintf("between %v and %v", s.values[0], s.values[1])
	}
	return fmt.Sprintf("%s %v", s.op, s.values[0])
}

// Equals returns items where the sort key equals the provided value.
func Equals[T any](v T) SortKeyStrategy {
	return SortKeyStrategy{op: "=", values: []any{v}}
}

// BeginsWith returns items where the sort key starts with the provided prefix.
func BeginsWith(prefix string) SortKeyStrategy {
	return SortKeyStrategy{op: "begins_with", values: []any{prefix}}
}

// Between returns items where the sort key is between start and end (inclusive).
func Between[T any](start, end T) SortKeyStrategy {
	return SortKeyStrategy{op: "between", values: []any{start, end}}
}

func GreaterThanOrEqual[T any](v T) SortKeyStrategy {
	return SortKeyStrategy{op: ">=", values: []any{v}}
}

func LessThanOrEqual[T any](v T) SortKeyStrategy {
	return SortKeyStrategy{op: "<=", values: []any{v}}
}

func ptr[T any](v T) *T {
	return &v
}
