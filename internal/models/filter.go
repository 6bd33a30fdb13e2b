package models

import "strings"

// Operator is a per-field filter operator
type Operator string

const (
	OpContains       Operator = "contains"
	OpDoesNotContain Operator = "does not contain"
	OpIs             Operator = "is"
	OpIsNot          Operator = "is not"
)

// ParseOperator normalizes an operator name. Dashes and underscores are
// treated as spaces, so "does-not-contain" and "is_not" are accepted.
// Unknown operators fall back to OpContains.
func ParseOperator(s string) Operator {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	s = strings.Join(strings.Fields(s), " ")

	switch s {
	case "does not contain", "not contains", "doesnotcontain":
		return OpDoesNotContain
	case "is", "equals", "eq":
		return OpIs
	case "is not", "isnot", "ne":
		return OpIsNot
	default:
		return OpContains
	}
}

// Negated reports whether the operator excludes matches
func (o Operator) Negated() bool {
	return o == OpDoesNotContain || o == OpIsNot
}

// Condition is a single {operator, value} filter on one field
type Condition struct {
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

// LogicalOperator combines field clauses and multiple conditions on one field
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "and"
	LogicalOr  LogicalOperator = "or"
)

// ParseLogicalOperator returns LogicalOr for "or" (any case) and LogicalAnd otherwise
func ParseLogicalOperator(s string) LogicalOperator {
	if strings.EqualFold(strings.TrimSpace(s), string(LogicalOr)) {
		return LogicalOr
	}
	return LogicalAnd
}
