// Package query parses MongoDB-shaped query documents into a normalized
// predicate tree. Parsing performs only structural recognition of fields,
// operators and logical connectives; it does not by itself decide which
// fields an index can serve — that interval algebra lives in the planner
// package, which consumes the tree built here.
package query

import "fmt"

// Operator names one of the recognized field-level predicate operators.
type Operator string

const (
	OpEq        Operator = "$eq"
	OpNe        Operator = "$ne"
	OpLt        Operator = "$lt"
	OpLte       Operator = "$lte"
	OpGt        Operator = "$gt"
	OpGte       Operator = "$gte"
	OpIn        Operator = "$in"
	OpNin       Operator = "$nin"
	OpExists    Operator = "$exists"
	OpMod       Operator = "$mod"
	OpType      Operator = "$type"
	OpSize      Operator = "$size"
	OpAll       Operator = "$all"
	OpElemMatch Operator = "$elemMatch"
	OpNear      Operator = "$near"
	OpWithin    Operator = "$within"
	OpRegex     Operator = "$regex"
)

var knownOperators = map[Operator]bool{
	OpEq: true, OpNe: true, OpLt: true, OpLte: true, OpGt: true, OpGte: true,
	OpIn: true, OpNin: true, OpExists: true, OpMod: true, OpType: true,
	OpSize: true, OpAll: true, OpElemMatch: true, OpNear: true, OpWithin: true,
	OpRegex: true,
}

// LogicalOp names one of the top-level logical connectives.
type LogicalOp string

const (
	LogicalAnd LogicalOp = "$and"
	LogicalOr  LogicalOp = "$or"
	LogicalNor LogicalOp = "$nor"
)

// Node is the common interface implemented by FieldNode and LogicalNode.
type Node interface {
	node()
}

// Regex carries a pattern/flags pair for the $regex operator. An "i"
// (case-insensitive) or "m" (multiline) flag disables the prefix
// extraction the planner performs on Pattern; other flags are accepted
// and ignored by it.
type Regex struct {
	Pattern string
	Flags   string
}

// Predicate is one operator applied to a field. {age: {$gt: 25}} contributes
// Predicate{Op: OpGt, Value: 25.0}; {age: {$not: {$gt: 25}}} contributes the
// same Predicate with Negated set.
type Predicate struct {
	Op      Operator
	Value   interface{}
	Negated bool
}

// FieldNode collects every predicate written against a single field in one
// conjunctive clause. Predicates within a FieldNode are implicitly ANDed.
type FieldNode struct {
	Field      string
	Predicates []Predicate
}

func (*FieldNode) node() {}

// LogicalNode represents $and/$or/$nor over a list of child clauses.
type LogicalNode struct {
	Op       LogicalOp
	Children []Node
}

func (*LogicalNode) node() {}

// Parse converts a decoded query document into a predicate tree rooted at a
// LogicalAnd node. Map iteration order is not preserved; callers needing
// stable field ordering should sort FieldNode.Field themselves.
func Parse(q map[string]interface{}) (Node, error) {
	root := &LogicalNode{Op: LogicalAnd}

	for key, val := range q {
		switch LogicalOp(key) {
		case LogicalAnd, LogicalOr, LogicalNor:
			list, ok := val.([]interface{})
			if !ok {
				return nil, fmt.Errorf("query: value of %s must be an array", key)
			}
			children := make([]Node, 0, len(list))
			for _, item := range list {
				sub, ok := item.(map[string]interface{})
				if !ok {
					return nil, fmt.Errorf("query: element of %s must be an object", key)
				}
				node, err := Parse(sub)
				if err != nil {
					return nil, err
				}
				children = append(children, node)
			}
			root.Children = append(root.Children, &LogicalNode{Op: LogicalOp(key), Children: children})
		default:
			fn, err := parseField(key, val)
			if err != nil {
				return nil, err
			}
			root.Children = append(root.Children, fn)
		}
	}

	return root, nil
}

// parseField builds the FieldNode for one document key. An operator
// document ({$gt: 5, $lte: 10}) produces one Predicate per key; a bare
// scalar, array or regex value is treated as an implicit $eq/$regex.
func parseField(field string, val interface{}) (*FieldNode, error) {
	fn := &FieldNode{Field: field}

	opDoc, ok := val.(map[string]interface{})
	if !ok {
		if re, ok := val.(Regex); ok {
			fn.Predicates = append(fn.Predicates, Predicate{Op: OpRegex, Value: re})
			return fn, nil
		}
		fn.Predicates = append(fn.Predicates, Predicate{Op: OpEq, Value: val})
		return fn, nil
	}

	for opKey, opVal := range opDoc {
		if opKey == "$not" {
			negDoc, ok := opVal.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("query: field %q: $not must be an object", field)
			}
			for negOp, negVal := range negDoc {
				p, err := makePredicate(field, Operator(negOp), negVal, true)
				if err != nil {
					return nil, err
				}
				fn.Predicates = append(fn.Predicates, p)
			}
			continue
		}
		p, err := makePredicate(field, Operator(opKey), opVal, false)
		if err != nil {
			return nil, err
		}
		fn.Predicates = append(fn.Predicates, p)
	}

	return fn, nil
}

func makePredicate(field string, op Operator, val interface{}, negated bool) (Predicate, error) {
	if !knownOperators[op] {
		return Predicate{}, fmt.Errorf("query: field %q: unknown operator %q", field, op)
	}
	if op == OpRegex {
		switch v := val.(type) {
		case Regex:
			return Predicate{Op: op, Value: v, Negated: negated}, nil
		case string:
			return Predicate{Op: op, Value: Regex{Pattern: v}, Negated: negated}, nil
		default:
			return Predicate{}, fmt.Errorf("query: field %q: $regex requires a string or Regex value", field)
		}
	}
	return Predicate{Op: op, Value: val, Negated: negated}, nil
}
