package query

import (
	"fmt"
	"regexp"

	"github.com/ogkla/mongo/internal/value"
)

// Matcher is implemented by every Node; it provides a reference document
// matcher independent of any index. The planner never calls Matches itself
// -- it answers the same question using interval containment against a
// candidate key -- but the AST's own matcher is what residual filtering
// (the part of a query an index's bounds could not fully express) runs
// against after a candidate document is fetched.
type Matcher interface {
	Matches(doc map[string]interface{}) bool
}

// Matches reports whether doc satisfies every predicate on this field.
func (n *FieldNode) Matches(doc map[string]interface{}) bool {
	actual, exists := doc[n.Field]
	for _, p := range n.Predicates {
		ok := matchPredicate(actual, exists, p)
		if p.Negated {
			ok = !ok
		}
		if !ok {
			return false
		}
	}
	return true
}

// Matches evaluates $and/$or/$nor over this node's children.
func (n *LogicalNode) Matches(doc map[string]interface{}) bool {
	switch n.Op {
	case LogicalAnd:
		for _, c := range n.Children {
			if !c.(Matcher).Matches(doc) {
				return false
			}
		}
		return true
	case LogicalOr:
		for _, c := range n.Children {
			if c.(Matcher).Matches(doc) {
				return true
			}
		}
		return len(n.Children) == 0
	case LogicalNor:
		for _, c := range n.Children {
			if c.(Matcher).Matches(doc) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func matchPredicate(actual interface{}, exists bool, p Predicate) bool {
	switch p.Op {
	case OpExists:
		want, _ := p.Value.(bool)
		return exists == want
	}
	if !exists {
		return false
	}

	av := value.FromInterface(actual)
	switch p.Op {
	case OpEq:
		return value.Equal(av, value.FromInterface(p.Value))
	case OpNe:
		return !value.Equal(av, value.FromInterface(p.Value))
	case OpGt:
		return value.Compare(av, value.FromInterface(p.Value)) > 0
	case OpGte:
		return value.Compare(av, value.FromInterface(p.Value)) >= 0
	case OpLt:
		return value.Compare(av, value.FromInterface(p.Value)) < 0
	case OpLte:
		return value.Compare(av, value.FromInterface(p.Value)) <= 0
	case OpIn:
		return memberOf(av, p.Value)
	case OpNin:
		return !memberOf(av, p.Value)
	case OpMod:
		return matchMod(av, p.Value)
	case OpType:
		return matchType(av, p.Value)
	case OpSize:
		return matchSize(av, p.Value)
	case OpAll:
		return matchAll(av, p.Value)
	case OpElemMatch:
		return matchElem(actual, p.Value)
	case OpRegex:
		return matchRegex(av, p.Value)
	case OpNear, OpWithin:
		// No geospatial evaluation happens here: every document passes
		// $near/$within, and the planner lowers them to an unconstrained
		// range.
		return true
	default:
		return false
	}
}

func memberOf(v value.Value, set interface{}) bool {
	list, ok := set.([]interface{})
	if !ok {
		return false
	}
	for _, item := range list {
		if value.Equal(v, value.FromInterface(item)) {
			return true
		}
	}
	return false
}

func matchMod(v value.Value, arg interface{}) bool {
	pair, ok := arg.([]interface{})
	if !ok || len(pair) != 2 || v.Kind() != value.KindNumber {
		return false
	}
	divisor, ok1 := toInt(pair[0])
	remainder, ok2 := toInt(pair[1])
	if !ok1 || !ok2 || divisor == 0 {
		return false
	}
	n := int64(v.AsFloat())
	return n%divisor == remainder
}

func toInt(x interface{}) (int64, bool) {
	switch t := x.(type) {
	case float64:
		return int64(t), true
	case int:
		return int64(t), true
	case int64:
		return t, true
	}
	return 0, false
}

func matchType(v value.Value, want interface{}) bool {
	name, ok := want.(string)
	if !ok {
		return false
	}
	switch v.Kind() {
	case value.KindNumber:
		return name == "number" || name == "double"
	case value.KindString:
		return name == "string"
	case value.KindBool:
		return name == "bool"
	case value.KindArray:
		return name == "array"
	case value.KindNull:
		return name == "null"
	default:
		return false
	}
}

func matchSize(v value.Value, want interface{}) bool {
	n, ok := toInt(want)
	if !ok || v.Kind() != value.KindArray {
		return false
	}
	return int64(len(v.AsArray())) == n
}

func matchAll(v value.Value, want interface{}) bool {
	list, ok := want.([]interface{})
	if !ok || v.Kind() != value.KindArray {
		return false
	}
	for _, w := range list {
		found := false
		for _, e := range v.AsArray() {
			if value.Equal(e, value.FromInterface(w)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func matchElem(actual interface{}, want interface{}) bool {
	arr, ok := actual.([]interface{})
	if !ok {
		return false
	}
	sub, ok := want.(map[string]interface{})
	if !ok {
		return false
	}
	node, err := Parse(sub)
	if err != nil {
		return false
	}
	matcher := node.(Matcher)
	for _, e := range arr {
		if doc, ok := e.(map[string]interface{}); ok && matcher.Matches(doc) {
			return true
		}
	}
	return false
}

func matchRegex(v value.Value, want interface{}) bool {
	re, ok := want.(Regex)
	if !ok {
		return false
	}
	if v.Kind() != value.KindString {
		return false
	}
	pattern := re.Pattern
	if containsFlag(re.Flags, 'i') {
		pattern = "(?i)" + pattern
	}
	rx, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return rx.MatchString(v.AsString())
}

func containsFlag(flags string, f byte) bool {
	for i := 0; i < len(flags); i++ {
		if flags[i] == f {
			return true
		}
	}
	return false
}

// String renders p for diagnostics; it is not used for equality.
func (p Predicate) String() string {
	if p.Negated {
		return fmt.Sprintf("$not(%s %v)", p.Op, p.Value)
	}
	return fmt.Sprintf("%s %v", p.Op, p.Value)
}
