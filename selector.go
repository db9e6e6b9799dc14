package clusteracl

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/oarkflow/clusteracl/utils"
)

// ============================================================================
// HOST SELECTOR LANGUAGE
// ============================================================================

// Operator is one of the four host selector comparison operators. The set is
// closed; evaluation dispatches on the tag with a plain switch.
type Operator string

const (
	OpEquals    Operator = "="
	OpNotEquals Operator = "!="
	OpIn        Operator = "in"
	OpNotIn     Operator = "notin"
)

// ErrUnknownOperator is returned when an operator token outside the enumerated
// set is encountered. Through ParseSelector this indicates the grammar and the
// operator table have drifted apart, a defect rather than bad user input.
var ErrUnknownOperator = errors.New("unknown selector operator")

// rank defines the total order over operators used when sorting selector sets.
// Declaration order: = < != < in < notin. Unknown operators sort last.
func (o Operator) rank() int {
	switch o {
	case OpEquals:
		return 0
	case OpNotEquals:
		return 1
	case OpIn:
		return 2
	case OpNotIn:
		return 3
	}
	return 4
}

func (o Operator) known() bool { return o.rank() < 4 }

func (o Operator) list() bool { return o == OpIn || o == OpNotIn }

// HostSelector is a single label constraint of the form "label <op> operand".
// Value carries the operand for = and !=; Values carries the canonical member
// list for in and notin, deduplicated in first-seen order. Selectors are value
// objects: built once, never mutated.
type HostSelector struct {
	Label    string
	Operator Operator
	Value    string
	Values   []string
}

const (
	labelPattern   = `[[:alnum:]._-]+`
	operandPattern = `[[:alnum:]._-]+|\([[:alnum:].\s,_-]*\)`
)

var selectorRe = regexp.MustCompile(
	`^(` + labelPattern + `)\s*(!=|=|in|notin)\s*(` + operandPattern + `)$`)

var operandStrip = strings.NewReplacer("(", "", ")", "", " ", "")

// ParseSelector parses the textual selector form, e.g. "site = lon" or
// "role in (db, cache)". Text that does not match the grammar returns
// (nil, nil) so callers can tell "not a selector" apart from a hard failure.
// List operands are split on commas and deduplicated preserving first-seen
// order, which makes the parsed form stable across runs.
func ParseSelector(text string) (*HostSelector, error) {
	m := selectorRe.FindStringSubmatch(text)
	if m == nil {
		return nil, nil
	}
	label, op, operand := m[1], Operator(m[2]), m[3]
	if !op.known() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperator, string(op))
	}
	if op.list() {
		members := utils.DedupeInOrder(utils.SplitList(operandStrip.Replace(operand)))
		return &HostSelector{Label: label, Operator: op, Values: members}, nil
	}
	return &HostSelector{Label: label, Operator: op, Value: operand}, nil
}

// Matches reports whether the candidate label value satisfies the selector.
// An absent label is represented by the empty string; the grammar never
// produces empty operands, so an absent value fails = and in, and passes
// != and notin. Unknown operators never match.
func (s *HostSelector) Matches(value string) bool {
	switch s.Operator {
	case OpEquals:
		return value == s.Value
	case OpNotEquals:
		return value != s.Value
	case OpIn:
		return s.contains(value)
	case OpNotIn:
		return !s.contains(value)
	}
	return false
}

func (s *HostSelector) contains(value string) bool {
	for _, v := range s.Values {
		if v == value {
			return true
		}
	}
	return false
}

// Equal reports structural equality: label, operator and the canonical operand
// must all match. This is deliberately distinct from IsLogicallyEqual.
func (s *HostSelector) Equal(o *HostSelector) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.Label != o.Label || s.Operator != o.Operator || s.Value != o.Value {
		return false
	}
	if len(s.Values) != len(o.Values) {
		return false
	}
	for i := range s.Values {
		if s.Values[i] != o.Values[i] {
			return false
		}
	}
	return true
}

// IsLogicallyEqual reports whether two selectors express the same constraint.
// Structural equality qualifies, as does the singleton pair "l = v" and
// "l in (v)", checked in both directions. The analogous "l != v" / "l notin
// (v)" pair is NOT treated as equivalent; that asymmetry is a known limitation
// kept on purpose, so callers comparing negated selectors get structural
// semantics only.
func IsLogicallyEqual(a, b *HostSelector) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Equal(b) {
		return true
	}
	if a.Label != b.Label {
		return false
	}
	return isSingletonOfEquals(a, b) || isSingletonOfEquals(b, a)
}

func isSingletonOfEquals(in, eq *HostSelector) bool {
	return in.Operator == OpIn && eq.Operator == OpEquals &&
		len(in.Values) == 1 && in.Values[0] == eq.Value
}

// SetsLogicallyEqual reports whether two selector collections express the same
// constraint set, independent of element order. Both sides are sorted by
// (label, operator) and compared pairwise with IsLogicallyEqual. This is a
// best-effort check: selectors sharing a label under different operators can
// sort into mismatched pairs, so a false result means "not provably
// equivalent", not proof of difference.
func SetsLogicallyEqual(a, b []*HostSelector) bool {
	if len(a) != len(b) {
		return false
	}
	as := sortedByLabelOperator(a)
	bs := sortedByLabelOperator(b)
	for i := range as {
		if !IsLogicallyEqual(as[i], bs[i]) {
			return false
		}
	}
	return true
}

func sortedByLabelOperator(sel []*HostSelector) []*HostSelector {
	out := make([]*HostSelector, len(sel))
	copy(out, sel)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].Operator.rank() < out[j].Operator.rank()
	})
	return out
}

// PrettyString renders the canonical textual form, e.g. "site = lon" or
// "role in (db, cache)". The output parses back with ParseSelector, though for
// list operands it is not necessarily byte-identical to the original input
// once members have been deduplicated.
func (s *HostSelector) PrettyString() string {
	return fmt.Sprintf("%s %s %s", s.Label, s.Operator, s.operandString())
}

func (s *HostSelector) operandString() string {
	if s.Operator.list() {
		return "(" + strings.Join(s.Values, ", ") + ")"
	}
	return s.Value
}

func (s *HostSelector) String() string {
	return fmt.Sprintf("HostSelector{label=%s, operator=%s, operand=%s}",
		s.Label, s.Operator, s.operandString())
}

// MarshalJSON serializes the selector as {"label","operator","operand"} with
// the operand a plain string for = and != and a string array for in and notin.
func (s *HostSelector) MarshalJSON() ([]byte, error) {
	var operand any = s.Value
	if s.Operator.list() {
		operand = s.Values
	}
	return json.Marshal(struct {
		Label    string   `json:"label"`
		Operator Operator `json:"operator"`
		Operand  any      `json:"operand"`
	}{s.Label, s.Operator, operand})
}

func (s *HostSelector) UnmarshalJSON(data []byte) error {
	var aux struct {
		Label    string          `json:"label"`
		Operator Operator        `json:"operator"`
		Operand  json.RawMessage `json:"operand"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if !aux.Operator.known() {
		return fmt.Errorf("%w: %q", ErrUnknownOperator, string(aux.Operator))
	}
	s.Label = aux.Label
	s.Operator = aux.Operator
	s.Value = ""
	s.Values = nil
	if aux.Operator.list() {
		var list []string
		if err := json.Unmarshal(aux.Operand, &list); err != nil {
			// tolerate a scalar operand as a singleton list
			var v string
			if err2 := json.Unmarshal(aux.Operand, &v); err2 != nil {
				return err
			}
			list = []string{v}
		}
		s.Values = utils.DedupeInOrder(list)
		return nil
	}
	return json.Unmarshal(aux.Operand, &s.Value)
}
