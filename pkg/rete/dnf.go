package rete

import "fmt"

// Conjunct is one conjunctive clause of a rule's DNF: a list of leaf
// conditions in their source order.
type Conjunct []Condition

// DNF normalizes a rule's condition tree to disjunctive normal form
// and returns the resulting conjuncts. It applies, to fixed point:
// double-negation elimination, De Morgan over And/Or, and leaf-level
// Not-over-Cond conversion to Neg (negation is never pushed through a
// leaf; Not itself builds a plain NotNode, and it is this negation pass
// that turns a negated CondClause into a NegClause). The final tree
// (now Not-free) is
// then distributed: And over Or, preserving each conjunct's clauses in
// their original left-to-right source order.
func DNF(c Condition) ([]Conjunct, error) {
	nnf, err := pushNegations(c)
	if err != nil {
		return nil, err
	}
	return expand(nnf), nil
}

// pushNegations eliminates every NotNode from the tree, leaving only
// And/Or connectives and leaves (Cond/Neg/Ncc/Bind/Filter).
func pushNegations(c Condition) (Condition, error) {
	switch t := c.(type) {
	case NotNode:
		if inner, ok := t.Child.(NotNode); ok {
			// Double negation elimination: NOT(NOT(x)) == x.
			return pushNegations(inner.Child)
		}
		switch inner := t.Child.(type) {
		case AndNode:
			negated := make([]Condition, len(inner.Children))
			for i, ch := range inner.Children {
				negated[i] = NotNode{Child: ch}
			}
			return pushNegations(OrNode{Children: negated})
		case OrNode:
			negated := make([]Condition, len(inner.Children))
			for i, ch := range inner.Children {
				negated[i] = NotNode{Child: ch}
			}
			return pushNegations(AndNode{Children: negated})
		case CondClause:
			// Leaf-level negation: NOT(Cond) becomes Neg, not pushed
			// further.
			return NegClause{Id: inner.Id, Attr: inner.Attr, Val: inner.Val}, nil
		default:
			return nil, fmt.Errorf("%w: negation applied to %T, which is not a boolean connective or positive condition", ErrMalformedCondition, t.Child)
		}
	case AndNode:
		children := make([]Condition, len(t.Children))
		for i, ch := range t.Children {
			n, err := pushNegations(ch)
			if err != nil {
				return nil, err
			}
			children[i] = n
		}
		return AndNode{Children: children}, nil
	case OrNode:
		children := make([]Condition, len(t.Children))
		for i, ch := range t.Children {
			n, err := pushNegations(ch)
			if err != nil {
				return nil, err
			}
			children[i] = n
		}
		return OrNode{Children: children}, nil
	case CondClause, NegClause, NccClause, BindClause, FilterClause:
		return c, nil
	default:
		return nil, fmt.Errorf("%w: unrecognized condition node %T", ErrMalformedCondition, c)
	}
}

// expand distributes And over Or, producing a flat list of conjuncts.
// Each conjunct preserves the source order of its clauses.
func expand(c Condition) []Conjunct {
	switch t := c.(type) {
	case AndNode:
		acc := []Conjunct{{}}
		for _, child := range t.Children {
			childConjuncts := expand(child)
			next := make([]Conjunct, 0, len(acc)*len(childConjuncts))
			for _, prefix := range acc {
				for _, frag := range childConjuncts {
					combined := make(Conjunct, 0, len(prefix)+len(frag))
					combined = append(combined, prefix...)
					combined = append(combined, frag...)
					next = append(next, combined)
				}
			}
			acc = next
		}
		return acc
	case OrNode:
		var out []Conjunct
		for _, child := range t.Children {
			out = append(out, expand(child)...)
		}
		return out
	default:
		return []Conjunct{{c}}
	}
}
