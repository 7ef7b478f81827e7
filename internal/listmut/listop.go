// Package listmut computes new values of list fields embedded in a document.
// The remote store can only replace a list field as a whole, so every change
// produces the complete new list from the locally known one.
package listmut

import (
	"fmt"

	ierr "frailes/internal/errors"
)

type OpKind int

const (
	OpAppend OpKind = iota
	OpReplace
	OpRemoveAt
)

func (k OpKind) String() string {
	switch k {
	case OpAppend:
		return "append"
	case OpReplace:
		return "replace"
	case OpRemoveAt:
		return "remove"
	}
	return "unknown"
}

type ListOp struct {
	Kind  OpKind
	Index int
	Value interface{}
}

func Append(v interface{}) ListOp {
	return ListOp{Kind: OpAppend, Value: v}
}

func Replace(i int, v interface{}) ListOp {
	return ListOp{Kind: OpReplace, Index: i, Value: v}
}

func RemoveAt(i int) ListOp {
	return ListOp{Kind: OpRemoveAt, Index: i}
}

// Apply returns a new list; list itself is left untouched.
func (op ListOp) Apply(list []interface{}) ([]interface{}, error) {
	switch op.Kind {
	case OpAppend:
		out := make([]interface{}, 0, len(list)+1)
		out = append(out, list...)
		return append(out, op.Value), nil

	case OpReplace:
		if op.Index < 0 || op.Index >= len(list) {
			return nil, fmt.Errorf("%s: %w, index %d of %d", op.Kind, ierr.ErrUnknownItem, op.Index, len(list))
		}
		out := make([]interface{}, len(list))
		copy(out, list)
		out[op.Index] = op.Value
		return out, nil

	case OpRemoveAt:
		if op.Index < 0 || op.Index >= len(list) {
			return nil, fmt.Errorf("%s: %w, index %d of %d", op.Kind, ierr.ErrUnknownItem, op.Index, len(list))
		}
		out := make([]interface{}, 0, len(list)-1)
		out = append(out, list[:op.Index]...)
		return append(out, list[op.Index+1:]...), nil
	}

	return nil, fmt.Errorf("unknown list operation %d", op.Kind)
}

// Strings applies op to a string list.
func Strings(list []string, op ListOp) ([]string, error) {
	generic := make([]interface{}, len(list))
	for i, s := range list {
		generic[i] = s
	}

	out, err := op.Apply(generic)
	if err != nil {
		return nil, err
	}

	res := make([]string, len(out))
	for i, v := range out {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s: %w, not a string: %v", op.Kind, ierr.ErrValidation, v)
		}
		res[i] = s
	}
	return res, nil
}
