package processor

import (
	"strconv"
	"strings"

	"changelog-join/pkg/commtypes"
	"changelog-join/pkg/common_errors"

	"golang.org/x/xerrors"
)

// PredicateSource names a predicate and carries the code its factory is
// instantiated from.
type PredicateSource struct {
	Name string
	Code string
}

type PredicateFactory func(code string) (JoinPredicate, error)

// RowTypeChecker is implemented by predicates that can reject the row types
// they are bound to before any record arrives.
type RowTypeChecker interface {
	CheckRowTypes(left, right commtypes.RowType) error
}

type PredicateRegistry struct {
	factories map[string]PredicateFactory
}

const (
	EquiPredicateName  = "equi"
	CrossPredicateName = "cross"
)

// NewPredicateRegistry returns a registry holding the builtin predicates.
func NewPredicateRegistry() *PredicateRegistry {
	r := &PredicateRegistry{factories: make(map[string]PredicateFactory)}
	r.factories[EquiPredicateName] = NewEquiPredicate
	r.factories[CrossPredicateName] = func(string) (JoinPredicate, error) {
		return JoinPredicateFunc(crossJoin), nil
	}
	return r
}

func (r *PredicateRegistry) Register(name string, factory PredicateFactory) {
	r.factories[name] = factory
}

// RegisterFunc injects an already built predicate under name.
func (r *PredicateRegistry) RegisterFunc(name string, fn JoinPredicateFunc) {
	r.factories[name] = func(string) (JoinPredicate, error) { return fn, nil }
}

// Load instantiates the predicate once for rows of the given types. Any
// failure is an InitializationError; the caller must not retry.
func (r *PredicateRegistry) Load(src PredicateSource, left, right commtypes.RowType) (*PredicateHandle, error) {
	factory, ok := r.factories[src.Name]
	if !ok {
		return nil, &common_errors.InitializationError{
			Component: "join predicate " + src.Name,
			Err:       common_errors.ErrUnknownPredicate,
		}
	}
	p, err := factory(src.Code)
	if err != nil {
		return nil, &common_errors.InitializationError{Component: "join predicate " + src.Name, Err: err}
	}
	if p == nil {
		return nil, &common_errors.InitializationError{
			Component: "join predicate " + src.Name,
			Err:       xerrors.New("factory returned no predicate"),
		}
	}
	if c, ok := p.(RowTypeChecker); ok {
		if err := c.CheckRowTypes(left, right); err != nil {
			return nil, &common_errors.InitializationError{Component: "join predicate " + src.Name, Err: err}
		}
	}
	return &PredicateHandle{name: src.Name, predicate: p}, nil
}

// PredicateHandle is immutable once loaded.
type PredicateHandle struct {
	predicate JoinPredicate
	name      string
}

func (h *PredicateHandle) Name() string {
	return h.name
}

func (h *PredicateHandle) Evaluate(left commtypes.Row, right commtypes.Row, emit EmitFunc) error {
	if err := h.predicate.Evaluate(left, right, emit); err != nil {
		return xerrors.Errorf("predicate %s: %w", h.name, err)
	}
	return nil
}

func crossJoin(left, right commtypes.Row, emit EmitFunc) error {
	emit(left.Concat(right))
	return nil
}

type fieldPair struct {
	left  int
	right int
}

type equiPredicate struct {
	pairs []fieldPair
}

// NewEquiPredicate parses "l0=r1,l2=r0": every listed left field must equal
// the listed right field. A match emits left ++ right. Null never matches.
func NewEquiPredicate(code string) (JoinPredicate, error) {
	var pairs []fieldPair
	for _, term := range strings.Split(code, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		sides := strings.Split(term, "=")
		if len(sides) != 2 {
			return nil, xerrors.Errorf("term %q: %w", term, common_errors.ErrInvalidPredicateCode)
		}
		l, err := parseFieldRef(sides[0], "l")
		if err != nil {
			return nil, err
		}
		r, err := parseFieldRef(sides[1], "r")
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, fieldPair{left: l, right: r})
	}
	if len(pairs) == 0 {
		return nil, xerrors.Errorf("no equality terms in %q: %w", code, common_errors.ErrInvalidPredicateCode)
	}
	return &equiPredicate{pairs: pairs}, nil
}

func parseFieldRef(ref string, prefix string) (int, error) {
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, prefix) {
		return 0, xerrors.Errorf("field %q must start with %q: %w", ref, prefix, common_errors.ErrInvalidPredicateCode)
	}
	idx, err := strconv.Atoi(ref[len(prefix):])
	if err != nil || idx < 0 {
		return 0, xerrors.Errorf("field %q: %w", ref, common_errors.ErrInvalidPredicateCode)
	}
	return idx, nil
}

var _ = RowTypeChecker(&equiPredicate{})

// CheckRowTypes rejects references past either arity and pairs of different
// field types, which could never compare equal.
func (p *equiPredicate) CheckRowTypes(left, right commtypes.RowType) error {
	for _, fp := range p.pairs {
		if fp.left >= left.Arity() || fp.right >= right.Arity() {
			return xerrors.Errorf("field pair l%d=r%d out of range for rows of arity %d and %d: %w",
				fp.left, fp.right, left.Arity(), right.Arity(), common_errors.ErrInvalidPredicateCode)
		}
		if lt, rt := left.Types[fp.left], right.Types[fp.right]; lt != rt {
			return xerrors.Errorf("field pair l%d=r%d compares %s with %s: %w",
				fp.left, fp.right, lt, rt, common_errors.ErrInvalidPredicateCode)
		}
	}
	return nil
}

func (p *equiPredicate) Evaluate(left, right commtypes.Row, emit EmitFunc) error {
	for _, fp := range p.pairs {
		if fp.left >= len(left) || fp.right >= len(right) {
			return xerrors.Errorf("field pair l%d=r%d out of range for rows of arity %d and %d",
				fp.left, fp.right, len(left), len(right))
		}
		lv, rv := left[fp.left], right[fp.right]
		if lv == nil || rv == nil {
			return nil
		}
		if !(commtypes.Row{lv}).Equal(commtypes.Row{rv}) {
			return nil
		}
	}
	emit(left.Concat(right))
	return nil
}
