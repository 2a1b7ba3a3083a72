package query

import (
	"sync"

	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/log"
)

// FilterOperators is the container that stores all query filter operators.
var FilterOperators = newOpContainer()

// Operator definitions variables.
var (
	// Logical Operators
	OpExact        = &Operator{Lookup: "exact", Name: "Exact"}
	OpNotEqual     = &Operator{Lookup: "ne", Name: "NotEqual"}
	OpIn           = &Operator{Lookup: "in", Name: "In"}
	OpGreaterThan  = &Operator{Lookup: "gt", Name: "GreaterThan"}
	OpGreaterEqual = &Operator{Lookup: "gte", Name: "GreaterThanOrEqualTo"}
	OpLessThan     = &Operator{Lookup: "lt", Name: "LessThan"}
	OpLessEqual    = &Operator{Lookup: "lte", Name: "LessThanOrEqualTo"}

	// Strings Only operators.
	OpIExact      = &Operator{Lookup: "iexact", Name: "IExact"}
	OpContains    = &Operator{Lookup: "contains", Name: "Contains"}
	OpIContains   = &Operator{Lookup: "icontains", Name: "IContains"}
	OpStartsWith  = &Operator{Lookup: "startswith", Name: "StartsWith"}
	OpIStartsWith = &Operator{Lookup: "istartswith", Name: "IStartsWith"}
	OpEndsWith    = &Operator{Lookup: "endswith", Name: "EndsWith"}
	OpIEndsWith   = &Operator{Lookup: "iendswith", Name: "IEndsWith"}

	// Null operator.
	OpIsNull = &Operator{Lookup: "isnull", Name: "IsNull"}
)

var defaultOperators = []*Operator{
	OpExact,
	OpNotEqual,
	OpIn,
	OpGreaterThan,
	OpGreaterEqual,
	OpLessThan,
	OpLessEqual,
	OpIExact,
	OpContains,
	OpIContains,
	OpStartsWith,
	OpIStartsWith,
	OpEndsWith,
	OpIEndsWith,
	OpIsNull,
}

// Operator is the operator used for filtering the query.
type Operator struct {
	// ID is the filter operator id used for comparing the operator type.
	ID uint16
	// Lookup is the keyword suffix of the operator i.e. 'icontains' for 'title__icontains'.
	Lookup string
	// Name is the human readable filter operator name.
	Name string
}

// IsStandard checks if the operator is one of the default operators.
func (o *Operator) IsStandard() bool {
	return o.ID <= FilterOperators.lastStandardID
}

// IsRangeable checks if the operator compares the values order.
func (o *Operator) IsRangeable() bool {
	return o.ID >= OpGreaterThan.ID && o.ID <= OpLessEqual.ID
}

// IsStringOnly checks if the operator compares the string representation of the values.
func (o *Operator) IsStringOnly() bool {
	return o.ID >= OpIExact.ID && o.ID <= OpIEndsWith.ID
}

// IsCaseInsensitive checks if the operator ignores the letter case.
func (o *Operator) IsCaseInsensitive() bool {
	switch o {
	case OpIExact, OpIContains, OpIStartsWith, OpIEndsWith:
		return true
	}
	return false
}

// String implements fmt.Stringer interface.
func (o *Operator) String() string {
	return o.Name
}

type operatorContainer struct {
	operators      map[uint16]*Operator
	lookups        map[string]*Operator
	lastID         uint16
	lastStandardID uint16
	lock           sync.RWMutex
}

func newOpContainer() *operatorContainer {
	c := &operatorContainer{
		operators: make(map[uint16]*Operator),
		lookups:   make(map[string]*Operator),
	}
	for _, op := range defaultOperators {
		if err := c.registerOperator(op); err != nil {
			panic(err)
		}
	}
	c.lastStandardID = c.lastID
	return c
}

// Get gets the operator by its lookup.
func (c *operatorContainer) Get(lookup string) (*Operator, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	op, ok := c.lookups[lookup]
	return op, ok
}

// GetByID gets the operator by its id.
func (c *operatorContainer) GetByID(id uint16) (*Operator, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	op, ok := c.operators[id]
	return op, ok
}

// RegisterOperator registers the custom operator within the container.
// The repositories need to support the custom operators on their own.
func (c *operatorContainer) RegisterOperator(op *Operator) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.registerOperator(op)
}

func (c *operatorContainer) registerOperator(op *Operator) error {
	if op.Lookup == "" {
		return errors.NewDet(ClassInvalidOperator, "operator with empty lookup")
	}
	if _, ok := c.lookups[op.Lookup]; ok {
		return errors.NewDetf(ClassInvalidOperator, "operator with lookup: '%s' already registered", op.Lookup)
	}
	c.lastID++
	op.ID = c.lastID
	c.operators[op.ID] = op
	c.lookups[op.Lookup] = op
	log.Debug3f("Registered filter operator: '%s' with lookup: '%s'", op.Name, op.Lookup)
	return nil
}
