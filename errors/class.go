package errors

import (
	"errors"
	"fmt"
	"sync"
)

const (
	majorBitSize = 7
	minorBitSize = 10
	indexBitSize = 32 - majorBitSize - minorBitSize

	maxIndexValue = (1 << indexBitSize) - 1
	maxMinorValue = (1 << minorBitSize) - 1
	maxMajorValue = (1 << majorBitSize) - 1
)

// Class is the error classification model.
// It is composed of the major, minor and index subclassifications.
// Each subclassification is a different length number, where
// major is composed of 7, minor 10 and index of 15 bits.
//
// Major should be a global scope division like 'Repository', 'Query', 'Serializer' etc.
// Minor should divide the 'major' into subclasses like the repository filters, serializer validation etc.
// Index is the most precise classification - i.e. Query - filter - unknown field.
type Class uint32

// Major gets the class major value.
func (c Class) Major() Major {
	return Major(uint32(c) >> (32 - majorBitSize))
}

// Minor gets the class minor value.
func (c Class) Minor() Minor {
	return Minor{major: c.Major(), value: uint16((uint32(c) >> indexBitSize) & maxMinorValue)}
}

// Index gets the class index value.
func (c Class) Index() Index {
	return Index{minor: c.Minor(), value: uint16(uint32(c) & maxIndexValue)}
}

// IsMajor checks if the given class is composed of provided major 'm'.
func (c Class) IsMajor(m Major) bool {
	return c.Major() == m
}

// String implements fmt.Stringer interface.
func (c Class) String() string {
	return fmt.Sprintf("%d.%d.%d", c.Major(), c.Minor().value, c.Index().value)
}

// Major is a 7 bit top level error classification.
type Major uint8

// InBounds checks if the major value is not greater than the allowed size.
func (m Major) InBounds() bool {
	return m > 0 && m <= maxMajorValue
}

// Minor is a 10 bit error classification unique within given major.
type Minor struct {
	major Major
	value uint16
}

// Major gets the minor's major.
func (m Minor) Major() Major {
	return m.major
}

// Valid checks if the minor is registered within its major bounds.
func (m Minor) Valid() bool {
	return m.major.InBounds() && m.value > 0 && m.value <= maxMinorValue
}

// Index is a 15 bit error classification unique within given minor.
type Index struct {
	minor Minor
	value uint16
}

// Minor gets the index's minor.
func (i Index) Minor() Minor {
	return i.minor
}

// Valid checks if the index is in bounds.
func (i Index) Valid() bool {
	return i.minor.Valid() && i.value > 0 && i.value <= maxIndexValue
}

var registry = &classRegistry{
	minors:  map[Major]uint16{},
	indexes: map[Minor]uint16{},
}

type classRegistry struct {
	sync.Mutex
	lastMajor uint8
	minors    map[Major]uint16
	indexes   map[Minor]uint16
}

// NewMajor registers new major classification.
func NewMajor() (Major, error) {
	registry.Lock()
	defer registry.Unlock()

	if registry.lastMajor == maxMajorValue {
		return 0, errors.New("maximum number of majors already registered")
	}
	registry.lastMajor++
	return Major(registry.lastMajor), nil
}

// MustNewMajor registers new major classification. Panics on error.
func MustNewMajor() Major {
	m, err := NewMajor()
	if err != nil {
		panic(err)
	}
	return m
}

// NewMinor registers new minor classification for the 'major'.
func NewMinor(major Major) (Minor, error) {
	if !major.InBounds() {
		return Minor{}, errors.New("major out of bounds")
	}
	registry.Lock()
	defer registry.Unlock()

	last := registry.minors[major]
	if last == maxMinorValue {
		return Minor{}, errors.New("maximum number of minors already registered")
	}
	last++
	registry.minors[major] = last
	return Minor{major: major, value: last}, nil
}

// MustNewMinor registers new minor classification for the 'major'. Panics on error.
func MustNewMinor(major Major) Minor {
	m, err := NewMinor(major)
	if err != nil {
		panic(err)
	}
	return m
}

// NewIndex registers new index for the 'major' and 'minor'.
func NewIndex(major Major, minor Minor) (Index, error) {
	if minor.major != major || !minor.Valid() {
		return Index{}, errors.New("provided invalid minor")
	}
	registry.Lock()
	defer registry.Unlock()

	last := registry.indexes[minor]
	if last == maxIndexValue {
		return Index{}, errors.New("maximum number of indexes already registered")
	}
	last++
	registry.indexes[minor] = last
	return Index{minor: minor, value: last}, nil
}

// MustNewIndex registers new index for the 'major' and 'minor'. Panics on error.
func MustNewIndex(major Major, minor Minor) Index {
	i, err := NewIndex(major, minor)
	if err != nil {
		panic(err)
	}
	return i
}

// NewClass composes the class from provided 'major', 'minor' and 'index'.
func NewClass(major Major, minor Minor, index Index) (Class, error) {
	if !major.InBounds() {
		return 0, errors.New("provided invalid major")
	}
	if minor.major != major || !minor.Valid() {
		return 0, errors.New("provided invalid minor")
	}
	if index.minor != minor || !index.Valid() {
		return 0, errors.New("provided invalid index")
	}
	return Class(uint32(major)<<(32-majorBitSize) | uint32(minor.value)<<indexBitSize | uint32(index.value)), nil
}

// MustNewClass composes the class from provided 'major', 'minor' and 'index'. Panics on error.
func MustNewClass(major Major, minor Minor, index Index) Class {
	c, err := NewClass(major, minor, index)
	if err != nil {
		panic(err)
	}
	return c
}

// MustNewMinorClass creates a class composed of the 'major' and 'minor' only.
func MustNewMinorClass(major Major, minor Minor) Class {
	if !major.InBounds() || minor.major != major || !minor.Valid() {
		panic("provided invalid major or minor")
	}
	return Class(uint32(major)<<(32-majorBitSize) | uint32(minor.value)<<indexBitSize)
}

// MustNewMajorClass creates a class composed of the 'major' only.
func MustNewMajorClass(major Major) Class {
	if !major.InBounds() {
		panic("provided invalid major")
	}
	return Class(uint32(major) << (32 - majorBitSize))
}
