// Package annotation contains the struct tag and query keyword symbols used to map the models.
package annotation

// Neuron is the root structfield annotation tag.
const Neuron = "neuron"

// Model primary field annotation tags.
const (
	Primary      = "primary"
	PrimaryFull  = "primary_key"
	PrimaryShort = "pk"
	ID           = "id"
)

// Model attribute field annotation tags.
const (
	Attribute     = "attr"
	AttributeFull = "attribute"
)

// Model relationship field annotation tags.
const (
	Relation     = "relation"
	RelationFull = "relationship"
)

const (
	// Name is the neuron model field's tag used to set the NeuronName.
	Name = "name"
	// FieldType is the neuron model field's tag used to set the neuron field type.
	FieldType = "type"
)

// ManyToMany is the neuron relationship field tag that states this relationship is of type many2many.
// Example: `neuron:"type=relation;many2many=BookTag;foreign=BookID,TagID"`
const ManyToMany = "many2many"

// Model foreign key field annotation tags.
const (
	ForeignKey      = "foreign"
	ForeignKeyFull  = "foreign_key"
	ForeignKeyShort = "fk"
)

// DefaultForeign is the placeholder used in the many2many 'foreign' values
// for the foreign key that should be resolved by default.
// Example: `neuron:"type=relation;many2many;foreign=_,SecondForeign"`
const DefaultForeign = "_"
