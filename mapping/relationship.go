package mapping

// RelationshipKind is the relation field's relationship kind enum.
type RelationshipKind int

const (
	// RelUnknown unknown relationship kind.
	RelUnknown RelationshipKind = iota
	// RelBelongsTo 'belongs to' relationship kind.
	RelBelongsTo
	// RelHasOne 'has one' relationship kind.
	RelHasOne
	// RelHasMany 'has many' relationship kind.
	RelHasMany
	// RelMany2Many 'many 2 many' relationship kind.
	RelMany2Many
)

// String implements fmt.Stringer interface.
func (r RelationshipKind) String() string {
	switch r {
	case RelBelongsTo:
		return "BelongsTo"
	case RelHasOne:
		return "HasOne"
	case RelHasMany:
		return "HasMany"
	case RelMany2Many:
		return "Many2Many"
	}
	return "Unknown"
}

// Relationship is a structure that defines the relation field's relationship.
//
// For the BelongsTo relationship the foreign key is the field of the model that owns the relation field.
// For the HasOne and HasMany the foreign key is the field of the related model.
// For the Many2Many the foreign key is the join model field pointing to the owner and the
// many2many foreign key is the join model field pointing to the related model.
type Relationship struct {
	kind                 RelationshipKind
	mStruct              *ModelStruct
	foreignKey           *StructField
	joinModel            *ModelStruct
	manyToManyForeignKey *StructField

	// unresolved tag values
	joinModelName string
	foreignNames  []string
}

// Kind returns relationship Kind.
func (r *Relationship) Kind() RelationshipKind {
	return r.kind
}

// Struct returns the related model structure.
func (r *Relationship) Struct() *ModelStruct {
	return r.mStruct
}

// ForeignKey returns foreign key for given relationship.
func (r *Relationship) ForeignKey() *StructField {
	return r.foreignKey
}

// JoinModel is the join model used for the many2many relationship.
func (r *Relationship) JoinModel() *ModelStruct {
	return r.joinModel
}

// ManyToManyForeignKey returns the join model foreign key pointing to the related model.
func (r *Relationship) ManyToManyForeignKey() *StructField {
	return r.manyToManyForeignKey
}

// IsToMany checks if the relationship relates to multiple models.
func (r *Relationship) IsToMany() bool {
	return r.kind == RelHasMany || r.kind == RelMany2Many
}
