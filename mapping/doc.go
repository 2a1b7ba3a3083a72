// Package mapping contains the model's structures mapped from the tagged Go structs.
//
// The models are registered within the ModelMap, which resolves their primary keys,
// attributes, foreign keys and the relationships of the following kinds:
// BelongsTo, HasOne, HasMany and Many2Many (with the join model).
//
// The fields are mapped with the 'neuron' struct tag:
//
//	type Book struct {
//		ID       int     `neuron:"type=primary"`
//		Title    string  `neuron:"type=attr"`
//		Author   *Author `neuron:"type=relation;foreign=AuthorID"`
//		AuthorID int     `neuron:"type=foreign"`
//		Tags     []*Tag  `neuron:"type=relation;many2many=BookTag;foreign=BookID,TagID"`
//	}
//
// Untagged fields are mapped by convention: the 'ID' field is the primary key,
// pointer or slice of structs is a relationship and the rest are attributes.
package mapping
