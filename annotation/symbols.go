package annotation

// Separators and other symbols.
const (
	// Separator is the symbol used to separate the sub-tags values for given neuron tag.
	// Example: `neuron:"foreign=foreign,related_foreign"`
	//										 ^
	Separator = ","

	// TagSeparator is the symbol used to separate neuron based tags.
	// Example: `neuron:"type=attr;name=custom_name"`
	//								 ^
	TagSeparator = ";"

	// LookupSeparator is the symbol used to separate the field names and the lookup operator
	// within the query filter keywords.
	// Example: author__name__icontains
	//                ^     ^
	LookupSeparator = "__"

	// IDsSuffix is the suffix of the serializer fields containing the list of related primary keys.
	// Example: tag_ids
	//             ^
	IDsSuffix = "_ids"

	// IDSuffix is the suffix of the belongs-to foreign key field names.
	// Example: author_id
	//                ^
	IDSuffix = "_id"
)
