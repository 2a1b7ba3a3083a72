/*
Package serializer contains the model serializers used by the view sets.

The ModelSerializer validates the JSON payloads into the Data, represents the model instances
and persists the model's own (scalar) fields. The relationship fields in the payloads are handled by the
nested write mixins: CreateMixin, UpdateMixin or their composition returned by the Nested function.

The mixins look at the keys of the initial payload:
	- the nested list fields creates the child models and relates them with the saved model,
	- the '<relation>_ids' fields relates the saved model with the models of given primary keys,
	- the nested single fields creates the child model and sets it as the 'belongs to' relation.
*/
package serializer
