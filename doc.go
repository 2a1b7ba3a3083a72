// Package fancy is the root of the nested-write serializers and query string view sets.
// It consists of the following packages:
// - mapping - maps the Go structures into the models with their fields and relationships.
// - query - contains the query scope, filter keywords with the lookup operators,
//	search, ordering and pagination, and the query parameters type coercion.
// - repository - is the persistence contract with the 'memory' and 'gormrepo' implementations.
// - db - is the model aware facade over the repositories. It reduces the relationship
//	filters, manages the relations and runs the transactions.
// - serializer - validates, represents and saves the models. The nested write mixins
//	creates the nested models and sets the relations within a single transaction.
// - viewset - contains the collection http handlers and the credential scoped view set.
// - auth - is the request credential with the JWT verifier.
// - gateway - routes the view sets and serves them with the http server.
// - config, errors, log - are the configuration, classified errors and the leveled logging.
package fancy
