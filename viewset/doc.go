/*
Package viewset implements the http handlers of the model collections.

The ViewSet translates the request query parameters into the scope filters with the
type coercion of the values. The parameters like:

	?title__icontains=go&pages__gte=100&author__in=(1,2)&published=true&editor=null

results in the filters on the 'title', 'pages', 'author', 'published' and 'editor' fields,
where '100' is cast into an integer, '(1,2)' is literal evaluated into the sequence,
and the 'true' and 'null' are converted into the boolean and nil values. The reserved
parameters (search, ordering, limit, offset ...) are handled by the search, ordering
and pagination backends of the List handler.

The SelfViewSet additionally restricts the collection to the models owned by the request's credential.
*/
package viewset
