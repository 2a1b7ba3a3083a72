/*
Package query contains the query scope definitions used by the fancy view sets.

The view sets translate the request query string parameters into the filter
keywords (ParseParams), which are then resolved within the Scope into the
model's filter fields. A keyword key is a field path separated with the '__'
lookup separator, optionally followed by the filter operator lookup, i.e.:

	title__icontains=go
	author__name=john
	tags__in=(1,2,3)

The Scope carries also the search terms, sorting fields and the limit/offset
pagination.
*/
package query
