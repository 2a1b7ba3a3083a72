// Command fancyd serves the bookshelf collections with the query string filtering view sets
// and nested-write serializers.
package main

func main() {
	Execute()
}
