/*
Package gateway routes the view sets with the gin engine and serves them with the http server.
The named middlewares are registered within the Container and chained before each handler
by their names, where the router's default middlewares are applied first.
*/
package gateway
