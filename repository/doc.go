/*
Package repository defines the persistence contract used by the fancy db facade.

A Repository stores the models of the mapped model structures. It filters the models
only by their own fields - the relationship filters are reduced by the db package into
the primary key or foreign key filters before they reach a repository.

The implementations are placed in the subpackages:
	- memory - in-process repository based on the go-cache,
	- gormrepo - SQL repository based on the jinzhu/gorm.
*/
package repository
