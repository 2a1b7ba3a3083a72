/*
Package db is the model aware facade over the fancy repositories.

The DB resolves the repository of each model, reduces the relationship filters
into the filters over the model's own fields and manages the relationships:
the many2many join models and the has many / has one foreign keys. It also
runs the functions within the transactions of all used repositories.
*/
package db
