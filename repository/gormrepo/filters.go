package gormrepo

import (
	"fmt"
	"strings"

	"github.com/jinzhu/gorm"

	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/mapping"
	"github.com/neuronlabs/fancy/query"
	"github.com/neuronlabs/fancy/repository"
)

// likeEscape is the escape character used in the LIKE patterns. The backslash is not portable
// between the dialects.
const likeEscape = "!"

var likeReplacer = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

type whereQ struct {
	Str    string
	values []interface{}
}

// applyScope applies the scope filters and search on the 'db'.
func (g *GORMRepository) applyScope(db *gorm.DB, gm *gormModel, s *query.Scope) (*gorm.DB, error) {
	for _, filter := range s.Filters {
		wq, err := g.buildWhere(gm, filter)
		if err != nil {
			return nil, err
		}
		db = db.Where(wq.Str, wq.values...)
	}
	if s.Search != nil {
		wq, err := g.buildSearch(gm, s.Search)
		if err != nil {
			return nil, err
		}
		db = db.Where(wq.Str, wq.values...)
	}
	return db, nil
}

func (g *GORMRepository) buildWhere(gm *gormModel, filter *query.FilterField) (*whereQ, error) {
	if filter.IsNested() {
		return nil, errors.NewDetf(repository.ClassFilter, "relationship filter: '%s' is not supported by the gorm repository", filter.Path())
	}
	column, err := gm.column(filter.StructField)
	if err != nil {
		return nil, err
	}
	op := filter.Operator

	switch op {
	case query.OpIn:
		if len(filter.Values) == 0 {
			return &whereQ{Str: "1 = 0"}, nil
		}
		return &whereQ{Str: column + " IN (?)", values: []interface{}{filter.Values}}, nil
	case query.OpIsNull:
		isNull, _ := filter.Values[0].(bool)
		if isNull {
			return &whereQ{Str: column + " IS NULL"}, nil
		}
		return &whereQ{Str: column + " IS NOT NULL"}, nil
	}
	if len(filter.Values) != 1 {
		return nil, errors.NewDetf(repository.ClassFilter, "too many values for the filter: '%s'", filter)
	}
	value := filter.Values[0]

	if op.IsStringOnly() {
		if !filter.StructField.IsString() {
			column = g.castText(column)
		}
		pattern := fmt.Sprint(value)
		switch op {
		case query.OpIExact:
			return &whereQ{Str: "LOWER(" + column + ") = LOWER(?)", values: []interface{}{pattern}}, nil
		case query.OpContains, query.OpIContains:
			pattern = "%" + likeReplacer.Replace(pattern) + "%"
		case query.OpStartsWith, query.OpIStartsWith:
			pattern = likeReplacer.Replace(pattern) + "%"
		case query.OpEndsWith, query.OpIEndsWith:
			pattern = "%" + likeReplacer.Replace(pattern)
		}
		if op.IsCaseInsensitive() {
			return &whereQ{Str: "LOWER(" + column + ") LIKE LOWER(?) ESCAPE '" + likeEscape + "'", values: []interface{}{pattern}}, nil
		}
		return &whereQ{Str: column + " LIKE ? ESCAPE '" + likeEscape + "'", values: []interface{}{pattern}}, nil
	}

	var sqlOp string
	switch op {
	case query.OpExact:
		sqlOp = "="
	case query.OpNotEqual:
		sqlOp = "<>"
	case query.OpGreaterThan:
		sqlOp = ">"
	case query.OpGreaterEqual:
		sqlOp = ">="
	case query.OpLessThan:
		sqlOp = "<"
	case query.OpLessEqual:
		sqlOp = "<="
	default:
		return nil, errors.NewDetf(repository.ClassFilter, "operator: '%s' is not supported by the gorm repository", op)
	}
	return &whereQ{Str: column + " " + sqlOp + " ?", values: []interface{}{value}}, nil
}

// buildSearch builds the search condition: every term needs to be contained within any of the search fields.
func (g *GORMRepository) buildSearch(gm *gormModel, search *query.Search) (*whereQ, error) {
	columns := make([]string, len(search.Fields))
	for i, field := range search.Fields {
		column, err := gm.column(field)
		if err != nil {
			return nil, err
		}
		if !field.IsString() {
			column = g.castText(column)
		}
		columns[i] = "LOWER(" + column + ") LIKE LOWER(?) ESCAPE '" + likeEscape + "'"
	}

	wq := &whereQ{}
	terms := make([]string, len(search.Terms))
	for i, term := range search.Terms {
		terms[i] = "(" + strings.Join(columns, " OR ") + ")"
		pattern := "%" + likeReplacer.Replace(term) + "%"
		for range columns {
			wq.values = append(wq.values, pattern)
		}
	}
	wq.Str = strings.Join(terms, " AND ")
	return wq, nil
}

func (g *GORMRepository) castText(column string) string {
	if g.db.Dialect().GetName() == "mysql" {
		return "CAST(" + column + " AS CHAR)"
	}
	return "CAST(" + column + " AS TEXT)"
}

func (g *GORMRepository) applySorts(db *gorm.DB, gm *gormModel, s *query.Scope) (*gorm.DB, error) {
	for _, sort := range s.SortsOrDefault() {
		column, err := gm.column(sort.Field)
		if err != nil {
			return nil, err
		}
		if sort.Descending {
			column += " DESC"
		}
		db = db.Order(column)
	}
	return db, nil
}

func primaryWhere(gm *gormModel) (string, error) {
	column, err := gm.column(gm.mStruct.Primary())
	if err != nil {
		return "", err
	}
	return column + " = ?", nil
}

// columnValues gets the column name to value mapping for the model's 'fields'.
func columnValues(gm *gormModel, model interface{}, fields []*mapping.StructField) (map[string]interface{}, error) {
	values := make(map[string]interface{}, len(fields))
	for _, field := range fields {
		name, ok := gm.columns[field]
		if !ok || field.IsPrimary() {
			return nil, errors.NewDetf(repository.ClassModel, "field: '%s' can't be updated in the table: '%s'", field, gm.table)
		}
		value, err := gm.mStruct.FieldValue(model, field)
		if err != nil {
			return nil, err
		}
		values[name] = value
	}
	return values, nil
}
