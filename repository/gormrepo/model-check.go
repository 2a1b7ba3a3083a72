package gormrepo

import (
	"github.com/jinzhu/gorm"

	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/mapping"
	"github.com/neuronlabs/fancy/repository"
)

// gormModel is the mapping between the model struct and its gorm table columns.
type gormModel struct {
	mStruct *mapping.ModelStruct
	table   string
	columns map[*mapping.StructField]string
	quote   func(string) string
}

// column returns the quoted, table prefixed column name of the 'field'.
func (m *gormModel) column(field *mapping.StructField) (string, error) {
	name, ok := m.columns[field]
	if !ok {
		return "", errors.NewDetf(repository.ClassModel, "field: '%s' is not a column of the table: '%s'", field, m.table)
	}
	return m.quote(m.table) + "." + m.quote(name), nil
}

func (g *GORMRepository) model(mStruct *mapping.ModelStruct) (*gormModel, error) {
	g.models.lock.RLock()
	gm, ok := g.models.models[mStruct]
	g.models.lock.RUnlock()
	if ok {
		return gm, nil
	}

	gm, err := checkModel(g.db, mStruct)
	if err != nil {
		return nil, err
	}
	g.models.lock.Lock()
	g.models.models[mStruct] = gm
	g.models.lock.Unlock()
	return gm, nil
}

// checkModel maps the model struct fields into the gorm columns. The relationship fields
// must be either ignored by the gorm or resolved as the gorm relationships.
func checkModel(db *gorm.DB, mStruct *mapping.ModelStruct) (*gormModel, error) {
	scope := db.NewScope(mStruct.NewModel())
	gormStruct := scope.GetModelStruct()

	byName := make(map[string]*gorm.StructField, len(gormStruct.StructFields))
	for _, field := range gormStruct.StructFields {
		byName[field.Name] = field
	}

	gm := &gormModel{
		mStruct: mStruct,
		table:   scope.TableName(),
		columns: make(map[*mapping.StructField]string),
		quote:   db.Dialect().Quote,
	}
	for _, field := range mStruct.Fields() {
		gField, ok := byName[field.Name()]
		if field.IsRelationship() {
			if ok && !gField.IsIgnored && gField.Relationship == nil {
				return nil, errors.NewDetf(repository.ClassModel, "relationship field: '%s' is neither ignored nor a gorm relationship", field).
					SetDetails("tag the field with `gorm:\"-\"`")
			}
			continue
		}
		if !ok || gField.IsIgnored {
			return nil, errors.NewDetf(repository.ClassModel, "field: '%s' is not mapped by the gorm", field)
		}
		gm.columns[field] = gField.DBName
	}
	return gm, nil
}
