package viewset

import (
	"net/http"
	"strings"

	"github.com/neuronlabs/fancy/annotation"
	"github.com/neuronlabs/fancy/auth"
	"github.com/neuronlabs/fancy/db"
	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/mapping"
	"github.com/neuronlabs/fancy/query"
	"github.com/neuronlabs/fancy/serializer"
)

// SelfModel is the join model created after the self view set create. The 'Left' field
// is set to the created model primary key and the 'Right' field to the credential id.
type SelfModel struct {
	Model *mapping.ModelStruct
	Left  string
	Right string
}

// SelfViewSet is the view set restricted to the models related to the request's credential.
// The requests without the credential see an empty collection.
type SelfViewSet struct {
	*ViewSet

	selfField string
	selfModel *SelfModel
}

// NewSelf creates the self view set. The 'selfField' is the lookup path i.e. 'owner' or 'members__id'
// compared with the credential id.
func NewSelf(s serializer.Serializer, d *db.DB, selfField string, options ...Option) (*SelfViewSet, error) {
	if selfField == "" {
		return nil, errors.NewDet(ClassInitialization, "no self field provided")
	}
	sv := &SelfViewSet{selfField: selfField}
	v, err := New(s, d, append([]Option{WithScoper(sv.scope)}, options...)...)
	if err != nil {
		return nil, err
	}
	sv.ViewSet = v
	return sv, nil
}

// MustNewSelf creates the self view set. Panics on error.
func MustNewSelf(s serializer.Serializer, d *db.DB, selfField string, options ...Option) *SelfViewSet {
	sv, err := NewSelf(s, d, selfField, options...)
	if err != nil {
		panic(err)
	}
	return sv
}

// SetSelfModel sets the join model created after each create. The 'left' and 'right' are
// the join model field names.
func (sv *SelfViewSet) SetSelfModel(models *mapping.ModelMap, model interface{}, left, right string) error {
	mStruct, err := models.GetModelStruct(model)
	if err != nil {
		return err
	}
	for _, name := range []string{left, right} {
		if field, ok := mStruct.FieldByName(name); !ok || field.IsRelationship() {
			return errors.NewDetf(ClassInitialization, "self model: '%s' have no field: '%s'", mStruct, name)
		}
	}
	sv.selfModel = &SelfModel{Model: mStruct, Left: left, Right: right}
	return nil
}

// SelfField returns the self lookup path.
func (sv *SelfViewSet) SelfField() string {
	return sv.selfField
}

// scope restricts the query scope to the credential's models.
func (sv *SelfViewSet) scope(req *http.Request, s *query.Scope) error {
	credential := auth.CtxGetCredential(req.Context())
	if credential == nil {
		s.None = true
		return nil
	}
	return s.AddKeyword(query.NewKeyword(sv.selfField, credential.ID))
}

// Create handles creating the model owned by the request's credential. The credential is required.
// If the self field is the model's own field, the payload value is replaced with the credential id.
// When the self model is set, the join model is created within the same transaction.
func (sv *SelfViewSet) Create(rw http.ResponseWriter, req *http.Request) {
	logger.Debugf("[CREATE][%s] Begins", sv.ModelStruct().Collection())
	defer func() { logger.Debugf("[CREATE][%s] Finished", sv.ModelStruct().Collection()) }()

	credential := sv.Credential(req)
	if credential == nil {
		sv.handleError(rw, req, errors.NewDet(auth.ClassCredentialRequired, "credential required"))
		return
	}
	payload, err := decodePayload(req)
	if err != nil {
		sv.handleError(rw, req, err)
		return
	}
	if !strings.Contains(sv.selfField, annotation.LookupSeparator) {
		payload[sv.selfField] = credential.ID
	}

	var instance interface{}
	err = sv.db.RunInTransaction(req.Context(), nil, func(tx *db.DB) error {
		data, err := sv.serializer.Validate(payload, false)
		if err != nil {
			return err
		}
		if instance, err = sv.serializer.Create(req.Context(), tx, data); err != nil {
			return err
		}
		if sv.selfModel == nil {
			return nil
		}
		primary, err := sv.ModelStruct().PrimaryValue(instance)
		if err != nil {
			return err
		}
		_, err = tx.CreateJoin(req.Context(), sv.selfModel.Model, sv.selfModel.Left, primary, sv.selfModel.Right, credential.ID)
		return err
	})
	if err != nil {
		sv.handleError(rw, req, err)
		return
	}
	sv.represent(rw, req, http.StatusCreated, instance)
}
