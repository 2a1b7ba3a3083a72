package viewset

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/neuronlabs/fancy/db"
	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/query"
	"github.com/neuronlabs/fancy/repository"
)

// List handles the collection listing. The queryset is filtered by the query parameters, searched,
// ordered and optionally paginated. The paginated responses are wrapped in the Page.
func (v *ViewSet) List(rw http.ResponseWriter, req *http.Request) {
	logger.Debugf("[LIST][%s] Begins", v.ModelStruct().Collection())
	defer func() { logger.Debugf("[LIST][%s] Finished", v.ModelStruct().Collection()) }()

	ctx := req.Context()
	s, err := v.Queryset(req)
	if err != nil {
		v.handleError(rw, req, err)
		return
	}
	v.filterQueryset(req, s)

	var count int64
	if s.Pagination != nil {
		if count, err = v.db.Count(ctx, s); err != nil {
			v.handleError(rw, req, err)
			return
		}
	}
	models, err := v.db.Find(ctx, s)
	if err != nil {
		v.handleError(rw, req, err)
		return
	}
	results := make([]interface{}, len(models))
	for i, model := range models {
		if results[i], err = v.serializer.Represent(ctx, v.db, model); err != nil {
			v.handleError(rw, req, err)
			return
		}
	}
	if s.Pagination == nil {
		writeJSON(rw, http.StatusOK, results)
		return
	}
	writeJSON(rw, http.StatusOK, &Page{
		Count:    count,
		Next:     v.nextLink(req, s.Pagination, count),
		Previous: v.previousLink(req, s.Pagination),
		Results:  results,
	})
}

// Retrieve handles getting the single model from the queryset.
func (v *ViewSet) Retrieve(rw http.ResponseWriter, req *http.Request) {
	logger.Debugf("[RETRIEVE][%s] Begins", v.ModelStruct().Collection())
	defer func() { logger.Debugf("[RETRIEVE][%s] Finished", v.ModelStruct().Collection()) }()

	instance, err := v.object(req)
	if err != nil {
		v.handleError(rw, req, err)
		return
	}
	v.represent(rw, req, http.StatusOK, instance)
}

// Create handles creating the model from the request payload.
func (v *ViewSet) Create(rw http.ResponseWriter, req *http.Request) {
	logger.Debugf("[CREATE][%s] Begins", v.ModelStruct().Collection())
	defer func() { logger.Debugf("[CREATE][%s] Finished", v.ModelStruct().Collection()) }()

	payload, err := decodePayload(req)
	if err != nil {
		v.handleError(rw, req, err)
		return
	}
	instance, err := v.create(req, payload)
	if err != nil {
		v.handleError(rw, req, err)
		return
	}
	v.represent(rw, req, http.StatusCreated, instance)
}

func (v *ViewSet) create(req *http.Request, payload map[string]interface{}) (interface{}, error) {
	data, err := v.serializer.Validate(payload, false)
	if err != nil {
		return nil, err
	}
	return v.serializer.Create(req.Context(), v.db, data)
}

// Update handles the full update of the model.
func (v *ViewSet) Update(rw http.ResponseWriter, req *http.Request) {
	logger.Debugf("[UPDATE][%s] Begins", v.ModelStruct().Collection())
	defer func() { logger.Debugf("[UPDATE][%s] Finished", v.ModelStruct().Collection()) }()
	v.update(rw, req, false)
}

// PartialUpdate handles the partial update of the model. The required fields may be omitted.
func (v *ViewSet) PartialUpdate(rw http.ResponseWriter, req *http.Request) {
	logger.Debugf("[PARTIAL_UPDATE][%s] Begins", v.ModelStruct().Collection())
	defer func() { logger.Debugf("[PARTIAL_UPDATE][%s] Finished", v.ModelStruct().Collection()) }()
	v.update(rw, req, true)
}

func (v *ViewSet) update(rw http.ResponseWriter, req *http.Request, partial bool) {
	instance, err := v.object(req)
	if err != nil {
		v.handleError(rw, req, err)
		return
	}
	payload, err := decodePayload(req)
	if err != nil {
		v.handleError(rw, req, err)
		return
	}
	data, err := v.serializer.Validate(payload, partial)
	if err != nil {
		v.handleError(rw, req, err)
		return
	}
	updated, err := v.serializer.Update(req.Context(), v.db, instance, data)
	if err != nil {
		v.handleError(rw, req, err)
		return
	}
	v.represent(rw, req, http.StatusOK, updated)
}

// Destroy handles deleting the model.
func (v *ViewSet) Destroy(rw http.ResponseWriter, req *http.Request) {
	logger.Debugf("[DESTROY][%s] Begins", v.ModelStruct().Collection())
	defer func() { logger.Debugf("[DESTROY][%s] Finished", v.ModelStruct().Collection()) }()

	instance, err := v.object(req)
	if err != nil {
		v.handleError(rw, req, err)
		return
	}
	if err = v.db.Delete(req.Context(), instance); err != nil {
		v.handleError(rw, req, err)
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}

// object gets the model identified by the request from the queryset. The invalid identifiers
// are treated as not found.
func (v *ViewSet) object(req *http.Request) (interface{}, error) {
	id, ok := lookupID(req)
	if !ok {
		return nil, errors.NewDet(ClassNoLookup, "no model identifier in the request")
	}
	s, err := v.Queryset(req)
	if err != nil {
		return nil, err
	}
	instance, err := v.db.GetIn(req.Context(), s, id)
	if err != nil {
		if errors.IsClass(err, db.ClassInvalidModel) {
			return nil, errors.NewDetf(repository.ClassNotFound, "invalid identifier: '%s'", id)
		}
		return nil, err
	}
	return instance, nil
}

func (v *ViewSet) represent(rw http.ResponseWriter, req *http.Request, status int, instance interface{}) {
	body, err := v.serializer.Represent(req.Context(), v.db, instance)
	if err != nil {
		v.handleError(rw, req, err)
		return
	}
	writeJSON(rw, status, body)
}

func (v *ViewSet) nextLink(req *http.Request, p *query.Pagination, count int64) *string {
	if int64(p.Offset+p.Limit) >= count {
		return nil
	}
	return v.pageLink(req, p.Limit, p.Offset+p.Limit)
}

func (v *ViewSet) previousLink(req *http.Request, p *query.Pagination) *string {
	if p.Offset <= 0 {
		return nil
	}
	offset := p.Offset - p.Limit
	if offset < 0 {
		offset = 0
	}
	return v.pageLink(req, p.Limit, offset)
}

// pageLink creates the request URL with the replaced pagination parameters. Zero offset is removed.
func (v *ViewSet) pageLink(req *http.Request, limit, offset int) *string {
	u := url.URL{Path: req.URL.Path}
	if req.Host != "" {
		u.Host = req.Host
		u.Scheme = "http"
		if req.TLS != nil {
			u.Scheme = "https"
		}
	}
	params := req.URL.Query()
	params.Set(v.settings.LimitParam, strconv.Itoa(limit))
	if offset == 0 {
		params.Del(v.settings.OffsetParam)
	} else {
		params.Set(v.settings.OffsetParam, strconv.Itoa(offset))
	}
	u.RawQuery = params.Encode()
	link := u.String()
	return &link
}
