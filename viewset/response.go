package viewset

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/neuronlabs/fancy/auth"
	"github.com/neuronlabs/fancy/db"
	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/mapping"
	"github.com/neuronlabs/fancy/query"
	"github.com/neuronlabs/fancy/repository"
	"github.com/neuronlabs/fancy/serializer"
)

// Response detail messages.
const (
	MsgNotFound = "Not found."
	MsgInternal = "A server error occurred."
)

// Detail is the single message error response body.
type Detail struct {
	Detail string `json:"detail"`
}

// Page is the paginated list response body.
type Page struct {
	Count    int64         `json:"count"`
	Next     *string       `json:"next"`
	Previous *string       `json:"previous"`
	Results  []interface{} `json:"results"`
}

func writeJSON(rw http.ResponseWriter, status int, body interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(rw).Encode(body); err != nil {
		logger.Errorf("Writing response failed: %v", err)
	}
}

// decodePayload decodes the request body into the JSON object.
func decodePayload(req *http.Request) (map[string]interface{}, error) {
	var payload interface{}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		if err == io.EOF {
			return map[string]interface{}{}, nil
		}
		return nil, errors.NewDetf(ClassInvalidPayload, "JSON parse error - %v", err)
	}
	object, ok := payload.(map[string]interface{})
	if !ok {
		return nil, &serializer.ValidationError{Errors: map[string]interface{}{
			"non_field_errors": []string{"Invalid data. Expected a dictionary, but got " + jsonTypeName(payload) + "."},
		}}
	}
	return object, nil
}

func jsonTypeName(value interface{}) string {
	switch value.(type) {
	case []interface{}:
		return "list"
	case string:
		return "str"
	case float64:
		return "int"
	case bool:
		return "bool"
	}
	return "null"
}

// handleError writes the error response with the status matching the error classification.
func (v *ViewSet) handleError(rw http.ResponseWriter, req *http.Request, err error) {
	if verr, ok := err.(*serializer.ValidationError); ok {
		logger.Debug2f("[%s][%s] Validation failed: %v", req.Method, v.ModelStruct().Collection(), verr)
		writeJSON(rw, http.StatusBadRequest, verr)
		return
	}
	status, message := errorStatus(err)
	switch {
	case status == http.StatusUnauthorized:
		auth.Unauthorized(rw, message)
		return
	case status >= http.StatusInternalServerError:
		logger.Errorf("[%s][%s] Failed: %v", req.Method, v.ModelStruct().Collection(), err)
	default:
		logger.Debugf("[%s][%s] Client error: %v", req.Method, v.ModelStruct().Collection(), err)
	}
	writeJSON(rw, status, &Detail{Detail: message})
}

// errorStatus maps the error classification into the http status and the response message.
func errorStatus(err error) (int, string) {
	e, ok := err.(*errors.DetailedError)
	if !ok {
		return http.StatusInternalServerError, MsgInternal
	}
	switch {
	case errors.IsClass(err, repository.ClassNotFound), errors.IsClass(err, ClassNoLookup):
		return http.StatusNotFound, MsgNotFound
	case errors.IsClass(err, auth.ClassCredentialRequired):
		return http.StatusUnauthorized, auth.MsgNotAuthenticated
	case errors.IsClass(err, repository.ClassConflict):
		return http.StatusConflict, e.Message
	case errors.IsClass(err, query.ClassInternal):
		return http.StatusInternalServerError, MsgInternal
	case errors.IsMajor(err, query.MjrQuery),
		errors.IsClass(err, db.ClassRelatedNotFound),
		errors.IsClass(err, db.ClassInvalidRelation),
		errors.IsClass(err, mapping.ClassFieldValue),
		errors.IsClass(err, serializer.ClassInvalidField),
		errors.IsClass(err, serializer.ClassNestedWritesUnsupported),
		errors.IsClass(err, ClassInvalidPayload):
		return http.StatusBadRequest, e.Message
	}
	return http.StatusInternalServerError, MsgInternal
}
