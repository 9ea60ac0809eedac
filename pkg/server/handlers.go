package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"mercator-hq/paramengine/pkg/engine"
	"mercator-hq/paramengine/pkg/function"
	"mercator-hq/paramengine/pkg/index"
	"mercator-hq/paramengine/pkg/model"
	"mercator-hq/paramengine/pkg/prepared"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// attributePrefix marks attribute URL parameters.
const attributePrefix = "attr."

// Querier answers parameter queries and function calls. *engine.Engine
// implements it.
type Querier interface {
	Get(ctx context.Context, name string, pctx *engine.ParamContext) (*engine.ParamValue, error)
	CallFunction(ctx context.Context, name string, args ...any) (any, error)
}

// QueryRequest is the JSON body of a POST query. A nil Levels derives the
// level values from Attributes.
type QueryRequest struct {
	Levels     []any          `json:"levels"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Greedy     []string       `json:"greedy,omitempty"`
	Extraction string         `json:"extraction,omitempty"`
}

// QueryResponse is the answer to a query.
type QueryResponse struct {
	Parameter string   `json:"parameter"`
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
}

// FunctionRequest is the JSON body of a function call.
type FunctionRequest struct {
	Args []any `json:"args"`
}

// FunctionResponse is the result of a function call.
type FunctionResponse struct {
	Function string `json:"function"`
	Result   any    `json:"result"`
}

// ErrorResponse is the body of every error answer.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes an error.
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// badRequestError marks malformed requests.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}

type queryHandler struct {
	engine Querier
}

func (h *queryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var (
		req QueryRequest
		err error
	)
	if r.Method == http.MethodPost {
		err = decodeJSON(r, &req)
	} else {
		req, err = queryFromURL(r)
	}
	if err != nil {
		writeQueryError(w, err)
		return
	}

	pctx, err := req.paramContext()
	if err != nil {
		writeQueryError(w, err)
		return
	}

	value, err := h.engine.Get(r.Context(), name, pctx)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newQueryResponse(value))
}

func queryFromURL(r *http.Request) (QueryRequest, error) {
	q := r.URL.Query()
	req := QueryRequest{
		Greedy:     q["greedy"],
		Extraction: q.Get("extraction"),
	}

	if levels, ok := q["level"]; ok {
		req.Levels = make([]any, len(levels))
		for i, v := range levels {
			req.Levels[i] = v
		}
	}

	for key, values := range q {
		attr, ok := strings.CutPrefix(key, attributePrefix)
		if !ok {
			continue
		}
		if attr == "" {
			return req, badRequest("attribute parameter %q has no name", key)
		}
		if req.Attributes == nil {
			req.Attributes = make(map[string]any)
		}
		req.Attributes[attr] = values[0]
	}
	return req, nil
}

// paramContext converts the request into an engine query context.
func (req QueryRequest) paramContext() (*engine.ParamContext, error) {
	pctx := engine.NewParamContext()
	if req.Levels != nil {
		pctx.WithLevelValues(req.Levels...)
	}
	for k, v := range req.Attributes {
		pctx.Set(k, v)
	}

	if len(req.Greedy) > 0 {
		overrides := index.NewOverrides()
		for _, level := range req.Greedy {
			if level == "*" {
				overrides.SetAllGreedy()
				continue
			}
			overrides.SetGreedy(level)
		}
		pctx.WithOverrides(overrides)
	}

	if req.Extraction != "" {
		extraction, ok := index.ParseExtraction(req.Extraction)
		if !ok {
			return nil, badRequest("unknown extraction policy %q", req.Extraction)
		}
		pctx.WithExtraction(extraction)
	}
	return pctx, nil
}

func newQueryResponse(value *engine.ParamValue) QueryResponse {
	resp := QueryResponse{
		Parameter: value.Parameter(),
		Columns:   value.Columns(),
		Rows:      make([][]any, value.Len()),
	}
	for i, row := range value.Rows() {
		cells := make([]any, len(row))
		for j, cell := range row {
			cells[j] = cell.Interface()
		}
		resp.Rows[i] = cells
	}
	return resp
}

type functionHandler struct {
	engine Querier
}

func (h *functionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req FunctionRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeQueryError(w, err)
			return
		}
	}

	result, err := h.engine.CallFunction(r.Context(), name, req.Args...)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FunctionResponse{Function: name, Result: result})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid request body: %v", err)
	}
	return nil
}

// writeQueryError maps engine errors to HTTP answers. Specific causes are
// matched before the QueryError wrapper that may carry them.
func writeQueryError(w http.ResponseWriter, err error) {
	var (
		badReq       *badRequestError
		unknownParam *engine.UnknownParameterError
		noValue      *engine.ParameterValueNotFoundError
		badLevels    *engine.InvalidLevelValuesError
		noCreator    *engine.UndefinedLevelCreatorError
		badFuncRef   *engine.InvalidFunctionReferenceError
		unknownFunc  *function.UnknownFunctionError
		invocation   *function.InvocationError
		queryErr     *engine.QueryError
		badType      *prepared.UnresolvedTypeError
		badMatcher   *prepared.UnresolvedMatcherError
		badEntry     *prepared.EntryError
		badDef       *model.ValidationError
	)

	switch {
	case errors.As(err, &badReq):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.As(err, &unknownParam):
		writeError(w, http.StatusNotFound, "unknown_parameter", err.Error())
	case errors.As(err, &noValue):
		writeError(w, http.StatusNotFound, "value_not_found", err.Error())
	case errors.As(err, &badLevels):
		writeError(w, http.StatusBadRequest, "invalid_level_values", err.Error())
	case errors.As(err, &noCreator):
		writeError(w, http.StatusBadRequest, "undefined_level_creator", err.Error())
	case errors.As(err, &unknownFunc):
		writeError(w, http.StatusNotFound, "unknown_function", err.Error())
	case errors.As(err, &badType), errors.As(err, &badMatcher), errors.As(err, &badEntry), errors.As(err, &badDef):
		writeError(w, http.StatusInternalServerError, "invalid_parameter", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", err.Error())
	case errors.As(err, &queryErr), errors.As(err, &badFuncRef), errors.As(err, &invocation):
		writeError(w, http.StatusUnprocessableEntity, "query_failed", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func writeError(w http.ResponseWriter, code int, typ, msg string) {
	writeJSON(w, code, ErrorResponse{Error: ErrorDetail{Type: typ, Message: msg}})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
