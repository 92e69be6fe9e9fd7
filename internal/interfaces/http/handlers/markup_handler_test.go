package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/phimark/internal/application/markup"
	"github.com/turtacn/phimark/internal/interfaces/http/middleware"
	"github.com/turtacn/phimark/internal/markup/annotation"
	"github.com/turtacn/phimark/internal/markup/trie"
	"github.com/turtacn/phimark/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newMarkupEngine(svc markup.Service) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	NewMarkupHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func newTestEngine() *gin.Engine {
	phrases := trie.New([]string{"A", "1"}, []string{"\n"})
	return newMarkupEngine(markup.NewService(phrases, nil, nil))
}

func postJSON(t *testing.T, r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func TestMarkupHandler_FindTags(t *testing.T) {
	r := newTestEngine()

	w := postJSON(t, r, "/api/v1/tags/find", gin.H{"text": "Dhr. <PERSOON Jan> en <PERSOON Piet>"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp TagsResponse
	decode(t, w, &resp)
	assert.Equal(t, []string{"<PERSOON Jan>", "<PERSOON Piet>"}, resp.Tags)
}

func TestMarkupHandler_FindTags_EmptyText(t *testing.T) {
	w := postJSON(t, newTestEngine(), "/api/v1/tags/find", gin.H{"text": ""})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tags":[]}`, w.Body.String())
}

func TestMarkupHandler_SplitTags(t *testing.T) {
	w := postJSON(t, newTestEngine(), "/api/v1/tags/split", gin.H{"text": "This is a <NAME name> in it"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp SegmentsResponse
	decode(t, w, &resp)
	assert.Equal(t, []string{"This is a ", "<NAME name>", " in it"}, resp.Segments)
}

func TestMarkupHandler_FlattenTag(t *testing.T) {
	w := postJSON(t, newTestEngine(), "/api/v1/tags/flatten", gin.H{"tag": "<INITIAL A <NAME Surname>>"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"type":"INITIALNAME","value":"A Surname"}`, w.Body.String())
}

func TestMarkupHandler_FlattenText(t *testing.T) {
	w := postJSON(t, newTestEngine(), "/api/v1/text/flatten",
		gin.H{"text": "Patient <PERSOON Jan <ACHTERNAAM Jansen>> is opgenomen"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp TextResponse
	decode(t, w, &resp)
	assert.Equal(t, "Patient <PERSOON Jan Jansen> is opgenomen", resp.Text)
}

func TestMarkupHandler_Annotate(t *testing.T) {
	w := postJSON(t, newTestEngine(), "/api/v1/annotations", gin.H{
		"raw_text":       "Patient Jan Jansen",
		"annotated_text": "Patient <PERSOON Jan <ACHTERNAAM Jansen>>",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp AnnotateResponse
	decode(t, w, &resp)
	assert.Equal(t, []annotation.Annotation{{Start: 8, End: 18, Tag: "PERSOON", Text: "Jan Jansen"}}, resp.Annotations)
	assert.Equal(t, "Patient <PERSOON Jan Jansen>", resp.FlattenedText)
	assert.Zero(t, resp.LeadingWhitespace)
}

func TestMarkupHandler_MergeTokens(t *testing.T) {
	w := postJSON(t, newTestEngine(), "/api/v1/tokens/merge", gin.H{"tokens": []string{"op", "A", "1", "\n"}})
	require.Equal(t, http.StatusOK, w.Code)

	var resp TokensResponse
	decode(t, w, &resp)
	assert.Equal(t, []string{"op", "A1", "\n"}, resp.Tokens)
}

func TestMarkupHandler_NormalizeSpans(t *testing.T) {
	w := postJSON(t, newTestEngine(), "/api/v1/spans/normalize", gin.H{"spans": []gin.H{
		{"text": "Dhr. ", "start": 0, "end": 5},
		{"text": "A", "label": "INITIAL", "start": 5, "end": 6},
		{"text": ". ", "start": 6, "end": 8},
		{"text": "<ACHTERNAAM <PAT Jansen>>", "start": 8, "end": 14},
	}})
	require.Equal(t, http.StatusOK, w.Code)

	var resp markup.NormalizeResult
	decode(t, w, &resp)
	assert.Equal(t, "Dhr. <PATIENT A. Jansen>", resp.Text)
	require.Len(t, resp.Spans, 2)
	assert.Equal(t, "PATIENT", resp.Spans[1].Label)
	assert.Equal(t, 5, resp.Spans[1].Start)
	assert.Equal(t, 14, resp.Spans[1].End)
}

func TestMarkupHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   interface{}
		status int
		code   errors.ErrorCode
	}{
		{"malformed markup", "/api/v1/tags/find", gin.H{"text": "<PERSOON Jan"}, http.StatusUnprocessableEntity, errors.ErrCodeMalformedMarkup},
		{"malformed tag", "/api/v1/tags/flatten", gin.H{"tag": "<A x><B y>"}, http.StatusUnprocessableEntity, errors.ErrCodeMalformedTag},
		{"unbalanced annotated text", "/api/v1/annotations", gin.H{"raw_text": "x", "annotated_text": "<A x"}, http.StatusUnprocessableEntity, errors.ErrCodeMalformedMarkup},
		{"whitespace raw text", "/api/v1/annotations", gin.H{"raw_text": "  ", "annotated_text": "x"}, http.StatusUnprocessableEntity, errors.ErrCodeEmptyOrWhitespaceOnly},
		{"missing field", "/api/v1/tags/find", gin.H{}, http.StatusBadRequest, errors.CodeInvalidParam},
		{"invalid json", "/api/v1/tokens/merge", "{not json", http.StatusBadRequest, errors.CodeInvalidParam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, newTestEngine(), tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)

			var resp ErrorResponse
			decode(t, w, &resp)
			assert.Equal(t, tt.code.String(), resp.Code)
			assert.NotEmpty(t, resp.Message)
			assert.Equal(t, w.Header().Get(middleware.RequestIDHeader), resp.RequestID)
		})
	}
}

type failingService struct {
	markup.Service
	err error
}

func (f failingService) FindTags(context.Context, string) ([]string, error) { return nil, f.err }

func TestMarkupHandler_MasksUnknownErrors(t *testing.T) {
	r := newMarkupEngine(failingService{err: assert.AnError})

	w := postJSON(t, r, "/api/v1/tags/find", gin.H{"text": "x"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, errors.ErrCodeInternal.String(), resp.Code)
	assert.Equal(t, "internal server error", resp.Message)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestMarkupHandler_Timeout(t *testing.T) {
	err := errors.Wrap(context.Canceled, errors.ErrCodeTimeout, "request cancelled")
	w := postJSON(t, newMarkupEngine(failingService{err: err}), "/api/v1/tags/find", gin.H{"text": "x"})

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	var resp ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, errors.ErrCodeTimeout.String(), resp.Code)
}
