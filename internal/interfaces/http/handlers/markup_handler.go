package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/phimark/internal/application/markup"
	"github.com/turtacn/phimark/internal/markup/annotation"
)

// MarkupHandler exposes markup.Service under /api/v1.
type MarkupHandler struct {
	svc markup.Service
}

// NewMarkupHandler creates a MarkupHandler.
func NewMarkupHandler(svc markup.Service) *MarkupHandler {
	return &MarkupHandler{svc: svc}
}

// RegisterRoutes mounts the markup endpoints on rg.
func (h *MarkupHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/tags/find", h.FindTags)
	rg.POST("/tags/split", h.SplitTags)
	rg.POST("/tags/flatten", h.FlattenTag)
	rg.POST("/text/flatten", h.FlattenText)
	rg.POST("/annotations", h.Annotate)
	rg.POST("/tokens/merge", h.MergeTokens)
	rg.POST("/spans/normalize", h.NormalizeSpans)
}

// TextRequest carries a single piece of text.  An empty string is valid.
type TextRequest struct {
	Text *string `json:"text" binding:"required"`
}

type TagsResponse struct {
	Tags []string `json:"tags"`
}

type SegmentsResponse struct {
	Segments []string `json:"segments"`
}

type FlattenTagRequest struct {
	Tag *string `json:"tag" binding:"required"`
}

type TextResponse struct {
	Text string `json:"text"`
}

type AnnotateRequest struct {
	RawText       string `json:"raw_text"`
	AnnotatedText string `json:"annotated_text"`
}

type AnnotateResponse struct {
	Annotations       []annotation.Annotation `json:"annotations"`
	FlattenedText     string                  `json:"flattened_text"`
	LeadingWhitespace int                     `json:"leading_whitespace"`
}

type TokensRequest struct {
	Tokens []string `json:"tokens"`
}

type TokensResponse struct {
	Tokens []string `json:"tokens"`
}

type NormalizeRequest struct {
	Spans []markup.SpanInput `json:"spans"`
}

// FindTags handles POST /api/v1/tags/find.
func (h *MarkupHandler) FindTags(c *gin.Context) {
	var req TextRequest
	if !bindJSON(c, &req) {
		return
	}
	tags, err := h.svc.FindTags(c.Request.Context(), *req.Text)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, TagsResponse{Tags: nonNil(tags)})
}

// SplitTags handles POST /api/v1/tags/split.
func (h *MarkupHandler) SplitTags(c *gin.Context) {
	var req TextRequest
	if !bindJSON(c, &req) {
		return
	}
	segments, err := h.svc.SplitTags(c.Request.Context(), *req.Text)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, SegmentsResponse{Segments: nonNil(segments)})
}

// FlattenTag handles POST /api/v1/tags/flatten.
func (h *MarkupHandler) FlattenTag(c *gin.Context) {
	var req FlattenTagRequest
	if !bindJSON(c, &req) {
		return
	}
	flat, err := h.svc.FlattenTag(c.Request.Context(), *req.Tag)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, flat)
}

// FlattenText handles POST /api/v1/text/flatten.
func (h *MarkupHandler) FlattenText(c *gin.Context) {
	var req TextRequest
	if !bindJSON(c, &req) {
		return
	}
	text, err := h.svc.FlattenText(c.Request.Context(), *req.Text)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, TextResponse{Text: text})
}

// Annotate handles POST /api/v1/annotations.  Annotation start and end are
// UTF-8 byte offsets into raw_text, not character indices.
func (h *MarkupHandler) Annotate(c *gin.Context) {
	var req AnnotateRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.Annotate(c.Request.Context(), &markup.AnnotateInput{
		RawText:       req.RawText,
		AnnotatedText: req.AnnotatedText,
	})
	if err != nil {
		writeAppError(c, err)
		return
	}
	anns := res.Annotations
	if anns == nil {
		anns = []annotation.Annotation{}
	}
	c.JSON(http.StatusOK, AnnotateResponse{
		Annotations:       anns,
		FlattenedText:     res.FlattenedText,
		LeadingWhitespace: res.LeadingWhitespace,
	})
}

// MergeTokens handles POST /api/v1/tokens/merge.
func (h *MarkupHandler) MergeTokens(c *gin.Context) {
	var req TokensRequest
	if !bindJSON(c, &req) {
		return
	}
	tokens, err := h.svc.MergeTokens(c.Request.Context(), req.Tokens)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, TokensResponse{Tokens: nonNil(tokens)})
}

// NormalizeSpans handles POST /api/v1/spans/normalize.
func (h *MarkupHandler) NormalizeSpans(c *gin.Context) {
	var req NormalizeRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.NormalizeSpans(c.Request.Context(), req.Spans)
	if err != nil {
		writeAppError(c, err)
		return
	}
	if res.Spans == nil {
		res.Spans = []markup.SpanOutput{}
	}
	c.JSON(http.StatusOK, res)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
