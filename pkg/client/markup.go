package client

import (
	"context"

	"github.com/turtacn/phimark/internal/application/markup"
	"github.com/turtacn/phimark/internal/markup/annotation"
	"github.com/turtacn/phimark/pkg/errors"
)

var _ markup.Service = (*Client)(nil)

type textBody struct {
	Text string `json:"text"`
}

type tagBody struct {
	Tag string `json:"tag"`
}

type annotateBody struct {
	RawText       string `json:"raw_text"`
	AnnotatedText string `json:"annotated_text"`
}

type tokensBody struct {
	Tokens []string `json:"tokens"`
}

type spansBody struct {
	Spans []markup.SpanInput `json:"spans"`
}

// FindTags calls POST /api/v1/tags/find.
func (c *Client) FindTags(ctx context.Context, text string) ([]string, error) {
	var resp struct {
		Tags []string `json:"tags"`
	}
	if err := c.post(ctx, "/api/v1/tags/find", textBody{Text: text}, &resp); err != nil {
		return nil, err
	}
	return resp.Tags, nil
}

// SplitTags calls POST /api/v1/tags/split.
func (c *Client) SplitTags(ctx context.Context, text string) ([]string, error) {
	var resp struct {
		Segments []string `json:"segments"`
	}
	if err := c.post(ctx, "/api/v1/tags/split", textBody{Text: text}, &resp); err != nil {
		return nil, err
	}
	return resp.Segments, nil
}

// FlattenTag calls POST /api/v1/tags/flatten.
func (c *Client) FlattenTag(ctx context.Context, t string) (*markup.FlatTag, error) {
	var resp markup.FlatTag
	if err := c.post(ctx, "/api/v1/tags/flatten", tagBody{Tag: t}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FlattenText calls POST /api/v1/text/flatten.
func (c *Client) FlattenText(ctx context.Context, text string) (string, error) {
	var resp textBody
	if err := c.post(ctx, "/api/v1/text/flatten", textBody{Text: text}, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Annotate calls POST /api/v1/annotations.
func (c *Client) Annotate(ctx context.Context, input *markup.AnnotateInput) (*markup.AnnotateResult, error) {
	if input == nil {
		return nil, errors.InvalidParam("annotate input is required")
	}
	var resp markup.AnnotateResult
	body := annotateBody{RawText: input.RawText, AnnotatedText: input.AnnotatedText}
	if err := c.post(ctx, "/api/v1/annotations", body, &resp); err != nil {
		return nil, err
	}
	if resp.Annotations == nil {
		resp.Annotations = []annotation.Annotation{}
	}
	return &resp, nil
}

// MergeTokens calls POST /api/v1/tokens/merge.
func (c *Client) MergeTokens(ctx context.Context, tokens []string) ([]string, error) {
	var resp tokensBody
	if err := c.post(ctx, "/api/v1/tokens/merge", tokensBody{Tokens: tokens}, &resp); err != nil {
		return nil, err
	}
	return resp.Tokens, nil
}

// NormalizeSpans calls POST /api/v1/spans/normalize.
func (c *Client) NormalizeSpans(ctx context.Context, spans []markup.SpanInput) (*markup.NormalizeResult, error) {
	var resp markup.NormalizeResult
	if err := c.post(ctx, "/api/v1/spans/normalize", spansBody{Spans: spans}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
