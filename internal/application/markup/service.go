// Package markup provides the application-level service over the markup
// engine.  It is the single entry point used by the HTTP handlers and the CLI:
// it checks the request context, records metrics and logs outcomes, while the
// engine packages under internal/markup stay pure.
package markup

import (
	"context"

	"github.com/turtacn/phimark/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/phimark/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/phimark/internal/markup/annotation"
	"github.com/turtacn/phimark/internal/markup/span"
	"github.com/turtacn/phimark/internal/markup/tag"
	"github.com/turtacn/phimark/internal/markup/trie"
	"github.com/turtacn/phimark/pkg/errors"
)

// Operation names, used as metric labels and log fields.
const (
	OpFindTags       = "find_tags"
	OpSplitTags      = "split_tags"
	OpFlattenTag     = "flatten_tag"
	OpFlattenText    = "flatten_text"
	OpAnnotate       = "annotate"
	OpMergeTokens    = "merge_tokens"
	OpNormalizeSpans = "normalize_spans"
)

// Service defines the markup application operations.
type Service interface {
	FindTags(ctx context.Context, text string) ([]string, error)
	SplitTags(ctx context.Context, text string) ([]string, error)
	FlattenTag(ctx context.Context, t string) (*FlatTag, error)
	FlattenText(ctx context.Context, text string) (string, error)
	Annotate(ctx context.Context, input *AnnotateInput) (*AnnotateResult, error)
	MergeTokens(ctx context.Context, tokens []string) ([]string, error)
	NormalizeSpans(ctx context.Context, spans []SpanInput) (*NormalizeResult, error)
}

// FlatTag is a tag reduced to its type path and value.
type FlatTag struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// AnnotateInput pairs a raw document with its annotated rendering.  The
// annotated text must equal the raw text with its leading whitespace removed
// and tags inserted.
type AnnotateInput struct {
	RawText       string
	AnnotatedText string
}

// AnnotateResult holds the annotations of one document.  Annotation offsets
// and LeadingWhitespace are UTF-8 byte offsets into the raw text.
type AnnotateResult struct {
	Annotations       []annotation.Annotation `json:"annotations"`
	FlattenedText     string                  `json:"flattened_text"`
	LeadingWhitespace int                     `json:"leading_whitespace"`
}

// SpanInput describes one tokenized span.  A span is a literal when Label is
// empty and Text is not a tag; a Text holding a single, possibly nested, tag
// is converted with its flattened type path as label.
type SpanInput struct {
	Text  string `json:"text"`
	Label string `json:"label,omitempty"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// SpanOutput is one normalized span.
type SpanOutput struct {
	Text     string `json:"text"`
	Label    string `json:"label,omitempty"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Rendered string `json:"rendered"`
}

// NormalizeResult is the normalized span sequence and its rendering.
type NormalizeResult struct {
	Spans []SpanOutput `json:"spans"`
	Text  string       `json:"text"`
}

// serviceImpl implements Service.
type serviceImpl struct {
	phrases *trie.Trie
	metrics *prometheus.MarkupMetrics
	logger  logging.Logger
}

// NewService creates the markup service.  phrases drives MergeTokens and may
// be nil; nil metrics record nothing.
func NewService(phrases *trie.Trie, metrics *prometheus.MarkupMetrics, logger logging.Logger) Service {
	if metrics == nil {
		metrics = prometheus.NewNoopMarkupMetrics()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &serviceImpl{
		phrases: phrases,
		metrics: metrics,
		logger:  logger.Named("markup"),
	}
}

// run checks ctx, times fn and records its outcome.
func (s *serviceImpl) run(ctx context.Context, op, input string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		s.logger.Warn("operation skipped, context done", logging.String("op", op), logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeTimeout, "request cancelled before "+op)
	}

	if input != "" {
		s.metrics.RecordInput(op, input)
	}
	timer := s.metrics.StartOperation(op)
	err := fn()
	elapsed := timer.ObserveDuration()
	s.metrics.RecordOperation(op, err)

	if err != nil {
		s.logger.Warn("operation failed",
			logging.String("op", op),
			logging.String("code", errors.GetCode(err).String()),
			logging.String("error", errors.MessageOf(err)),
		)
		return err
	}
	s.logger.Debug("operation completed", logging.String("op", op), logging.Duration("elapsed", elapsed))
	return nil
}

func (s *serviceImpl) FindTags(ctx context.Context, text string) ([]string, error) {
	var tags []string
	err := s.run(ctx, OpFindTags, text, func() (err error) {
		tags, err = tag.FindTags(text)
		s.metrics.RecordTags(OpFindTags, len(tags))
		return err
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *serviceImpl) SplitTags(ctx context.Context, text string) ([]string, error) {
	var segments []string
	err := s.run(ctx, OpSplitTags, text, func() (err error) {
		segments, err = tag.SplitTags(text)
		return err
	})
	if err != nil {
		return nil, err
	}
	return segments, nil
}

func (s *serviceImpl) FlattenTag(ctx context.Context, t string) (*FlatTag, error) {
	var out FlatTag
	err := s.run(ctx, OpFlattenTag, t, func() (err error) {
		out.Type, out.Value, err = tag.Flatten(t)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *serviceImpl) FlattenText(ctx context.Context, text string) (string, error) {
	var out string
	err := s.run(ctx, OpFlattenText, text, func() (err error) {
		out, err = tag.FlattenTextAllPHI(text)
		return err
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// Annotate flattens the annotated text, finds its tags and anchors them to
// the raw text, skipping the raw text's leading whitespace.
func (s *serviceImpl) Annotate(ctx context.Context, input *AnnotateInput) (*AnnotateResult, error) {
	if input == nil {
		return nil, errors.InvalidParam("annotate input is required")
	}

	var result AnnotateResult
	err := s.run(ctx, OpAnnotate, input.AnnotatedText, func() error {
		leading, err := annotation.FirstNonWhitespace(input.RawText)
		if err != nil {
			return err
		}
		flat, err := tag.FlattenTextAllPHI(input.AnnotatedText)
		if err != nil {
			return err
		}
		tags, err := tag.FindTags(flat)
		if err != nil {
			return err
		}
		s.metrics.RecordTags(OpAnnotate, len(tags))

		anns, err := annotation.GetAnnotations(flat, tags, leading)
		if err != nil {
			return err
		}
		s.checkAgainstRaw(input.RawText, anns)

		result = AnnotateResult{
			Annotations:       anns,
			FlattenedText:     flat,
			LeadingWhitespace: leading,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// checkAgainstRaw warns about annotations whose range does not hold their
// text in raw, which happens when the annotated text was not derived from
// raw.
func (s *serviceImpl) checkAgainstRaw(raw string, anns []annotation.Annotation) {
	for _, a := range anns {
		if a.End > len(raw) || raw[a.Start:a.End] != a.Text {
			s.logger.Warn("annotation does not match raw text",
				logging.String("annotation", a.String()),
				logging.Int("raw_len", len(raw)),
			)
		}
	}
}

func (s *serviceImpl) MergeTokens(ctx context.Context, tokens []string) ([]string, error) {
	var out []string
	err := s.run(ctx, OpMergeTokens, "", func() error {
		out = trie.Merge(tokens, s.phrases)
		s.metrics.RecordMerge(len(tokens), len(out))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// NormalizeSpans flattens and merges person-name annotations.
func (s *serviceImpl) NormalizeSpans(ctx context.Context, spans []SpanInput) (*NormalizeResult, error) {
	var result NormalizeResult
	err := s.run(ctx, OpNormalizeSpans, "", func() error {
		in, err := toSpans(spans)
		if err != nil {
			return err
		}
		out := span.Normalize(in)
		result = NormalizeResult{
			Spans: fromSpans(out),
			Text:  span.ToText(out),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func toSpans(in []SpanInput) ([]span.Span, error) {
	out := make([]span.Span, 0, len(in))
	for _, s := range in {
		switch {
		case s.Label != "":
			out = append(out, span.Annotated{Value: s.Text, Label: s.Label, Start: s.Start, End: s.End})
		case tag.IsTag(s.Text):
			a, err := span.FromTag(s.Text, s.Start, s.End)
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		default:
			out = append(out, span.Literal{Value: s.Text, Start: s.Start, End: s.End})
		}
	}
	return out, nil
}

func fromSpans(in []span.Span) []SpanOutput {
	out := make([]SpanOutput, 0, len(in))
	for _, s := range in {
		start, end := s.Bounds()
		out = append(out, SpanOutput{
			Text:     s.WithoutAnnotation().Text(),
			Label:    s.Descriptor(),
			Start:    start,
			End:      end,
			Rendered: s.Text(),
		})
	}
	return out
}
