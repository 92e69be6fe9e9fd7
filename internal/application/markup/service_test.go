package markup

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/phimark/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/phimark/internal/markup/annotation"
	"github.com/turtacn/phimark/internal/markup/trie"
	"github.com/turtacn/phimark/internal/testutil"
	"github.com/turtacn/phimark/pkg/errors"
)

func newTestService(t *testing.T) (Service, *testutil.MockLogger) {
	t.Helper()
	logger := testutil.NewMockLogger()
	phrases := trie.New([]string{"A", "1"}, []string{"A", "2"})
	return NewService(phrases, nil, logger), logger
}

func TestFindTags(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		tags, err := svc.FindTags(ctx, "Dhr. <PERSOON Jan <ACHTERNAAM Jansen>> en <PERSOON Piet>")
		require.NoError(t, err)
		assert.Equal(t, []string{"<PERSOON Jan <ACHTERNAAM Jansen>>", "<PERSOON Piet>"}, tags)
	})

	t.Run("no tags", func(t *testing.T) {
		tags, err := svc.FindTags(ctx, "geen tags")
		require.NoError(t, err)
		assert.Empty(t, tags)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := svc.FindTags(ctx, "<PERSOON Jan")
		require.Error(t, err)
		assert.True(t, errors.IsMalformedMarkup(err))
	})
}

func TestSplitTags(t *testing.T) {
	svc, _ := newTestService(t)

	segments, err := svc.SplitTags(context.Background(), "This is a <NAME name> in it")
	require.NoError(t, err)
	assert.Equal(t, []string{"This is a ", "<NAME name>", " in it"}, segments)
}

func TestFlattenTag(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	flat, err := svc.FlattenTag(ctx, "<INITIAL A <NAME Surname>>")
	require.NoError(t, err)
	assert.Equal(t, &FlatTag{Type: "INITIALNAME", Value: "A Surname"}, flat)

	flat, err = svc.FlattenTag(ctx, "plain")
	require.NoError(t, err)
	assert.Equal(t, &FlatTag{Type: "", Value: "plain"}, flat)

	_, err = svc.FlattenTag(ctx, "<NAME>")
	assert.True(t, errors.IsMalformedTag(err))
}

func TestFlattenText(t *testing.T) {
	svc, _ := newTestService(t)

	out, err := svc.FlattenText(context.Background(), "Patient <PERSOON Jan <ACHTERNAAM Jansen>> is opgenomen")
	require.NoError(t, err)
	assert.Equal(t, "Patient <PERSOON Jan Jansen> is opgenomen", out)
}

func TestAnnotate(t *testing.T) {
	svc, logger := newTestService(t)
	ctx := context.Background()

	t.Run("nested and leading whitespace", func(t *testing.T) {
		raw := "  Patient Jan Jansen belde Piet."
		res, err := svc.Annotate(ctx, &AnnotateInput{
			RawText:       raw,
			AnnotatedText: "Patient <PATIENT Jan <ACHTERNAAM Jansen>> belde <PERSOON Piet>.",
		})
		require.NoError(t, err)

		assert.Equal(t, 2, res.LeadingWhitespace)
		assert.Equal(t, "Patient <PATIENT Jan Jansen> belde <PERSOON Piet>.", res.FlattenedText)
		assert.ElementsMatch(t, []annotation.Annotation{
			{Start: 10, End: 20, Tag: "PATIENT", Text: "Jan Jansen"},
			{Start: 27, End: 31, Tag: "PERSOON", Text: "Piet"},
		}, res.Annotations)
		for _, a := range res.Annotations {
			assert.Equal(t, a.Text, raw[a.Start:a.End])
		}
		assert.False(t, logger.HasMessage("warn", "annotation does not match raw text"))
	})

	t.Run("whitespace only raw text", func(t *testing.T) {
		_, err := svc.Annotate(ctx, &AnnotateInput{RawText: " \n ", AnnotatedText: ""})
		require.Error(t, err)
		assert.True(t, errors.IsEmptyOrWhitespaceOnly(err))
	})

	t.Run("mismatched raw text is logged", func(t *testing.T) {
		logger.Clear()
		res, err := svc.Annotate(ctx, &AnnotateInput{RawText: "Hij heet Kees", AnnotatedText: "<PERSOON Jan>"})
		require.NoError(t, err)
		require.Len(t, res.Annotations, 1)
		assert.True(t, logger.HasMessage("warn", "annotation does not match raw text"))
	})

	t.Run("nil input", func(t *testing.T) {
		_, err := svc.Annotate(ctx, nil)
		require.Error(t, err)
		assert.Equal(t, errors.CodeInvalidParam, errors.GetCode(err))
	})
}

func TestMergeTokens(t *testing.T) {
	svc, _ := newTestService(t)

	out, err := svc.MergeTokens(context.Background(), []string{"Patient", "is", "opgenomen", "op", "A", "1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Patient", "is", "opgenomen", "op", "A1"}, out)

	out, err = NewService(nil, nil, nil).MergeTokens(context.Background(), []string{"A", "1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "1"}, out)
}

func TestNormalizeSpans(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.NormalizeSpans(context.Background(), []SpanInput{
		{Text: "Dhr. ", Start: 0, End: 5},
		{Text: "A", Label: "INITIAL", Start: 5, End: 6},
		{Text: ". ", Start: 6, End: 8},
		{Text: "<ACHTERNAAM <PAT Jansen>>", Start: 8, End: 14},
		{Text: " belde", Start: 14, End: 20},
	})
	require.NoError(t, err)

	assert.Equal(t, "Dhr. <PATIENT A. Jansen> belde", res.Text)
	require.Len(t, res.Spans, 3)
	assert.Equal(t, SpanOutput{
		Text:     "A. Jansen",
		Label:    "PATIENT",
		Start:    5,
		End:      14,
		Rendered: "<PATIENT A. Jansen>",
	}, res.Spans[1])
	assert.Equal(t, SpanOutput{Text: " belde", Start: 14, End: 20, Rendered: " belde"}, res.Spans[2])
}

func TestNormalizeSpans_MalformedTag(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.NormalizeSpans(context.Background(), []SpanInput{{Text: "<PERSOON>"}})
	require.Error(t, err)
	assert.True(t, errors.IsMalformedTag(err))
}

func TestService_CancelledContext(t *testing.T) {
	svc, logger := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.FindTags(ctx, "<A x>")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeTimeout, errors.GetCode(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, logger.HasMessage("warn", "operation skipped, context done"))

	_, err = svc.MergeTokens(ctx, []string{"A"})
	assert.Error(t, err)
}

func TestService_LogsFailures(t *testing.T) {
	svc, logger := newTestService(t)

	_, err := svc.FlattenText(context.Background(), "a > b")
	require.Error(t, err)

	entry, ok := logger.Find("warn", "operation failed")
	require.True(t, ok)
	code, _ := entry.Field("code")
	assert.Equal(t, "MARKUP_001", code)
	op, _ := entry.Field("op")
	assert.Equal(t, OpFlattenText, op)
	assert.Equal(t, "markup", entry.Logger)
}

func TestService_FailureLogOmitsInputText(t *testing.T) {
	svc, logger := newTestService(t)

	_, err := svc.FlattenTag(context.Background(), "<PERSOON Jan><PERSOON Piet>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Piet")

	entry, ok := logger.Find("warn", "operation failed")
	require.True(t, ok)
	for _, f := range entry.Fields {
		assert.NotContains(t, fmt.Sprint(f.Value), "Piet", "field %s", f.Key)
	}
}

func TestNewService_NilLoggerUsesDefault(t *testing.T) {
	orig := logging.Default()
	defer logging.SetDefault(orig)

	logger := testutil.NewMockLogger()
	logging.SetDefault(logger)

	svc := NewService(nil, nil, nil)
	_, err := svc.FindTags(context.Background(), "<A x")
	require.Error(t, err)
	assert.True(t, logger.HasMessage("warn", "operation failed"))
}
