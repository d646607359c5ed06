package correct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trscan/internal/record"
	"trscan/internal/tr"
)

func candidate(kind tr.CallKind, fn string) record.Candidate {
	c := record.NewCandidate(kind, fn)
	c.File = "main.cpp"
	c.Line = 1
	c.Column = 1
	return c
}

func declared(scope, context string) record.Candidate {
	c := candidate(tr.KindDeclareContext, "Q_DECLARE_TR_FUNCTIONS")
	c.EnclosingScope = scope
	c.ContextArg = context
	return c
}

func TestDeclaredContextApplied(t *testing.T) {
	store := record.NewStore()
	require.NoError(t, store.Append(record.PartitionDeclaredContext, declared("App::Dialog", "DialogMessages")))

	call := candidate(tr.KindPlain, "tr")
	call.SourceText = "Hello"
	call.EnclosingScope = "App::Dialog"
	require.NoError(t, store.Append(record.PartitionAST, call))

	require.NoError(t, Run(store))

	corrected := store.Snapshot(record.PartitionCorrected)
	require.Len(t, corrected, 1)
	assert.Equal(t, "DialogMessages", corrected[0].ContextResolved)
	assert.True(t, corrected[0].Valid())
}

func TestExplicitContextWinsOverDeclaration(t *testing.T) {
	store := record.NewStore()
	require.NoError(t, store.Append(record.PartitionDeclaredContext, declared("App", "Declared")))

	call := candidate(tr.KindContext, "QCoreApplication::translate")
	call.SourceText = "Hello"
	call.ContextArg = "Explicit"
	call.EnclosingScope = "App"
	require.NoError(t, store.Append(record.PartitionAST, call))

	require.NoError(t, Run(store))

	corrected := store.Snapshot(record.PartitionCorrected)
	require.Len(t, corrected, 1)
	assert.Equal(t, "Explicit", corrected[0].ContextResolved)
}

func TestUnmappedScopeStaysUnresolved(t *testing.T) {
	store := record.NewStore()

	call := candidate(tr.KindPlain, "tr")
	call.SourceText = "Hello"
	call.EnclosingScope = "Other::Class"
	require.NoError(t, store.Append(record.PartitionAST, call))

	require.NoError(t, Run(store))

	corrected := store.Snapshot(record.PartitionCorrected)
	require.Len(t, corrected, 1)
	assert.Empty(t, corrected[0].ContextResolved)
}

func TestIDCallsResolveToTheirID(t *testing.T) {
	store := record.NewStore()

	call := candidate(tr.KindID, "qtTrId")
	call.ID = "menu_file_open"
	require.NoError(t, store.Append(record.PartitionPreprocessor, call))

	require.NoError(t, Run(store))

	corrected := store.Snapshot(record.PartitionCorrected)
	require.Len(t, corrected, 1)
	assert.Equal(t, "menu_file_open", corrected[0].ContextResolved)
}

func TestOriginalsAreNotMutated(t *testing.T) {
	store := record.NewStore()
	require.NoError(t, store.Append(record.PartitionDeclaredContext, declared("App", "Ctx")))

	call := candidate(tr.KindPlain, "tr")
	call.SourceText = "Hello"
	call.EnclosingScope = "App"
	require.NoError(t, store.Append(record.PartitionAST, call))

	require.NoError(t, Run(store))

	originals := store.Snapshot(record.PartitionAST)
	require.Len(t, originals, 1)
	assert.Empty(t, originals[0].ContextResolved)
}

func TestConflictingDeclarationsKeepFirst(t *testing.T) {
	mapping := declaredMapping([]record.Candidate{
		declared("App", "First"),
		declared("App", "Second"),
		declared("Other", "Third"),
	})
	assert.Equal(t, "First", mapping["App"])
	assert.Equal(t, "Third", mapping["Other"])
}

func TestProducerPartitionsAllFeedCorrected(t *testing.T) {
	store := record.NewStore()

	ast := candidate(tr.KindContext, "QT_TRANSLATE_NOOP")
	ast.ContextArg = "Ctx"
	ast.SourceText = "from ast"
	require.NoError(t, store.Append(record.PartitionAST, ast))

	pre := candidate(tr.KindContext, "QT_TRANSLATE_NOOP")
	pre.ContextArg = "Ctx"
	pre.SourceText = "from preprocessor"
	require.NoError(t, store.Append(record.PartitionPreprocessor, pre))

	ann := candidate(tr.KindAnnotation, "TRANSLATOR")
	ann.ContextArg = "Ctx"
	ann.Comment = "file-wide note"
	require.NoError(t, store.Append(record.PartitionAnnotationContext, ann))

	require.NoError(t, Run(store))
	assert.Equal(t, 3, store.Len(record.PartitionCorrected))
}
