package frontend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trscan/internal/record"
	"trscan/internal/tr"
)

func parseSource(t *testing.T, source string) *Unit {
	t.Helper()
	u, err := ParseUnit("main.cpp", []byte(source))
	require.NoError(t, err)
	t.Cleanup(u.Close)
	return u
}

func walkTree(t *testing.T, source string) *record.Store {
	t.Helper()
	store := record.NewStore()
	w := NewTreeWalker(tr.NewResolver(nil), store, DefaultAnnotationPolicy())
	require.NoError(t, w.Walk(parseSource(t, source)))
	return store
}

func walkPreprocessor(t *testing.T, source string) *record.Store {
	t.Helper()
	store := record.NewStore()
	w := NewPreprocessorWalker(tr.NewResolver(nil), store)
	require.NoError(t, w.Walk(parseSource(t, source)))
	return store
}

func TestPlainCallInOutOfClassMethod(t *testing.T) {
	store := walkTree(t, `
void App::greet() {
    setWindowTitle(tr("Hello, world"));
}
`)
	records := store.Snapshot(record.PartitionAST)
	require.Len(t, records, 1)

	c := records[0]
	assert.Equal(t, tr.KindPlain, c.Kind)
	assert.Equal(t, "Hello, world", c.SourceText)
	assert.Equal(t, "App", c.EnclosingScope)
	assert.Equal(t, "main.cpp", c.File)
	assert.Equal(t, 3, c.Line)
	assert.Empty(t, c.ContextResolved)
}

func TestPlainCallInClassBody(t *testing.T) {
	store := walkTree(t, `
namespace ui {
class Dialog {
    void open() { show(tr("Open")); }
};
}
`)
	records := store.Snapshot(record.PartitionAST)
	require.Len(t, records, 1)
	assert.Equal(t, "ui::Dialog", records[0].EnclosingScope)
}

func TestPlainCallWithCommentAndPlural(t *testing.T) {
	store := walkTree(t, `
void App::update(int n) {
    setText(tr("%n item(s)", "status bar count", n));
}
`)
	records := store.Snapshot(record.PartitionAST)
	require.Len(t, records, 1)

	c := records[0]
	assert.Equal(t, "%n item(s)", c.SourceText)
	assert.Equal(t, "status bar count", c.Comment)
	assert.Equal(t, "n", c.PluralText)
}

func TestExplicitContextCall(t *testing.T) {
	store := walkTree(t, `
void report() {
    log(QCoreApplication::translate("Reports", "Generation failed"));
}
`)
	records := store.Snapshot(record.PartitionAST)
	require.Len(t, records, 1)

	c := records[0]
	assert.Equal(t, tr.KindContext, c.Kind)
	assert.Equal(t, "Reports", c.ContextArg)
	assert.Equal(t, "Generation failed", c.SourceText)
}

func TestStructuredCommentsAttachToCall(t *testing.T) {
	store := walkTree(t, `
void App::setup() {
    //: Appears in the File menu.
    //: Second sentence.
    //= menu_open
    //~ screen main
    //% "meta"
    setText(tr("Open"));
}
`)
	records := store.Snapshot(record.PartitionAST)
	require.Len(t, records, 1)

	c := records[0]
	assert.Equal(t, "Appears in the File menu. Second sentence.", c.ExtraComment)
	assert.Equal(t, "menu_open", c.ID)
	assert.Equal(t, map[string]string{"screen": "main"}, c.Metadata)
	assert.Equal(t, "meta", c.IDMetadata)
}

func TestTrailingCommentOnCallLineAttaches(t *testing.T) {
	store := walkTree(t, `
void App::setup() {
    setText(tr("Open")); //: Appears in the File menu.
}
`)
	records := store.Snapshot(record.PartitionAST)
	require.Len(t, records, 1)
	assert.Equal(t, "Appears in the File menu.", records[0].ExtraComment)
}

func TestCommentRunMustBeContiguous(t *testing.T) {
	store := walkTree(t, `
void App::setup() {
    //: Orphaned by the blank line.

    setText(tr("Open"));
}
`)
	records := store.Snapshot(record.PartitionAST)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].ExtraComment)
}

func TestUnresolvableCallsAreNotRecorded(t *testing.T) {
	store := walkTree(t, `
void App::run() {
    printf("not translatable");
    process(trim("also not"));
}
`)
	assert.Equal(t, 0, store.Len(record.PartitionAST))
}

func TestCallWithoutSourceTextIsSkipped(t *testing.T) {
	store := walkTree(t, `
void App::run() {
    tr(dynamicText());
}
`)
	// A non-literal argument cleans to empty and fails validation.
	assert.Equal(t, 0, store.Len(record.PartitionAST))
}

func TestDeclarativeContextMacro(t *testing.T) {
	store := walkTree(t, `
class Installer {
    Q_DECLARE_TR_FUNCTIONS(InstallWizard)
public:
    void run();
};
`)
	declared := store.Snapshot(record.PartitionDeclaredContext)
	require.Len(t, declared, 1)

	c := declared[0]
	assert.Equal(t, tr.KindDeclareContext, c.Kind)
	assert.Equal(t, "InstallWizard", c.ContextArg)
	assert.Equal(t, "Installer", c.EnclosingScope)
}

func TestCommentedDeclarativeMacroIgnored(t *testing.T) {
	store := walkTree(t, `
class Installer {
    // Q_DECLARE_TR_FUNCTIONS(InstallWizard)
public:
    void run();
};
`)
	assert.Equal(t, 0, store.Len(record.PartitionDeclaredContext))
}

func TestDeclarativeMacroInStringIgnored(t *testing.T) {
	store := walkTree(t, `
const char *doc = "use Q_DECLARE_TR_FUNCTIONS(Ctx) in the class body";
`)
	assert.Equal(t, 0, store.Len(record.PartitionDeclaredContext))
}

func TestIDCall(t *testing.T) {
	store := walkTree(t, `
void App::open() {
    show(qtTrId("menu_file_open"));
}
`)
	records := store.Snapshot(record.PartitionAST)
	require.Len(t, records, 1)
	assert.Equal(t, tr.KindID, records[0].Kind)
	assert.Equal(t, "menu_file_open", records[0].ID)
}

func TestPreprocessorSeesFileScopeMacro(t *testing.T) {
	store := walkPreprocessor(t, `
static const char *greeting = QT_TRANSLATE_NOOP("Greetings", "Hello");
`)
	records := store.Snapshot(record.PartitionPreprocessor)
	require.Len(t, records, 1)

	c := records[0]
	assert.Equal(t, tr.KindContext, c.Kind)
	assert.Equal(t, "Greetings", c.ContextArg)
	assert.Equal(t, "Hello", c.SourceText)
	assert.Equal(t, 2, c.Line)
}

func TestPreprocessorHandlesMultiLineArguments(t *testing.T) {
	store := walkPreprocessor(t, `
static const char *m = QT_TRANSLATE_NOOP("Ctx",
    "spans lines");
`)
	records := store.Snapshot(record.PartitionPreprocessor)
	require.Len(t, records, 1)
	assert.Equal(t, "spans lines", records[0].SourceText)
}

func TestPreprocessorIgnoresMacroInComment(t *testing.T) {
	store := walkPreprocessor(t, `
// QT_TRID_NOOP("not_a_call")
int x;
`)
	assert.Equal(t, 0, store.Len(record.PartitionPreprocessor))
}

func TestPreprocessorIgnoresMacroInBlockComment(t *testing.T) {
	store := walkPreprocessor(t, `
/* QT_TRID_NOOP("dead_id") */
int x;
`)
	assert.Equal(t, 0, store.Len(record.PartitionPreprocessor))
}

func TestPreprocessorIgnoresMacroInMultiLineBlockComment(t *testing.T) {
	store := walkPreprocessor(t, `
/*
QT_TRID_NOOP("dead_id")
*/
static const char *s = QT_TRID_NOOP("live_id");
`)
	records := store.Snapshot(record.PartitionPreprocessor)
	require.Len(t, records, 1)
	assert.Equal(t, "live_id", records[0].ID)
}

func TestPreprocessorIgnoresMacroInStringLiteral(t *testing.T) {
	store := walkPreprocessor(t, `
const char *doc = "call QT_TRID_NOOP(\"x\") to mark ids";
`)
	assert.Equal(t, 0, store.Len(record.PartitionPreprocessor))
}

func TestTranslatorMarkerInsideStringIgnored(t *testing.T) {
	store := walkPreprocessor(t, `
const char *s = "// TRANSLATOR Fake not an annotation";
`)
	assert.Equal(t, 0, store.Len(record.PartitionAnnotationContext))
}

func TestPreprocessorPluralMacro(t *testing.T) {
	store := walkPreprocessor(t, `
static const char *c = QT_TRID_N_NOOP("qtn_files");
`)
	records := store.Snapshot(record.PartitionPreprocessor)
	require.Len(t, records, 1)
	assert.Equal(t, "qtn_files", records[0].ID)
	assert.Equal(t, "qtn_files", records[0].PluralText)
}

func TestTranslatorAnnotation(t *testing.T) {
	store := walkPreprocessor(t, `
// TRANSLATOR MainWindow Strings on the main window.
void f() {}
`)
	records := store.Snapshot(record.PartitionAnnotationContext)
	require.Len(t, records, 1)

	c := records[0]
	assert.Equal(t, tr.KindAnnotation, c.Kind)
	assert.Equal(t, "MainWindow", c.ContextArg)
	assert.Equal(t, "Strings on the main window.", c.Comment)
}

func TestBothWalkersCollideOnSameCallSite(t *testing.T) {
	source := `
static const char *s = QT_TRANSLATE_NOOP("Ctx", "shared");
`
	store := record.NewStore()
	u := parseSource(t, source)
	resolver := tr.NewResolver(nil)
	require.NoError(t, NewTreeWalker(resolver, store, DefaultAnnotationPolicy()).Walk(u))
	require.NoError(t, NewPreprocessorWalker(resolver, store).Walk(u))

	ast := store.Snapshot(record.PartitionAST)
	pre := store.Snapshot(record.PartitionPreprocessor)
	require.Len(t, ast, 1)
	require.Len(t, pre, 1)

	// Same call site from both producers: the duplicate keys must collide
	// once both carry the same resolved context.
	a, p := ast[0], pre[0]
	a.ContextResolved = a.ContextArg
	p.ContextResolved = p.ContextArg
	assert.Equal(t, a.DuplicateKey(), p.DuplicateKey())
}

func TestResolveLocation(t *testing.T) {
	u := parseSource(t, "int a;\nint b;\n")

	loc, err := u.ResolveLocation("main.cpp", 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 11, loc.Offset)

	_, err = u.ResolveLocation("other.cpp", 1, 1)
	assert.Error(t, err)

	_, err = u.ResolveLocation("main.cpp", 99, 1)
	assert.Error(t, err)
}

func TestFileLocationsResolveAndCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.cpp")
	require.NoError(t, os.WriteFile(path, []byte("int a;\nint b;\n"), 0o644))

	res := NewFileLocations()
	loc, err := res.ResolveLocation(path, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 11, loc.Offset)

	// A second resolution works off the cached offsets even if the file
	// disappears in between.
	require.NoError(t, os.Remove(path))
	loc, err = res.ResolveLocation(path, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, loc.Offset)

	_, err = res.ResolveLocation(path, 99, 1)
	assert.Error(t, err)

	_, err = res.ResolveLocation(filepath.Join(dir, "absent.cpp"), 1, 1)
	assert.Error(t, err)
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"simple", `"a", "b"`, []string{`"a"`, `"b"`}},
		{"comma inside string", `"a, b", n`, []string{`"a, b"`, "n"}},
		{"nested call", `f(x, y), "b"`, []string{"f(x, y)", `"b"`}},
		{"escaped quote", `"a\", b", c`, []string{`"a\", b"`, "c"}},
		{"empty", ``, nil},
		{"single", `"only"`, []string{`"only"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitArgs(tt.in))
		})
	}
}

func TestBalancedSpan(t *testing.T) {
	content := []byte(`M("a (nested)", ")\" tricky")`)
	inside, closeIdx, ok := balancedSpan(content, 1)
	require.True(t, ok)
	assert.Equal(t, `"a (nested)", ")\" tricky"`, inside)
	assert.Equal(t, len(content)-1, closeIdx)

	_, _, ok = balancedSpan([]byte("M(unclosed"), 1)
	assert.False(t, ok)
}
