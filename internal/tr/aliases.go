package tr

import "strings"

// CallKind classifies a recognized translation call or annotation.
type CallKind int

const (
	// KindNone marks a name that is not a translation call at all.
	KindNone CallKind = iota
	// KindPlain is a single-argument text lookup whose context is ambient (tr).
	KindPlain
	// KindContext carries an explicit context plus the text (translate, QT_TRANSLATE_NOOP).
	KindContext
	// KindID looks a translation up by identifier instead of text (qtTrId).
	KindID
	// KindDeclareContext declares the context for an entire enclosing scope.
	KindDeclareContext
	// KindAnnotation is a free-form translator annotation comment (TRANSLATOR).
	KindAnnotation
)

func (k CallKind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindContext:
		return "context"
	case KindID:
		return "id"
	case KindDeclareContext:
		return "declare-context"
	case KindAnnotation:
		return "annotation"
	default:
		return "none"
	}
}

// Function describes one canonical translation function.
type Function struct {
	Kind   CallKind
	Plural bool
}

// Resolver maps invoked names to canonical translation functions.
// The table is fixed at construction; lookup has no side effects.
type Resolver struct {
	table map[string]Function
}

// defaultTable lists the builtin Qt translation function family.
func defaultTable() map[string]Function {
	return map[string]Function{
		"tr":                       {Kind: KindPlain},
		"trUtf8":                   {Kind: KindPlain},
		"translate":                {Kind: KindContext},
		"QT_TRANSLATE_NOOP":        {Kind: KindContext},
		"QT_TRANSLATE_NOOP_UTF8":   {Kind: KindContext},
		"QT_TRANSLATE_NOOP3":       {Kind: KindContext},
		"QT_TRANSLATE_NOOP3_UTF8":  {Kind: KindContext},
		"QT_TRANSLATE_N_NOOP":      {Kind: KindContext, Plural: true},
		"QT_TRANSLATE_N_NOOP3":     {Kind: KindContext, Plural: true},
		"qtTrId":                   {Kind: KindID},
		"QT_TRID_NOOP":             {Kind: KindID},
		"QT_TRID_N_NOOP":           {Kind: KindID, Plural: true},
		"Q_DECLARE_TR_FUNCTIONS":   {Kind: KindDeclareContext},
		"TRANSLATOR":               {Kind: KindAnnotation},
	}
}

// NewResolver builds a resolver from the builtin table plus any extra
// aliases. Extra entries override builtin ones of the same name.
func NewResolver(extra map[string]Function) *Resolver {
	table := defaultTable()
	for name, fn := range extra {
		table[name] = fn
	}
	return &Resolver{table: table}
}

// Resolve returns the canonical function for an invoked name.
// Qualified callees (QObject::tr, obj->tr) resolve by their last segment.
func (r *Resolver) Resolve(name string) Function {
	if idx := strings.LastIndex(name, "::"); idx >= 0 {
		name = name[idx+2:]
	}
	fn, ok := r.table[name]
	if !ok {
		return Function{Kind: KindNone}
	}
	return fn
}

// Names returns every recognized name. Used by the pre-parse gate and
// the preprocessor scanner.
func (r *Resolver) Names() []string {
	names := make([]string, 0, len(r.table))
	for name := range r.table {
		names = append(names, name)
	}
	return names
}
