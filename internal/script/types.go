// Package script parses the .clip timeline DSL into a flat stream of
// typed elements. Parsing never interprets time or runs commands; it
// only tokenizes — the engine walks the resulting stream against a
// wall clock.
//
// One loud documentation note, since it surprises every script author
// exactly once: raw whitespace outside brackets is dropped
// unconditionally, including leading whitespace on a text run. Spaces
// only ever come from an explicit [space] or [space N] command. This
// is what lets a .clip file be indented freely without polluting the
// rendered text.
package script

// Element is one parsed item: a Timestamp or a Command. Both families
// implement this marker so the engine can walk a single ordered slice.
type Element interface {
	element()
}

// Timestamp is the family of time tokens a line can open with.
// Continuation is the sentinel meaning "reuse the last event's offset".
type Timestamp interface {
	Element
	timestamp()
}

type (
	// AbsoluteMs is an absolute offset in milliseconds from scope start.
	AbsoluteMs struct{ MS float64 }

	// AbsoluteBeat is an absolute offset expressed in beats.
	AbsoluteBeat struct{ Beat float64 }

	// AbsoluteBeatPlusMs is a beat offset plus a millisecond nudge.
	AbsoluteBeatPlusMs struct {
		Beat float64
		MS   float64
	}

	// AbsoluteBeatPlusFraction is a beat offset plus Num/Den of one beat.
	AbsoluteBeatPlusFraction struct {
		Beat     float64
		Num, Den float64
	}

	// RelativeMs advances the last offset by a millisecond delta.
	RelativeMs struct{ MS float64 }

	// RelativeBeat advances the last offset by a beat delta.
	RelativeBeat struct{ Beat float64 }

	// RelativeFractionBeat advances the last offset by Num/Den of a beat.
	RelativeFractionBeat struct{ Num, Den float64 }

	// Continuation reuses the previous event's computed offset.
	Continuation struct{}
)

func (AbsoluteMs) element()               {}
func (AbsoluteBeat) element()             {}
func (AbsoluteBeatPlusMs) element()       {}
func (AbsoluteBeatPlusFraction) element() {}
func (RelativeMs) element()               {}
func (RelativeBeat) element()             {}
func (RelativeFractionBeat) element()     {}
func (Continuation) element()             {}

func (AbsoluteMs) timestamp()               {}
func (AbsoluteBeat) timestamp()             {}
func (AbsoluteBeatPlusMs) timestamp()       {}
func (AbsoluteBeatPlusFraction) timestamp() {}
func (RelativeMs) timestamp()               {}
func (RelativeBeat) timestamp()             {}
func (RelativeFractionBeat) timestamp()     {}
func (Continuation) timestamp()             {}

// Command is the family of non-timestamp script elements.
type (
	SetBpm struct{ BPM float64 }

	NewLine struct{}

	ClearScreen struct{}

	ClearScreenNoReset struct{}

	MoveAbsolute struct{ Row, Col int }

	MoveRelative struct{ DRow, DCol int }

	SetColor struct{ R, G, B uint8 }

	ClearColor struct{}

	SetBackground struct{ R, G, B, A uint8 }

	ClearBackground struct{}

	SetStyle struct {
		Bold, Italic, Underline, Strikethrough bool
	}

	ClearStyle struct{}

	PrintSpace struct{ Count int }

	PrintText struct{ Text string }

	// DefineAlias binds Name to unparsed raw content, re-parsed on
	// every call so textual substitution semantics are preserved.
	DefineAlias struct {
		Name string
		Raw  string
	}

	// DefineFunction binds Name to a parameter list and raw,
	// unparsed body lines. Bodies are stored raw so [param]
	// placeholders can be substituted textually before re-parse.
	DefineFunction struct {
		Name          string
		Params        []string
		Body          []string
		AllowOverride bool
	}

	CallFunction struct {
		Name string
		Args []string
	}

	CallCoroutine struct {
		Name string
		Args []string
	}
)

func (SetBpm) element()             {}
func (NewLine) element()            {}
func (ClearScreen) element()        {}
func (ClearScreenNoReset) element() {}
func (MoveAbsolute) element()       {}
func (MoveRelative) element()       {}
func (SetColor) element()           {}
func (ClearColor) element()         {}
func (SetBackground) element()      {}
func (ClearBackground) element()    {}
func (SetStyle) element()           {}
func (ClearStyle) element()         {}
func (PrintSpace) element()         {}
func (PrintText) element()          {}
func (DefineAlias) element()        {}
func (DefineFunction) element()     {}
func (CallFunction) element()       {}
func (CallCoroutine) element()      {}

// reservedNames may not be used as an alias or function name.
var reservedNames = map[string]bool{
	"bpm": true, "newline": true, "mv": true, "color": true,
	"clearcolor": true, "background": true, "clearbackground": true,
	"style": true, "clearstyle": true, "clear": true, "clearn": true,
	"space": true, "override": true,
}
