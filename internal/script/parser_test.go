package script

import (
	"reflect"
	"testing"
)

func TestParseLineContentTimestamps(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  Element
	}{
		{"clock", "[1:30.5]", AbsoluteMs{MS: 90500}},
		{"absolute beat", "[4b]", AbsoluteBeat{Beat: 4}},
		{"absolute beat plus ms", "[4b+250]", AbsoluteBeatPlusMs{Beat: 4, MS: 250}},
		{"absolute beat plus fraction", "[4b+1b2]", AbsoluteBeatPlusFraction{Beat: 4, Num: 1, Den: 2}},
		{"relative ms", "[+250]", RelativeMs{MS: 250}},
		{"relative beat", "[+1b]", RelativeBeat{Beat: 1}},
		{"relative fraction", "[+1b2]", RelativeFractionBeat{Num: 1, Den: 2}},
	}

	p := New()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			elems, err := p.ParseLineContent(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(elems) != 1 {
				t.Fatalf("expected 1 element, got %d: %#v", len(elems), elems)
			}
			if !reflect.DeepEqual(elems[0], tc.want) {
				t.Errorf("input %q:\n  expected: %#v\n  got:      %#v", tc.input, tc.want, elems[0])
			}
		})
	}
}

func TestParseLineContentCommands(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  Element
	}{
		{"bpm", "[bpm 140]", SetBpm{BPM: 140}},
		{"newline", "[newline]", NewLine{}},
		{"clear", "[clear]", ClearScreen{}},
		{"clearn", "[clearn]", ClearScreenNoReset{}},
		{"space default", "[space]", PrintSpace{Count: 1}},
		{"space n", "[space 3]", PrintSpace{Count: 3}},
		{"move absolute", "[mv 2,5]", MoveAbsolute{Row: 2, Col: 5}},
		{"move relative", "[mv +1,-2]", MoveRelative{DRow: 1, DCol: -2}},
		{"color", "[color ff8800]", SetColor{R: 0xff, G: 0x88, B: 0x00}},
		{"color hash", "[color #00ff00]", SetColor{R: 0, G: 0xff, B: 0}},
		{"background", "[background 11223344]", SetBackground{R: 0x11, G: 0x22, B: 0x33, A: 0x44}},
		{"clearcolor", "[clearcolor]", ClearColor{}},
		{"clearbackground", "[clearbackground]", ClearBackground{}},
		{"style", "[style bold italic]", SetStyle{Bold: true, Italic: true}},
		{"clearstyle", "[clearstyle]", ClearStyle{}},
		{"call function", "[wave 1,2]", CallFunction{Name: "wave", Args: []string{"1", "2"}}},
		{"call coroutine", "[++wave 1,2]", CallCoroutine{Name: "wave", Args: []string{"1", "2"}}},
	}

	p := New()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			elems, err := p.ParseLineContent(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(elems) != 1 {
				t.Fatalf("expected 1 element, got %d: %#v", len(elems), elems)
			}
			if !reflect.DeepEqual(elems[0], tc.want) {
				t.Errorf("input %q:\n  expected: %#v\n  got:      %#v", tc.input, tc.want, elems[0])
			}
		})
	}
}

func TestParseLineContentTextAndWhitespace(t *testing.T) {
	p := New()
	elems, err := p.ParseLineContent("  hello   world  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Element{PrintText{Text: "helloworld"}}
	if !reflect.DeepEqual(elems, want) {
		t.Errorf("expected bare whitespace to be dropped entirely: got %#v", elems)
	}
}

func TestParseLineContentNestedBrackets(t *testing.T) {
	p := New()
	elems, err := p.ParseLineContent("[wave [hex]]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elems) != 1 {
		t.Fatalf("expected 1 element for an outer bracket containing a nested one, got %#v", elems)
	}
	call, ok := elems[0].(CallFunction)
	if !ok {
		t.Fatalf("expected nested bracket content to parse as a call, got %#v", elems[0])
	}
	if call.Name != "wave" || !reflect.DeepEqual(call.Args, []string{"[hex]"}) {
		t.Errorf("expected the inner bracket to survive as a literal argument, got %#v", call)
	}
}

func TestParseRequiresLeadingTimestamp(t *testing.T) {
	p := New()
	_, err := p.Parse([]string{"[hello]"})
	if err == nil {
		t.Fatal("expected an error for a line with no leading timestamp")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Line != 1 {
		t.Errorf("expected line 1, got %d", pe.Line)
	}
}

func TestParseBpmAndAliasOmitTimestamp(t *testing.T) {
	p := New()
	elems, err := p.Parse([]string{"[bpm 120]", "[@greet hello]"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elems) != 2 {
		t.Fatalf("expected 2 elements, got %d: %#v", len(elems), elems)
	}
	if _, ok := elems[0].(SetBpm); !ok {
		t.Errorf("expected first element to be SetBpm, got %#v", elems[0])
	}
	if _, ok := elems[1].(DefineAlias); !ok {
		t.Errorf("expected second element to be DefineAlias, got %#v", elems[1])
	}
}

func TestParseFunctionDefinitionCapturesBody(t *testing.T) {
	p := New()
	lines := []string{
		"[#wave text]",
		"[<][0b][color ff0000][text]",
		"[<][+100][clearcolor]",
		"[0b][done]",
	}
	elems, err := p.Parse(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elems) != 3 {
		t.Fatalf("expected 3 top-level elements (the definition plus the trailing call line), got %d: %#v", len(elems), elems)
	}
	fn, ok := elems[0].(DefineFunction)
	if !ok {
		t.Fatalf("expected a DefineFunction, got %#v", elems[0])
	}
	if fn.Name != "wave" || !reflect.DeepEqual(fn.Params, []string{"text"}) {
		t.Errorf("unexpected function header: %#v", fn)
	}
	if len(fn.Body) != 2 {
		t.Fatalf("expected 2 captured body lines, got %#v", fn.Body)
	}
}

func TestParseContinuationLine(t *testing.T) {
	p := New()
	elems, err := p.Parse([]string{"[0b][hello][>]", "[world]"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sawContinuation bool
	for _, e := range elems {
		if _, ok := e.(Continuation); ok {
			sawContinuation = true
		}
	}
	if !sawContinuation {
		t.Errorf("expected a Continuation element, got %#v", elems)
	}
}

func TestParseRejectsReservedNames(t *testing.T) {
	p := New()
	if _, err := p.Parse([]string{"[@bpm hi]"}); err == nil {
		t.Error("expected an error defining an alias named after a reserved keyword")
	}
	if _, err := p.Parse([]string{"[#mv x]"}); err == nil {
		t.Error("expected an error defining a function named after a reserved keyword")
	}
}

func TestParseContinuationCannotOpenFunctionDefinition(t *testing.T) {
	p := New()
	_, err := p.Parse([]string{"[0b]x[>]", "[#f]"})
	if err == nil {
		t.Fatal("expected an error when a continuation line opens a function definition")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Line != 2 {
		t.Errorf("expected the error to point at line 2, got %d", pe.Line)
	}
}

func TestEscapeSequences(t *testing.T) {
	p := New()
	elems, err := p.ParseLineContent(`\[notabracket\]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Element{PrintText{Text: "[notabracket]"}}
	if !reflect.DeepEqual(elems, want) {
		t.Errorf("expected escaped brackets to print literally, got %#v", elems)
	}
}
