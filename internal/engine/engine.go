// Package engine walks a parsed .clip element stream as a timeline: it
// schedules commands against a wall-clock anchor, drives cursors,
// spawns coroutine branches for CallCoroutine, and coordinates the
// render loop with the virtual screen. See spec.md section 4.4 for the
// run procedure and time formula this implements.
package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stlalpha/clipplay/internal/audio"
	"github.com/stlalpha/clipplay/internal/cursor"
	"github.com/stlalpha/clipplay/internal/screen"
	"github.com/stlalpha/clipplay/internal/script"
	"github.com/stlalpha/clipplay/internal/termio"
)

// startBpm is the BPM every top-level run begins with, per spec.md
// section 4.4's run procedure.
const startBpm = 120.0

// postRunGrace is how long the engine waits after the main stream
// finishes before tearing down — long enough for in-flight coroutine
// branches (spawned fire-and-forget by CallCoroutine) to land their
// last writes, per spec.md section 4.4 step 6.
const postRunGrace = 1000 * time.Millisecond

// Engine drives a parsed element stream against a terminal and an
// optional audio track.
type Engine struct {
	Term   *termio.Terminal
	Audio  audio.Sink
	Parser *script.Parser

	Screen *screen.VirtualScreen

	functions map[string]script.DefineFunction
	aliases   map[string]script.DefineAlias

	coroutineCtx context.Context
	coroutineWG  sync.WaitGroup
}

// New wires an engine to its terminal and audio collaborators. If
// audioSink is nil, audio.NoopSink is used.
func New(term *termio.Terminal, audioSink audio.Sink) *Engine {
	if audioSink == nil {
		audioSink = audio.NoopSink{}
	}
	return &Engine{
		Term:   term,
		Audio:  audioSink,
		Parser: script.New(),
	}
}

// Run executes the full startup-to-teardown procedure spec.md section
// 4.4 describes: build the screen, launch the render loop, wait for
// the start keystroke, start the clock and audio, run the main stream,
// then tear everything down.
func (e *Engine) Run(ctx context.Context, elements []script.Element) error {
	e.indexDefinitions(elements)

	width, height, err := e.Term.Size()
	if err != nil {
		width, height = screen.MinWidth, screen.MinHeight
	}
	e.Screen = screen.New(width, height)
	mainCursor := cursor.New(e.Screen, true, true)

	renderCtx, stopRender := context.WithCancel(ctx)
	renderErrc := make(chan error, 1)
	go e.renderLoop(renderCtx, renderErrc)

	if _, err := e.Term.ReadByte(); err != nil {
		stopRender()
		<-renderErrc
		_ = e.Term.ShowCursor()
		return fmt.Errorf("waiting for start: %w", err)
	}

	e.Screen.ClearScreen()
	if err := e.Term.ClearScreen(); err != nil {
		stopRender()
		<-renderErrc
		_ = e.Term.ShowCursor()
		return fmt.Errorf("clearing terminal: %w", err)
	}
	startTime := time.Now()
	if err := e.Audio.Play(); err != nil {
		log.Printf("WARN: audio failed to start: %v", err)
	}

	coroutineCtx, stopCoroutines := context.WithCancel(ctx)
	e.coroutineCtx = coroutineCtx

	e.executeScope(ctx, elements, mainCursor, startTime, startBpm)

	time.Sleep(postRunGrace)

	e.Audio.Stop()
	stopCoroutines()
	e.coroutineWG.Wait()
	stopRender()
	renderErr := <-renderErrc

	_, h, _ := e.Term.Size()
	if h <= 0 {
		h = height
	}
	_ = e.Term.MoveCursor(h, 1)
	_ = e.Term.ShowCursor()

	if renderErr != nil {
		return fmt.Errorf("terminal write failed: %w", renderErr)
	}
	return ctx.Err()
}

// indexDefinitions pre-scans the top-level element stream for every
// DefineFunction and DefineAlias, per spec.md section 4.4's pre-scan
// step. Definitions remain in the element stream and are no-ops at run
// time; only top-level definitions are indexed, matching spec.md's
// "in the main stream, definitions are inert" note.
func (e *Engine) indexDefinitions(elements []script.Element) {
	e.functions = make(map[string]script.DefineFunction)
	e.aliases = make(map[string]script.DefineAlias)
	for _, el := range elements {
		switch v := el.(type) {
		case script.DefineFunction:
			e.functions[v.Name] = v
		case script.DefineAlias:
			e.aliases[v.Name] = v
		}
	}
}

// executeScope walks elements as a timeline anchored at scopeStart,
// tracking its own BPM and last-event-offset bookkeeping exactly as
// spec.md section 4.4 describes. It is re-entered recursively for
// alias/function expansion and concurrently for each spawned
// coroutine.
func (e *Engine) executeScope(ctx context.Context, elements []script.Element, cur *cursor.Cursor, scopeStart time.Time, parentBpm float64) {
	currentBpm := parentBpm
	var lastOffset float64

	for _, el := range elements {
		if ctx.Err() != nil {
			return
		}

		switch v := el.(type) {
		case script.Timestamp:
			offset, isContinuation := computeOffset(v, currentBpm, lastOffset)
			if !isContinuation {
				lastOffset = offset
			}
			sleepUntil(ctx, scopeStart.Add(time.Duration(offset)*time.Millisecond))

		case script.SetBpm:
			currentBpm = v.BPM

		case script.NewLine:
			cur.NewLine()

		case script.ClearScreen:
			e.Screen.ClearScreen()
			cur.MoveTo(0, 0)
			cur.ResetStyle()

		case script.ClearScreenNoReset:
			e.Screen.ClearScreen()

		case script.MoveAbsolute:
			cur.MoveTo(v.Row-1, v.Col-1)

		case script.MoveRelative:
			cur.MoveRelative(v.DRow, v.DCol)

		case script.SetColor:
			fg := screen.RGB{R: v.R, G: v.G, B: v.B}
			cur.FG = &fg

		case script.ClearColor:
			cur.FG = nil

		case script.SetBackground:
			bg := screen.RGBA{R: v.R, G: v.G, B: v.B, A: v.A}
			cur.BG = &bg

		case script.ClearBackground:
			cur.BG = nil

		case script.SetStyle:
			cur.Bold, cur.Italic = v.Bold, v.Italic
			cur.Underline, cur.Strikethrough = v.Underline, v.Strikethrough

		case script.ClearStyle:
			cur.Bold, cur.Italic, cur.Underline, cur.Strikethrough = false, false, false, false

		case script.PrintSpace:
			cur.PrintText(strings.Repeat(" ", v.Count))

		case script.PrintText:
			cur.PrintText(v.Text)

		case script.DefineFunction, script.DefineAlias:
			// inert at run time; already indexed by the pre-scan.

		case script.CallFunction:
			e.callFunction(ctx, v, cur, scopeStart, lastOffset, currentBpm)

		case script.CallCoroutine:
			e.callCoroutine(v, cur, scopeStart, lastOffset, currentBpm)
		}
	}
}

// callFunction resolves name against the alias table, then the
// function table, falling back to printing "[name]" literally — the
// silent-fallback runtime policy spec.md section 7 calls for.
func (e *Engine) callFunction(ctx context.Context, call script.CallFunction, cur *cursor.Cursor, scopeStart time.Time, lastOffset, bpm float64) {
	rebasedStart := scopeStart.Add(time.Duration(lastOffset) * time.Millisecond)

	if alias, ok := e.aliases[call.Name]; ok {
		resolved, err := e.Parser.ParseLineContent(alias.Raw)
		if err != nil {
			log.Printf("WARN: alias %q failed to re-parse: %v", call.Name, err)
			return
		}
		e.executeScope(ctx, resolved, cur, rebasedStart, bpm)
		return
	}

	if fn, ok := e.functions[call.Name]; ok {
		body := substituteParams(fn.Params, call.Args, fn.Body)
		resolved, err := e.Parser.Parse(body)
		if err != nil {
			log.Printf("WARN: function %q failed to re-parse: %v", call.Name, err)
			return
		}
		e.executeScope(ctx, resolved, cur, rebasedStart, bpm)
		return
	}

	cur.PrintText("[" + call.Name + "]")
}

// callCoroutine spawns an independent, concurrently-executing scope
// for a function's body, cloning cur with the permission bits its
// definition's [override] marker established. A coroutine naming a
// missing (or alias-only) function is silently ignored, per spec.md
// section 7 — only functions are eligible, never aliases.
func (e *Engine) callCoroutine(call script.CallCoroutine, cur *cursor.Cursor, scopeStart time.Time, lastOffset, bpm float64) {
	fn, ok := e.functions[call.Name]
	if !ok {
		return
	}

	body := substituteParams(fn.Params, call.Args, fn.Body)
	resolved, err := e.Parser.Parse(body)
	if err != nil {
		log.Printf("WARN: coroutine %q failed to re-parse: %v", call.Name, err)
		return
	}

	sub := cur.Clone(false, fn.AllowOverride)
	start := scopeStart.Add(time.Duration(lastOffset) * time.Millisecond)
	ctx := e.coroutineCtx
	taskID := uuid.NewString()

	e.coroutineWG.Add(1)
	go func() {
		defer e.coroutineWG.Done()
		log.Printf("DEBUG: coroutine %s (%s) started", call.Name, taskID)
		e.executeScope(ctx, resolved, sub, start, bpm)
		log.Printf("DEBUG: coroutine %s (%s) finished", call.Name, taskID)
	}()
}

// substituteParams replaces every literal "[param]" occurrence in each
// body line with the matching positional argument, textually and
// before any re-parse — missing arguments substitute the empty string.
// This is what lets a parameter occur inside a nested bracket command
// like [color [hex]].
func substituteParams(params, args, body []string) []string {
	out := make([]string, len(body))
	for i, line := range body {
		for pi, p := range params {
			val := ""
			if pi < len(args) {
				val = args[pi]
			}
			line = strings.ReplaceAll(line, "["+p+"]", val)
		}
		out[i] = line
	}
	return out
}

// sleepUntil blocks until target, or until ctx is cancelled, whichever
// comes first. A target already in the past returns immediately — this
// is the drift-correction spec.md section 4.4 calls for: a late event
// never delays the ones after it.
func sleepUntil(ctx context.Context, target time.Time) {
	d := time.Until(target)
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
