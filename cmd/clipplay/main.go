package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/stlalpha/clipplay/internal/audio"
	"github.com/stlalpha/clipplay/internal/engine"
	"github.com/stlalpha/clipplay/internal/script"
	"github.com/stlalpha/clipplay/internal/termio"
)

func main() {
	log.SetOutput(os.Stderr)

	var musicPath string
	flag.StringVar(&musicPath, "m", "", "path to an MP3 file to play alongside the script")
	flag.StringVar(&musicPath, "music", "", "path to an MP3 file to play alongside the script")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-m|--music FILE] SCRIPT.clip\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), musicPath); err != nil {
		fmt.Printf("\x1b[31m%s\x1b[0m\n", err)
		os.Exit(1)
	}
}

func run(scriptPath, musicPath string) error {
	source, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("reading script %s: %w", scriptPath, err)
	}

	parser := script.New()
	elements, err := parser.Parse(splitLines(string(source)))
	if err != nil {
		return err
	}

	var sink audio.Sink = audio.NoopSink{}
	if musicPath != "" {
		sink = audio.NewExecSink(musicPath)
	}

	term := termio.New(os.Stdin, os.Stdout)
	restore, err := term.MakeRaw()
	if err != nil {
		return fmt.Errorf("preparing terminal: %w", err)
	}
	defer restore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	e := engine.New(term, sink)
	e.Parser = parser
	return e.Run(ctx, elements)
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			line := s[start:i]
			if len(line) > 0 && line[len(line)-1] == '\r' {
				line = line[:len(line)-1]
			}
			lines = append(lines, line)
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
