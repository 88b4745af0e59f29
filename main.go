package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/sergev/lox/lang"
	"github.com/sergev/lox/parser"
	"github.com/sergev/lox/runtime"
)

// Exit statuses follow sysexits(3).
const (
	exitOK       = 0
	exitUsage    = 64
	exitDataErr  = 65
	exitSoftware = 70
	exitIOErr    = 74
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("lox", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to a YAML config file")
	debug := fs.Bool("debug", false, "log interpreter calls to stderr")
	dumpAST := fs.Bool("ast", false, "print each parsed program as s-expressions")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: lox [flags] [script | -] [args...]\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := runtime.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "lox: %v\n", err)
		return exitUsage
	}
	if *debug {
		cfg.Debug = true
	}

	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	if cfg.Path != "" {
		logger.Debug("config loaded", "path", cfg.Path)
	}

	session := runtime.NewSession(cfg, stderr,
		lang.WithOutput(stdout),
		lang.WithInput(stdin),
		lang.WithLogger(logger),
	)
	session.DumpAST = *dumpAST

	rest := fs.Args()
	if err := runtime.SetArgv(session.Interp, rest); err != nil {
		fmt.Fprintf(stderr, "lox: %v\n", err)
		return exitSoftware
	}
	if len(rest) == 0 {
		runREPL(session, stdin, stdout, stderr)
		return exitOK
	}

	script := rest[0]
	if script == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "lox: %v\n", err)
			return exitIOErr
		}
		err = session.Run("<stdin>", string(data))
		return exitStatus(err, stderr)
	}
	return exitStatus(session.RunFile(script), stderr)
}

// exitStatus maps a script failure to a process status. Diagnostics have
// already been printed by the session; only I/O failures are reported here.
func exitStatus(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return exitOK
	case runtime.IsStaticError(err):
		return exitDataErr
	case lang.IsRuntimeError(err):
		return exitSoftware
	case errors.Is(err, os.ErrNotExist), errors.Is(err, os.ErrPermission):
		fmt.Fprintf(stderr, "lox: %v\n", err)
		return exitIOErr
	default:
		return exitSoftware
	}
}

func runREPL(session *runtime.Session, stdin io.Reader, stdout, stderr io.Writer) {
	if f, ok := stdin.(*os.File); !ok || !isInteractive(f) {
		runBufferedREPL(session, bufio.NewReader(stdin), stdout, stderr)
		return
	}
	runInteractiveREPL(session, stdout, stderr)
}

// needsMore reports whether src stops in the middle of a statement.
func needsMore(src string) bool {
	_, err := parser.ParseString(src)
	return parser.IsIncomplete(err)
}

// replCommand handles a ":"-prefixed REPL command. It returns false when
// the REPL should exit.
func replCommand(session *runtime.Session, line string, stdout, stderr io.Writer) bool {
	switch fields := strings.Fields(line); fields[0] {
	case ":quit", ":q":
		return false
	case ":env":
		for _, name := range session.Interp.Globals().Names() {
			if v, ok := session.Interp.Globals().Lookup(name); ok {
				fmt.Fprintf(session.Interp.Output(), "%s = %s\n", name, v.Repr())
			}
		}
	case ":ast":
		session.DumpAST = !session.DumpAST
		state := "off"
		if session.DumpAST {
			state = "on"
		}
		fmt.Fprintf(stdout, "ast dump %s\n", state)
	default:
		fmt.Fprintf(stderr, "unknown command %s (try :env, :ast or :quit)\n", fields[0])
	}
	return true
}

func runBufferedREPL(session *runtime.Session, reader *bufio.Reader, stdout, stderr io.Writer) {
	var buffer strings.Builder

	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(stderr, "read error: %v\n", err)
			return
		}
		atEOF := err != nil

		if buffer.Len() == 0 && strings.HasPrefix(strings.TrimSpace(line), ":") {
			if !replCommand(session, strings.TrimSpace(line), stdout, stderr) {
				return
			}
		} else {
			buffer.WriteString(line)
			src := buffer.String()
			if strings.TrimSpace(src) == "" {
				buffer.Reset()
			} else if atEOF || !needsMore(src) {
				buffer.Reset()
				session.Run("", src)
			}
		}
		if atEOF {
			return
		}
	}
}

func runInteractiveREPL(session *runtime.Session, stdout, stderr io.Writer) {
	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)

	historyPath := session.Config.HistoryPath()
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			state.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				state.WriteHistory(f)
				f.Close()
			}
		}()
	}

	var buffer strings.Builder

	for {
		prompt := session.Config.Prompt
		if buffer.Len() > 0 {
			prompt = session.Config.ContinuationPrompt
		}
		input, err := state.Prompt(prompt)
		if err != nil {
			switch {
			case errors.Is(err, liner.ErrPromptAborted):
				fmt.Fprintln(stdout)
				buffer.Reset()
				continue
			case errors.Is(err, io.EOF):
				fmt.Fprintln(stdout)
				return
			default:
				fmt.Fprintf(stderr, "read error: %v\n", err)
				return
			}
		}

		if buffer.Len() == 0 && strings.HasPrefix(strings.TrimSpace(input), ":") {
			state.AppendHistory(strings.TrimSpace(input))
			if !replCommand(session, strings.TrimSpace(input), stdout, stderr) {
				return
			}
			continue
		}

		buffer.WriteString(input)
		buffer.WriteString("\n")
		src := buffer.String()
		if strings.TrimSpace(src) == "" {
			buffer.Reset()
			continue
		}
		if needsMore(src) {
			continue
		}

		buffer.Reset()
		state.AppendHistory(strings.TrimSpace(src))
		session.Run("", src)
	}
}

func isInteractive(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
