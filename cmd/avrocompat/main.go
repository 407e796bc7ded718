package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	ac "github.com/reoring/avrocompat"
	"github.com/reoring/avrocompat/avsc"
	"github.com/reoring/avrocompat/i18n"
)

const (
	exitOK           = 0
	exitIncompatible = 1
	exitUsage        = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "avrocompat CLI\n\nUsage:\n  avrocompat check [-driver go-json|fastjson] [-max-depth N] [-v] [-color auto|always|never] [-diff] [-lang en|ja] FILE...\n  avrocompat superset [-driver go-json|fastjson] [-max-depth N] [-v] [-lang en|ja] [-o out.avsc] FILE...\n\nFILEs are ordered oldest to newest. Exit status: 0 compatible, 1 incompatible, 2 usage or parse error.")
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return exitUsage
	}
	switch args[0] {
	case "check":
		return checkCmd(args[1:], stdout, stderr)
	case "superset":
		return supersetCmd(args[1:], stdout, stderr)
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return exitOK
	default:
		usage(stderr)
		return exitUsage
	}
}

// common holds the flags shared by every subcommand.
type common struct {
	driver   string
	maxDepth int
	verbose  bool
	lang     string
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.driver, "driver", "go-json", "JSON driver: go-json or fastjson")
	fs.IntVar(&c.maxDepth, "max-depth", 0, "nesting limit for parsing and comparison (0 = unlimited)")
	fs.BoolVar(&c.verbose, "v", false, "enable verbose logs")
	fs.StringVar(&c.lang, "lang", "en", "message language: en or ja")
}

// load applies the shared flags and parses every file in order.
func (c *common) load(files []string, stderr io.Writer) ([]ac.Schema, *slog.Logger, error) {
	if len(files) == 0 {
		return nil, nil, errors.New("no schema files given")
	}
	d, err := avsc.DriverByName(c.driver)
	if err != nil {
		return nil, nil, err
	}
	avsc.SetDriver(d)
	switch c.lang {
	case "en", "ja":
		i18n.SetLanguage(c.lang)
	default:
		return nil, nil, fmt.Errorf("unknown language %q", c.lang)
	}

	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	schemas := make([]ac.Schema, 0, len(files))
	for _, f := range files {
		s, err := avsc.ParseFile(f, avsc.Options{MaxDepth: c.maxDepth})
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("schema loaded", "file", f, "kind", s.Kind().String())
		schemas = append(schemas, s)
	}
	return schemas, logger, nil
}

func checkCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	var colorMode string
	var showDiff bool
	c.register(fs)
	fs.StringVar(&colorMode, "color", "auto", "colorize output: auto, always or never")
	fs.BoolVar(&showDiff, "diff", false, "print a diff of the superset and the rejected schema")
	if err := fs.Parse(args); err != nil {
		return flagExit(err)
	}
	useColor, err := colorEnabled(colorMode, stdout)
	if err != nil {
		return fatalf(stderr, "%v", err)
	}
	files := fs.Args()
	schemas, logger, err := c.load(files, stderr)
	if err != nil {
		return fatalf(stderr, "%v", err)
	}

	rejected := -1
	var diff string
	var diffErr error
	cerr := ac.Check(schemas, ac.CheckOpt{
		MaxDepth: c.maxDepth,
		Logger:   logger,
		OnReject: func(i int, superset, next ac.Schema) {
			rejected = i
			if showDiff {
				diff, diffErr = schemaDiff(superset, next)
			}
		},
	})
	if cerr == nil {
		if c.verbose {
			ok := color.New(color.FgGreen, color.Bold)
			setColor(ok, useColor)
			fmt.Fprintf(stdout, "%s %d schemas compatible\n", ok.Sprint("OK"), len(schemas))
		}
		return exitOK
	}
	inc, ok := ac.AsIncompatibility(cerr)
	if !ok || rejected < 0 {
		return fatalf(stderr, "%v", cerr)
	}
	reportIncompatible(stdout, useColor, files[rejected], inc)
	if showDiff {
		if diffErr != nil {
			return fatalf(stderr, "diff: %v", diffErr)
		}
		writeDiff(stdout, useColor, diff)
	}
	return exitIncompatible
}

func supersetCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("superset", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	var out string
	c.register(fs)
	fs.StringVar(&out, "o", "", "output filename (default stdout)")
	if err := fs.Parse(args); err != nil {
		return flagExit(err)
	}
	files := fs.Args()
	schemas, logger, err := c.load(files, stderr)
	if err != nil {
		return fatalf(stderr, "%v", err)
	}

	rejected := -1
	sup, err := ac.Superset(schemas, ac.CheckOpt{
		MaxDepth: c.maxDepth,
		Logger:   logger,
		OnReject: func(i int, _, _ ac.Schema) { rejected = i },
	})
	if err != nil {
		inc, ok := ac.AsIncompatibility(err)
		if !ok || rejected < 0 {
			return fatalf(stderr, "%v", err)
		}
		reportIncompatible(stdout, false, files[rejected], inc)
		return exitIncompatible
	}

	b, err := avsc.MarshalIndent(sup, "", "  ")
	if err != nil {
		return fatalf(stderr, "encode superset: %v", err)
	}
	b = append(b, '\n')
	if out == "" {
		_, _ = stdout.Write(b)
		return exitOK
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fatalf(stderr, "creating output dir: %v", err)
		}
	}
	if err := os.WriteFile(out, b, 0o644); err != nil {
		return fatalf(stderr, "writing output: %v", err)
	}
	logger.Debug("superset written", "file", out)
	return exitOK
}

func reportIncompatible(w io.Writer, useColor bool, file string, inc *ac.Incompatibility) {
	c := color.New(color.FgRed, color.Bold)
	setColor(c, useColor)
	fmt.Fprintf(w, "%s %s: %v\n", c.Sprint("INCOMPATIBLE"), file, inc)
}

// schemaDiff renders a line diff of the canonical JSON of both schemas.
func schemaDiff(from, to ac.Schema) (string, error) {
	a, err := avsc.MarshalIndent(from, "", "  ")
	if err != nil {
		return "", err
	}
	b, err := avsc.MarshalIndent(to, "", "  ")
	if err != nil {
		return "", err
	}
	dmp := diffpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(string(a)+"\n", string(b)+"\n")
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	sb := &strings.Builder{}
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffpatch.DiffInsert:
			prefix = "+ "
		case diffpatch.DiffDelete:
			prefix = "- "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(line)
		}
	}
	return sb.String(), nil
}

func writeDiff(w io.Writer, useColor bool, diff string) {
	add := color.New(color.FgGreen)
	del := color.New(color.FgRed)
	setColor(add, useColor)
	setColor(del, useColor)
	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+ "):
			_, _ = add.Fprint(w, line)
		case strings.HasPrefix(line, "- "):
			_, _ = del.Fprint(w, line)
		default:
			fmt.Fprint(w, line)
		}
	}
}

func setColor(c *color.Color, on bool) {
	if on {
		c.EnableColor()
		return
	}
	c.DisableColor()
}

func colorEnabled(mode string, w io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		f, ok := w.(*os.File)
		if !ok {
			return false, nil
		}
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()), nil
	default:
		return false, fmt.Errorf("unknown color mode %q", mode)
	}
}

func flagExit(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	return exitUsage
}

func fatalf(w io.Writer, format string, a ...any) int {
	fmt.Fprintf(w, "avrocompat: "+format+"\n", a...)
	return exitUsage
}
