// Command constructer inspects and previews constructer animations.
//
//	constructer sample    [-n 64] <path>
//	constructer morph     [-n 64] [-frames 10] [-ease ease-in-out] [-pad] <from> <to>
//	constructer keyframes [-at 0,0.5,1] [-ease linear] <file.yaml|file.toml>
//	constructer check     <storyboard>
//	constructer preview   [-fps] [-debug] [-no-watch] <storyboard>
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/muesli/termenv"

	"github.com/phanxgames/constructer"
)

type command struct {
	name  string
	usage string
	run   func(c *cli, args []string) error
}

var commands = []command{
	{"sample", "sample evenly spaced points along a path", runSample},
	{"morph", "print the frames of a morph between two paths", runMorph},
	{"keyframes", "evaluate a keyframe file at given progress values", runKeyframes},
	{"check", "load and hydrate a storyboard without opening a window", runCheck},
	{"preview", "open a window playing a storyboard, reloading on change", runPreview},
}

// cli carries the styled output shared by every command.
type cli struct {
	out *termenv.Output
}

func (c *cli) heading(format string, args ...any) {
	s := c.out.String(fmt.Sprintf(format, args...)).Bold().Foreground(c.out.Color("6"))
	fmt.Fprintln(c.out, s)
}

func (c *cli) field(name string, value any) {
	label := c.out.String(name + ":").Foreground(c.out.Color("8"))
	fmt.Fprintf(c.out, "  %s %v\n", label, value)
}

func (c *cli) line(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

func main() {
	verbose := flag.Bool("v", false, "log debug messages to stderr")
	flag.Usage = usage
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	constructer.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	c := &cli{out: termenv.NewOutput(os.Stdout)}
	for _, cmd := range commands {
		if cmd.name == args[0] {
			if err := cmd.run(c, args[1:]); err != nil {
				errOut := termenv.NewOutput(os.Stderr)
				fmt.Fprintf(errOut, "%s %v\n", errOut.String("error:").Foreground(errOut.Color("1")).Bold(), err)
				os.Exit(1)
			}
			return
		}
	}
	fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
	usage()
	os.Exit(2)
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: constructer [-v] <command> [flags] [args]\n\ncommands:\n")
	for _, cmd := range commands {
		fmt.Fprintf(os.Stderr, "  %-10s %s\n", cmd.name, cmd.usage)
	}
}
