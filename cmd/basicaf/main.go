// Command basicaf is the CLI driver for the BASIC-to-Tape-Language
// compiler (spec.md §6, an external collaborator the CORE itself never
// imports). Dispatch is a manual os.Args switch behind a command-alias
// map, grounded on _teacher_cmd/sentra/main.go's commandAliases pattern
// rather than a flags library.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/RyanMarcus/basicaf/cmd/basicaf/commands"
)

var commandAliases = map[string]string{
	"b": "build",
	"e": "exec",
	"g": "graphviz",
	"s": "serve",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		os.Exit(1)
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	logger := log.New(os.Stderr, "[basicaf] ", 0)

	var err error
	switch cmd {
	case "build":
		err = commands.Build(args[1:], logger)
	case "exec":
		err = commands.Exec(args[1:], logger)
	case "graphviz":
		err = commands.Graphviz(args[1:], logger)
	case "serve":
		err = commands.Serve(args[1:], logger)
	case "help", "-h", "--help":
		showUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		showUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Fatalf("%v", err)
	}
}

func showUsage() {
	fmt.Fprintln(os.Stderr, `usage: basicaf <command> [args]

commands:
  build (b) <file.bas>      compile a BASIC program to the Tape Language
  exec  (e) <file.bf>       execute a Tape Language program
  graphviz (g) <file.bas>   render the loop-recovered CFG as graphviz dot
  serve (s) <file.bas>      watch a BASIC file and stream recompiles over websocket

build/graphviz/exec flags:
  -o <path>   write output to path instead of stdout
  -v          verbose logging

build flags:
  -s          include semantic comments in the output
  -i          include IR comments in the output
  -d          disable constant-synthesis optimization

serve flags:
  -o <addr>   listen address (default :8080)
  -s, -i, -d  as for build, applied to every recompile`)
}
