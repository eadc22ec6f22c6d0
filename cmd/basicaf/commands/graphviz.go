package commands

import (
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/RyanMarcus/basicaf/internal/compile"
)

// Graphviz renders the loop-recovered control flow graph of a BASIC
// program as graphviz dot, stopping before IR generation (matching the
// original CLI's -g flag, which reflects structured loops rather than
// the raw CFG).
func Graphviz(args []string, logger *log.Logger) error {
	f, err := parseArgs(args)
	if err != nil {
		return err
	}

	src, err := os.ReadFile(f.positional)
	if err != nil {
		return errors.Wrapf(err, "graphviz: read %s", f.positional)
	}

	dot, err := compile.Graphviz(string(src))
	if err != nil {
		return errors.Wrap(err, "graphviz")
	}

	if f.verbose {
		logger.Printf("rendered CFG for %s", f.positional)
	}

	if f.output == "" {
		fmt.Println(dot)
		return nil
	}
	return os.WriteFile(f.output, []byte(dot), 0o644)
}
