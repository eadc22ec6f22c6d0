package commands

import (
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/RyanMarcus/basicaf/internal/tapevm"
)

// Exec runs a Tape Language source file directly, bypassing the BASIC
// compiler entirely, and prints whatever it outputs via '.'.
func Exec(args []string, logger *log.Logger) error {
	f, err := parseArgs(args)
	if err != nil {
		return err
	}

	src, err := os.ReadFile(f.positional)
	if err != nil {
		return errors.Wrapf(err, "exec: read %s", f.positional)
	}

	env := tapevm.New()
	out, err := env.Execute(string(src))
	if err != nil {
		return errors.Wrap(err, "exec")
	}

	if f.verbose {
		logger.Printf("executed %s, pointer ended at cell %d", f.positional, env.PtrValue())
	}

	if f.output == "" {
		fmt.Print(out)
		return nil
	}
	return os.WriteFile(f.output, []byte(out), 0o644)
}
