package commands

import "github.com/pkg/errors"

// parsedFlags is the hand-rolled result of scanning a command's argument
// list for a fixed set of boolean/value flags plus one positional file
// argument, matching _teacher_cmd/sentra's no-flags-library convention.
type parsedFlags struct {
	semComments bool
	irComments  bool
	disableOpt  bool
	verbose     bool
	output      string
	positional  string
}

func parseArgs(args []string) (parsedFlags, error) {
	var f parsedFlags
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-s", "--semantic-comments":
			f.semComments = true
		case "-i", "--ir-comments":
			f.irComments = true
		case "-d", "--disable-opt":
			f.disableOpt = true
		case "-v", "--verbose":
			f.verbose = true
		case "-o", "--output":
			if i+1 >= len(args) {
				return f, errors.Errorf("%s requires a path argument", args[i])
			}
			i++
			f.output = args[i]
		default:
			if f.positional != "" {
				return f, errors.Errorf("unexpected extra argument %q", args[i])
			}
			f.positional = args[i]
		}
	}
	if f.positional == "" {
		return f, errors.New("missing input file argument")
	}
	return f, nil
}
