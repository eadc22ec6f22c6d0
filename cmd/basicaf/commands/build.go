package commands

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/RyanMarcus/basicaf/internal/cache"
	"github.com/RyanMarcus/basicaf/internal/compile"
)

// Build compiles a BASIC source file to Tape Language text, consulting
// (and populating) the compile cache named by BASICAF_CACHE_DSN when
// that variable is set.
func Build(args []string, logger *log.Logger) error {
	f, err := parseArgs(args)
	if err != nil {
		return err
	}

	src, err := os.ReadFile(f.positional)
	if err != nil {
		return errors.Wrapf(err, "build: read %s", f.positional)
	}

	opts := compile.Options{
		SemanticComments:  f.semComments,
		IRComments:        f.irComments,
		ConstantSynthesis: !f.disableOpt,
	}

	var c *cache.Cache
	if dsn := os.Getenv("BASICAF_CACHE_DSN"); dsn != "" {
		c, err = cache.Open(dsn)
		if err != nil {
			return errors.Wrap(err, "build: open cache")
		}
		defer c.Close()
	}

	fp := cache.Fingerprint(opts.SemanticComments, opts.IRComments, opts.ConstantSynthesis)
	key := cache.Key(string(src), fp)

	if c != nil {
		if entry, ok, err := c.Get(key); err != nil {
			return errors.Wrap(err, "build: cache lookup")
		} else if ok {
			if f.verbose {
				logger.Printf("cache hit for %s (first compiled %s)", f.positional, humanize.Time(entry.CreatedAt))
			}
			return writeOutput(f.output, entry.Output)
		}
	}

	start := time.Now()
	out, err := compile.Compile(string(src), opts)
	if err != nil {
		return errors.Wrap(err, "build: compile")
	}
	elapsed := time.Since(start)

	if c != nil {
		buildID, err := c.Put(key, out)
		if err != nil {
			return errors.Wrap(err, "build: cache store")
		}
		if f.verbose {
			logger.Printf("cached as build %s", buildID)
		}
	}

	logger.Printf("compiled %s to %s in %s", f.positional,
		humanize.Bytes(uint64(len(out))), elapsed.Round(time.Microsecond))

	return writeOutput(f.output, out)
}

func writeOutput(path, content string) error {
	if path == "" {
		fmt.Println(content)
		return nil
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
