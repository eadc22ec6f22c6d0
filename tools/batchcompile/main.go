// Command batchcompile concurrently compiles every .bas file under a
// directory tree, writing each program's Tape Language output next to
// its source with a .bf extension.
//
// Grounded on jcorbin-gothird/scripts/gen_vm_expects.go's
// errgroup.WithContext + golang.org/x/net/context fan-out shape: a
// single deadline-bound context shared by every worker, first error wins.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"

	"github.com/RyanMarcus/basicaf/internal/compile"
)

func main() {
	dir := flag.String("dir", ".", "directory to search for .bas files")
	timeout := flag.Duration("timeout", 30*time.Second, "deadline for the whole batch")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := compileAll(ctx, *dir); err != nil {
		log.Fatalln(err)
	}
}

// compileAll finds every .bas file under dir and compiles them
// concurrently, stopping at the first error any worker reports.
func compileAll(ctx context.Context, dir string) error {
	files, err := findBasicFiles(dir)
	if err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	for _, f := range files {
		f := f
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			return compileOne(f)
		})
	}
	return eg.Wait()
}

func findBasicFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".bas") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func compileOne(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	bf, err := compile.Compile(string(src), compile.DefaultOptions())
	if err != nil {
		return err
	}

	outPath := strings.TrimSuffix(path, ".bas") + ".bf"
	return os.WriteFile(outPath, []byte(bf), 0o644)
}
