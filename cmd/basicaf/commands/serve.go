package commands

import (
	"log"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/RyanMarcus/basicaf/internal/compile"
	"github.com/RyanMarcus/basicaf/internal/devserver"
)

// Serve watches a BASIC source file and streams recompiles to connected
// websocket clients as it changes, per spec.md §6's "watch mode".
func Serve(args []string, logger *log.Logger) error {
	f, err := parseArgs(args)
	if err != nil {
		return err
	}

	opts := compile.Options{
		SemanticComments:  f.semComments,
		IRComments:        f.irComments,
		ConstantSynthesis: !f.disableOpt,
	}

	srv := devserver.New(f.positional, opts, time.Second)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.ServeWS)

	addr := f.output
	if addr == "" {
		addr = ":8080"
	}

	stop := make(chan struct{})
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Watch(stop)
	}()

	logger.Printf("serving %s on %s (websocket at /ws)", f.positional, addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		close(stop)
		return errors.Wrap(err, "serve: http")
	}

	close(stop)
	return <-errc
}
