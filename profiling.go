// profiling.go
//
// Optional runtime profiling for long-running compare and merge workloads.
// An Engine built with WithProfiling serves the net/http/pprof endpoints on a
// private mux and, when asked, records an execution trace until Close.

package logfile

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"runtime/trace"
	"time"
)

// ProfilingConfig selects the profiling facilities an Engine starts.
type ProfilingConfig struct {
	// EnableProfiling serves the pprof endpoints under /debug/pprof/.
	EnableProfiling bool

	// ProfileAddr is the listen address. Defaults to "localhost:6060".
	// Port 0 picks a free port; Engine.ProfileAddr reports the bound one.
	ProfileAddr string

	// Trace records an execution trace from NewEngine until Close.
	Trace bool

	// TraceOutputPath defaults to "./trace.out".
	TraceOutputPath string
}

// WithProfiling enables profiling with cfg. A nil cfg is ignored.
func WithProfiling(cfg *ProfilingConfig) Option {
	return func(e *Engine) {
		if cfg == nil {
			return
		}
		c := *cfg
		if c.EnableProfiling && c.ProfileAddr == "" {
			c.ProfileAddr = "localhost:6060"
		}
		if c.Trace && c.TraceOutputPath == "" {
			c.TraceOutputPath = "./trace.out"
		}
		e.profiling = &c
	}
}

type profiler struct {
	server    *http.Server
	addr      net.Addr
	traceFile *os.File
}

// startProfiling brings up whatever e.profiling asks for. On error nothing
// is left running.
func (e *Engine) startProfiling() error {
	cfg := e.profiling
	if cfg == nil || (!cfg.EnableProfiling && !cfg.Trace) {
		return nil
	}
	p := &profiler{}

	if cfg.EnableProfiling {
		ln, err := net.Listen("tcp", cfg.ProfileAddr)
		if err != nil {
			return fmt.Errorf("profiling listener: %w", err)
		}
		mux := http.NewServeMux()
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

		p.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		p.addr = ln.Addr()
		go func() {
			if err := p.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				e.log.Errorf("profiling server: %v", err)
			}
		}()
		e.log.Infof("profiling server listening on %s", p.addr)
	}

	if cfg.Trace {
		f, err := os.Create(cfg.TraceOutputPath)
		if err == nil {
			if err = trace.Start(f); err != nil {
				f.Close()
			}
		}
		if err != nil {
			p.shutdown(e.log)
			return fmt.Errorf("start trace: %w", err)
		}
		p.traceFile = f
	}

	e.prof = p
	return nil
}

func (p *profiler) shutdown(log Logger) {
	if p.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.server.Shutdown(ctx); err != nil {
			log.Warnf("profiling server shutdown: %v", err)
		}
		p.server = nil
	}
	if p.traceFile != nil {
		trace.Stop()
		if err := p.traceFile.Close(); err != nil {
			log.Warnf("close trace: %v", err)
		}
		p.traceFile = nil
	}
}

// ProfileAddr returns the address the pprof server is bound to, or "" when
// profiling is off.
func (e *Engine) ProfileAddr() string {
	if e.prof == nil || e.prof.addr == nil {
		return ""
	}
	return e.prof.addr.String()
}

// Close stops profiling and flushes any trace. It is safe to call on an
// Engine without profiling and more than once.
func (e *Engine) Close() error {
	if e.prof != nil {
		e.prof.shutdown(e.log)
		e.prof = nil
	}
	return nil
}
