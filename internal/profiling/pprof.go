// Package profiling exposes runtime profiling hooks for cmd/bbrtrace's
// -pprof-addr flag: an HTTP pprof endpoint, heap/CPU profile dumps and a
// runtime.trace recorder, independent of any scenario or path state.
package profiling

import (
	"context"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"time"
)

// Profiler owns the pprof HTTP server and trace file for one process run.
type Profiler struct {
	server    *http.Server
	traceFile *os.File
	enabled   bool
}

// Config controls what the profiler starts.
type Config struct {
	Addr          string        // pprof HTTP listen address
	TraceFile     string        // path to write an execution trace to
	TraceDuration time.Duration // stop the trace automatically after this long
	Enabled       bool
}

// NewProfiler builds a profiler; call Start to actually begin collecting.
func NewProfiler(cfg Config) *Profiler {
	return &Profiler{enabled: cfg.Enabled}
}

// Start begins HTTP pprof serving and/or trace recording per cfg.
func (p *Profiler) Start(ctx context.Context, cfg Config) error {
	if !cfg.Enabled {
		return nil
	}

	runtime.SetMutexProfileFraction(1)
	runtime.SetBlockProfileRate(1)

	if cfg.Addr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/debug/pprof/", http.DefaultServeMux.ServeHTTP)

		p.server = &http.Server{
			Addr:    cfg.Addr,
			Handler: mux,
		}

		go func() {
			log.Printf("starting pprof server on %s", cfg.Addr)
			if err := p.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("pprof server error: %v", err)
			}
		}()
	}

	if cfg.TraceFile != "" {
		if err := p.startTrace(cfg.TraceFile, cfg.TraceDuration); err != nil {
			return fmt.Errorf("start trace: %w", err)
		}
	}

	return nil
}

func (p *Profiler) startTrace(filename string, duration time.Duration) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create trace file: %w", err)
	}

	p.traceFile = file

	if err := trace.Start(file); err != nil {
		file.Close()
		return fmt.Errorf("start trace: %w", err)
	}

	log.Printf("started trace recording to %s", filename)

	if duration > 0 {
		go func() {
			time.Sleep(duration)
			p.StopTrace()
		}()
	}

	return nil
}

// StopTrace stops and closes an in-progress trace recording, if any.
func (p *Profiler) StopTrace() {
	if p.traceFile != nil {
		trace.Stop()
		p.traceFile.Close()
		p.traceFile = nil
		log.Println("stopped trace recording")
	}
}

// Stop shuts down the pprof server and any trace recording.
func (p *Profiler) Stop(ctx context.Context) error {
	if !p.enabled {
		return nil
	}

	p.StopTrace()

	if p.server != nil {
		if err := p.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown pprof server: %w", err)
		}
	}

	return nil
}

// WriteHeapProfile writes a heap profile snapshot to filename.
func (p *Profiler) WriteHeapProfile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create heap profile file: %w", err)
	}
	defer file.Close()

	if err := pprof.WriteHeapProfile(file); err != nil {
		return fmt.Errorf("write heap profile: %w", err)
	}

	log.Printf("heap profile written to %s", filename)
	return nil
}

// WriteCPUProfile records a CPU profile for duration and writes it to
// filename.
func (p *Profiler) WriteCPUProfile(filename string, duration time.Duration) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create CPU profile file: %w", err)
	}
	defer file.Close()

	if err := pprof.StartCPUProfile(file); err != nil {
		return fmt.Errorf("start CPU profile: %w", err)
	}

	time.Sleep(duration)
	pprof.StopCPUProfile()

	log.Printf("CPU profile written to %s", filename)
	return nil
}

// GetMemStats returns the raw runtime memory statistics.
func (p *Profiler) GetMemStats() runtime.MemStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m
}

// ForceGC forces a garbage collection cycle. cmd/bbrtrace does not call it.
func (p *Profiler) ForceGC() {
	runtime.GC()
}

// MemStats is a JSON-friendly projection of runtime.MemStats.
type MemStats struct {
	Alloc         uint64  `json:"alloc_bytes"`
	TotalAlloc    uint64  `json:"total_alloc_bytes"`
	Sys           uint64  `json:"sys_bytes"`
	Lookups       uint64  `json:"lookups"`
	Mallocs       uint64  `json:"mallocs"`
	Frees         uint64  `json:"frees"`
	HeapAlloc     uint64  `json:"heap_alloc_bytes"`
	HeapSys       uint64  `json:"heap_sys_bytes"`
	HeapIdle      uint64  `json:"heap_idle_bytes"`
	HeapInuse     uint64  `json:"heap_inuse_bytes"`
	HeapReleased  uint64  `json:"heap_released_bytes"`
	HeapObjects   uint64  `json:"heap_objects"`
	StackInuse    uint64  `json:"stack_inuse_bytes"`
	StackSys      uint64  `json:"stack_sys_bytes"`
	MSpanInuse    uint64  `json:"mspan_inuse_bytes"`
	MSpanSys      uint64  `json:"mspan_sys_bytes"`
	MCacheInuse   uint64  `json:"mcache_inuse_bytes"`
	MCacheSys     uint64  `json:"mcache_sys_bytes"`
	BuckHashSys   uint64  `json:"buck_hash_sys_bytes"`
	GCSys         uint64  `json:"gc_sys_bytes"`
	OtherSys      uint64  `json:"other_sys_bytes"`
	NextGC        uint64  `json:"next_gc_bytes"`
	LastGC        uint64  `json:"last_gc_ns"`
	PauseTotalNs  uint64  `json:"pause_total_ns"`
	NumGC         uint32  `json:"num_gc"`
	NumForcedGC   uint32  `json:"num_forced_gc"`
	GCCPUFraction float64 `json:"gc_cpu_fraction"`
	EnableGC      bool    `json:"enable_gc"`
	DebugGC       bool    `json:"debug_gc"`
}

// GetMemStatsStruct returns GetMemStats projected into MemStats.
func (p *Profiler) GetMemStatsStruct() MemStats {
	m := p.GetMemStats()
	return MemStats{
		Alloc:         m.Alloc,
		TotalAlloc:    m.TotalAlloc,
		Sys:           m.Sys,
		Lookups:       m.Lookups,
		Mallocs:       m.Mallocs,
		Frees:         m.Frees,
		HeapAlloc:     m.HeapAlloc,
		HeapSys:       m.HeapSys,
		HeapIdle:      m.HeapIdle,
		HeapInuse:     m.HeapInuse,
		HeapReleased:  m.HeapReleased,
		HeapObjects:   m.HeapObjects,
		StackInuse:    m.StackInuse,
		StackSys:      m.StackSys,
		MSpanInuse:    m.MSpanInuse,
		MSpanSys:      m.MSpanSys,
		MCacheInuse:   m.MCacheInuse,
		MCacheSys:     m.MCacheSys,
		BuckHashSys:   m.BuckHashSys,
		GCSys:         m.GCSys,
		OtherSys:      m.OtherSys,
		NextGC:        m.NextGC,
		LastGC:        m.LastGC,
		PauseTotalNs:  m.PauseTotalNs,
		NumGC:         m.NumGC,
		NumForcedGC:   m.NumForcedGC,
		GCCPUFraction: m.GCCPUFraction,
		EnableGC:      m.EnableGC,
		DebugGC:       m.DebugGC,
	}
}

// RuntimeStats bundles CPU/goroutine counts with memory statistics.
type RuntimeStats struct {
	NumCPU       int      `json:"num_cpu"`
	NumGoroutine int      `json:"num_goroutine"`
	NumCgoCall   int64    `json:"num_cgo_call"`
	MemStats     MemStats `json:"mem_stats"`
}

// GetRuntimeStats snapshots process-wide runtime statistics.
func (p *Profiler) GetRuntimeStats() RuntimeStats {
	return RuntimeStats{
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCgoCall:   runtime.NumCgoCall(),
		MemStats:     p.GetMemStatsStruct(),
	}
}
