// Command bbrtrace replays synthetic network profiles through the bbr
// congestion controller, grades each run against a set of SLA gates, and
// renders the result as a terminal report, with optional Prometheus,
// OTLP and pprof exporters for live inspection of a run in progress.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"bbrtrace/bbr"
	internalpkg "bbrtrace/internal"
	"bbrtrace/internal/metrics"
	"bbrtrace/internal/netprofile"
	"bbrtrace/internal/profiling"
	"bbrtrace/internal/report"
	"bbrtrace/internal/scenario"
	"bbrtrace/internal/sla"
	"bbrtrace/internal/telemetry"
	"bbrtrace/internal/validate"
)

func main() {
	versionFlag := flag.Bool("version", false, "print the version and exit")
	scenarioFlag := flag.String("scenario", "all", "comma-separated seed scenario names, or \"all\"")
	profileFlag := flag.String("network-profile", "", "override the scenario's network profile (wifi, lte, 5g, satellite, ethernet, datacenter)")
	roundsFlag := flag.Int("rounds", 0, "override the scenario's round count (0 keeps the scenario default)")
	seedFlag := flag.Int64("seed", 1, "PRNG seed for synthetic RTT/loss draws")
	listProfilesFlag := flag.Bool("list-profiles", false, "list available network profiles and exit")

	prometheusAddr := flag.String("prometheus-addr", "", "serve Prometheus metrics on this address (e.g. :9464); empty disables it")
	otlpEndpoint := flag.String("otlp-endpoint", "", "OTLP/HTTP trace collector endpoint; empty disables trace export")
	pprofAddr := flag.String("pprof-addr", "", "serve net/http/pprof on this address; empty disables it")

	reportPath := flag.String("report", "", "write the report here instead of stdout")
	reportFormat := flag.String("report-format", "text", "report format: text, json, csv, markdown")

	flag.Parse()

	if *versionFlag {
		internalpkg.PrintVersion()
		os.Exit(0)
	}

	if *listProfilesFlag {
		for _, name := range netprofile.Names() {
			fmt.Println(" -", name)
		}
		os.Exit(0)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx := context.Background()

	var promMetrics *metrics.PrometheusMetrics
	if *prometheusAddr != "" {
		promMetrics = metrics.NewPrometheusMetricsWithRegistry(prometheus.DefaultRegisterer)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			sugar.Infow("serving prometheus metrics", "addr", *prometheusAddr)
			if err := http.ListenAndServe(*prometheusAddr, mux); err != nil && err != http.ErrServerClosed {
				sugar.Errorw("prometheus server stopped", "error", err)
			}
		}()
	}

	var telemetryManager *telemetry.Manager
	var ccMetrics *telemetry.CCMetrics
	if *otlpEndpoint != "" {
		telemetryManager, err = telemetry.NewManager(ctx, telemetry.Config{
			ServiceName:    "bbrtrace",
			ServiceVersion: internalpkg.GetVersionInfo(),
			Environment:    "scenario",
			OTLPEndpoint:   *otlpEndpoint,
			SampleRate:     1.0,
		})
		if err != nil {
			sugar.Fatalw("build telemetry manager", "error", err)
		}
		defer telemetryManager.Shutdown(ctx)

		ccMetrics, err = telemetry.NewCCMetrics(telemetryManager)
		if err != nil {
			sugar.Fatalw("build otel instruments", "error", err)
		}
	}

	profiler := profiling.NewProfiler(profiling.Config{Addr: *pprofAddr, Enabled: *pprofAddr != ""})
	if err := profiler.Start(ctx, profiling.Config{Addr: *pprofAddr, Enabled: *pprofAddr != ""}); err != nil {
		sugar.Fatalw("start profiler", "error", err)
	}
	defer profiler.Stop(ctx)

	hdrMetrics := metrics.NewHDRMetrics()

	selected := selectScenarios(*scenarioFlag)
	if len(selected) == 0 {
		fmt.Fprintf(os.Stderr, "no matching scenario for %q\n", *scenarioFlag)
		os.Exit(1)
	}

	entries := make([]report.Entry, 0, len(selected))
	var anyFailed bool

	for _, s := range selected {
		cfg := s.build(*seedFlag)
		if *profileFlag != "" {
			if p, err := netprofile.Get(*profileFlag); err == nil {
				cfg.Profile = p
			} else {
				sugar.Warnw("unknown network profile override, keeping scenario default", "profile", *profileFlag)
			}
		}
		if *roundsFlag > 0 {
			cfg.Rounds = *roundsFlag
		}
		cfg.Logger = loggerAdapter{sugar}
		cfg.Recorder = &metricsRecorder{
			ctx:    ctx,
			pathID: s.name,
			prom:   promMetrics,
			hdr:    hdrMetrics,
			otel:   ccMetrics,
		}

		result := scenario.Run(cfg)

		pointViolations := validate.CheckSequence(result.Snapshots)
		for _, v := range pointViolations {
			sugar.Warnw("invariant violation", "scenario", s.name, "invariant", v.Invariant, "message", v.Message)
		}

		grade := sla.NewValidator(s.gates).Validate(summarize(result))
		if !grade.Passed {
			anyFailed = true
		}
		entries = append(entries, report.Entry{Result: result, Grade: grade})
	}

	var out = os.Stdout
	if *reportPath != "" {
		f, err := os.Create(*reportPath)
		if err != nil {
			sugar.Fatalw("create report file", "error", err)
		}
		defer f.Close()
		if err := report.Write(f, entries, report.Format(*reportFormat)); err != nil {
			sugar.Fatalw("write report", "error", err)
		}
	} else {
		if err := report.Write(out, entries, report.Format(*reportFormat)); err != nil {
			sugar.Fatalw("write report", "error", err)
		}
	}

	if anyFailed {
		os.Exit(1)
	}
}


// selectScenarios parses the -scenario flag into the matching seedScenario
// entries, preserving seedScenarios' order.
func selectScenarios(flagValue string) []seedScenario {
	all := seedScenarios()
	if flagValue == "all" || flagValue == "" {
		return all
	}

	wanted := make(map[string]bool)
	for _, name := range strings.Split(flagValue, ",") {
		wanted[strings.TrimSpace(name)] = true
	}

	var out []seedScenario
	for _, s := range all {
		if wanted[s.name] {
			out = append(out, s)
		}
	}
	return out
}

// summarize reduces a scenario run to the end-of-run metrics sla.Validator
// grades against.
func summarize(r *scenario.Result) sla.Metrics {
	if len(r.Snapshots) == 0 {
		return sla.Metrics{}
	}

	last := r.Snapshots[len(r.Snapshots)-1]

	minCwnd := r.Snapshots[0].Cwin
	maxCwnd := r.Snapshots[0].Cwin
	minRTT := r.Snapshots[0].MinRTT
	rtts := make([]float64, 0, len(r.Snapshots))
	var bwSum float64

	for _, s := range r.Snapshots {
		if s.Cwin < minCwnd {
			minCwnd = s.Cwin
		}
		if s.Cwin > maxCwnd {
			maxCwnd = s.Cwin
		}
		if s.MinRTT > 0 && (minRTT == 0 || s.MinRTT < minRTT) {
			minRTT = s.MinRTT
		}
		rtts = append(rtts, float64(s.RTTSample.Microseconds())/1000.0)
		bwSum += s.BandwidthBps
	}

	sort.Float64s(rtts)
	p95 := rtts[int(float64(len(rtts)-1)*0.95)]
	var meanRTT float64
	for _, v := range rtts {
		meanRTT += v
	}
	meanRTT /= float64(len(rtts))

	return sla.Metrics{
		BandwidthBps:     bwSum / float64(len(r.Snapshots)),
		LossRateSmoothed: last.LossRateSmoothed,
		MinCwndBytes:     minCwnd,
		MaxCwndBytes:     maxCwnd,
		MinRTTMs:         float64(minRTT.Microseconds()) / 1000.0,
		MeanRTTMs:        meanRTT,
		P95RTTMs:         p95,
		FilledPipe:       r.FilledPipe,
		FinalState:       r.FinalState,
	}
}

// loggerAdapter bridges zap's SugaredLogger to bbr.Logger; the method sets
// already match (Debugw(string, ...interface{})), so this just documents
// the pairing and keeps bbr free of a zap import.
type loggerAdapter struct {
	*zap.SugaredLogger
}

// metricsRecorder fans one path's per-ACK telemetry out to whichever
// exporters are enabled for this run.
type metricsRecorder struct {
	ctx       context.Context
	pathID    string
	prom      *metrics.PrometheusMetrics
	hdr       *metrics.HDRMetrics
	otel      *telemetry.CCMetrics
	prevRound uint64
}

func (r *metricsRecorder) Observe(p *bbr.Path) {
	roundDelta := p.RoundCount() - r.prevRound
	r.prevRound = p.RoundCount()

	state := p.Mode().String()

	if r.prom != nil {
		r.prom.Observe(state, float64(p.Cwin()), p.PacingRate(), p.Bandwidth(), p.MinRTT(),
			p.InflightHi(), p.InflightLo(), p.LossRateSmoothed(), roundDelta)
		r.prom.RecordDeliveryRate(p.Bandwidth())
	}
	if r.hdr != nil {
		r.hdr.RecordBandwidth(p.Bandwidth())
		r.hdr.RecordPacingRate(p.PacingRate())
		r.hdr.RecordCwnd(p.Cwin())
	}
	if r.otel != nil {
		r.otel.Record(r.ctx, r.pathID, float64(p.Cwin()), p.PacingRate(), p.Bandwidth(), p.MinRTT(), 0, p.Bandwidth())
	}
}
