package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/numkit/blasprobe/internal/mangle"
	"github.com/numkit/blasprobe/internal/native"
	"github.com/numkit/blasprobe/internal/probe"
)

var (
	backendKind = flag.String("backend", "reference", "Backend kind (reference, dlopen, static)")
	libPath     = flag.String("lib", "", "Library path for the dlopen backend (e.g. /usr/lib/libopenblas.so)")
	convName    = flag.String("convention", "netlib", "Naming convention preset ("+strings.Join(mangle.PresetNames(), ", ")+")")
	symPrefix   = flag.String("prefix", "", "Symbol prefix override")
	symSuffix   = flag.String("suffix", "", "Symbol suffix override (e.g. 64_)")
	underscore  = flag.Bool("underscore", true, "Append the Fortran trailing underscore")
	ilp64       = flag.Bool("ilp64", false, "Pass 64-bit integer arguments (ILP64)")
	reportPath  = flag.String("report", "", "Write a CBOR probe report to this file")
	listenAddr  = flag.String("listen", "", "Address to serve HTTP probe/metrics endpoints on (e.g. :8080)")
	enableOTel  = flag.Bool("otel", false, "Enable OpenTelemetry tracing (stdout)")
	cpuProfile  = flag.String("cpuprofile", "", "Write cpu profile to file")
)

// buildConvention layers configuration in increasing precedence: the
// preset, BLASPROBE_* environment overrides, then flags set explicitly
// on the command line.
func buildConvention() (mangle.Convention, error) {
	conv, ok := mangle.Preset(*convName)
	if !ok {
		return mangle.Convention{}, fmt.Errorf("unknown convention %q (want one of %s)", *convName, strings.Join(mangle.PresetNames(), ", "))
	}
	conv = mangle.FromEnv(conv)

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "prefix":
			conv.Prefix = *symPrefix
		case "suffix":
			conv.Suffix = *symSuffix
		case "underscore":
			conv.TrailingUnderscore = *underscore
		case "ilp64":
			if *ilp64 {
				conv.Width = mangle.ILP64
			} else {
				conv.Width = mangle.LP64
			}
		}
	})

	if err := conv.Validate(); err != nil {
		return mangle.Convention{}, err
	}
	return conv, nil
}

func main() {
	os.Exit(run())
}

func run() int {
	// Initialize logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()

	flag.Parse()

	if *enableOTel {
		shutdown, err := initTracer()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize tracer")
		}
		defer shutdown(context.Background())
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create CPU profile file")
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("Could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
	}

	conv, err := buildConvention()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid naming convention")
	}

	backend, err := native.New(*backendKind, conv, *libPath)
	if err != nil {
		log.Fatal().Err(err).Str("backend", *backendKind).Msg("Failed to construct backend")
	}
	log.Info().
		Str("backend", backend.Name()).
		Stringer("convention", conv).
		Msg("Probe backend ready")

	// Server Mode
	if *listenAddr != "" {
		startServer(*listenAddr, backend, conv.String())
		return 0
	}

	runner := probe.NewRunner(backend)
	runner.Convention = conv.String()

	report := runner.Run(context.Background())

	if *reportPath != "" {
		if err := writeReport(*reportPath, report); err != nil {
			log.Error().Err(err).Str("path", *reportPath).Msg("Failed to write report")
			return 1
		}
		log.Info().Str("path", *reportPath).Msg("Wrote probe report")
	}

	if !report.Passed {
		return 1
	}
	return 0
}

func writeReport(path string, report probe.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := cbor.NewEncoder(f).Encode(report); err != nil {
		f.Close()
		return fmt.Errorf("encode report: %w", err)
	}
	return f.Close()
}

func initTracer() (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("blasprobe"),
		)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return tp.Shutdown, nil
}
