package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	restfullog "github.com/emicklei/go-restful/v3/log"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const instrumentationName = "github.com/ecociel/taskview"

var logger = otelslog.NewLogger(instrumentationName)

// Logger returns the process logger. Records are dropped until Setup
// installs a logger provider.
func Logger() *slog.Logger {
	return logger
}

// Setup installs the OpenTelemetry logger provider and, when tracing is
// set, a tracer provider. The returned function flushes and stops both.
func Setup(ctx context.Context, serviceName string, tracing bool) (shutdown func(context.Context) error, err error) {
	var shutdownFuncs []func(context.Context) error
	shutdown = func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFuncs {
			err = errors.Join(err, fn(ctx))
		}
		shutdownFuncs = nil
		return err
	}

	res := resource.NewSchemaless(attribute.String("service.name", serviceName))

	logExporter, err := stdoutlog.New()
	if err != nil {
		return shutdown, errors.Join(err, shutdown(ctx))
	}
	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
	)
	shutdownFuncs = append(shutdownFuncs, loggerProvider.Shutdown)
	global.SetLoggerProvider(loggerProvider)

	restfullog.SetLogger(slog.NewLogLogger(logger.Handler(), slog.LevelWarn))

	if !tracing {
		return shutdown, nil
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	traceExporter, err := stdouttrace.New()
	if err != nil {
		return shutdown, errors.Join(err, shutdown(ctx))
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(traceExporter, sdktrace.WithBatchTimeout(time.Second)),
	)
	shutdownFuncs = append(shutdownFuncs, tracerProvider.Shutdown)
	otel.SetTracerProvider(tracerProvider)

	return shutdown, nil
}
