package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/iwvelando/dcf-forecast/internal/config"
	"github.com/iwvelando/dcf-forecast/internal/document"
	"github.com/iwvelando/dcf-forecast/internal/engine"
	"github.com/iwvelando/dcf-forecast/internal/server"
	"github.com/iwvelando/dcf-forecast/pkg/constants"
	"github.com/iwvelando/dcf-forecast/pkg/output"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is stamped in via -ldflags at release time.
var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "console"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to application configuration file")
	documentLocation := flag.String("document", constants.DefaultDocumentFile, "path to the projection document")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	serve := flag.Bool("serve", false, "serve the projection API over HTTP instead of printing a one-shot result")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	address := flag.String("address", "", "HTTP listen address override")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	if *serve {
		serverConf, err := server.LoadConfig(*serverConfigLocation)
		if err != nil {
			logger.Fatal("failed to load server configuration",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		addr := serverConf.Address
		if *address != "" {
			addr = *address
		}

		handler := server.NewHandler(logger, serverConf.UploadSizeBytes(), version)
		logger.Info("serving projection API",
			zap.String("op", "main"),
			zap.String("address", addr),
		)
		if err := http.ListenAndServe(addr, handler); err != nil {
			logger.Fatal("server stopped",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		return
	}

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if outputFormat != constants.OutputFormatPretty && outputFormat != constants.OutputFormatCSV {
		logger.Fatal(fmt.Sprintf("invalid output format %s; must be one of: pretty, csv", outputFormat),
			zap.String("op", "main"),
		)
	}

	doc, err := document.Load(*documentLocation)
	if err != nil {
		logger.Fatal(fmt.Sprintf("failed to load document at %s", *documentLocation),
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Display any warnings before computing
	for _, warning := range doc.Validate() {
		logger.Warn("Document warning: "+warning,
			zap.String("op", "main"),
		)
	}

	eng := engine.NewEngine(logger)
	_, result, err := eng.Project(doc)
	if err != nil {
		logger.Fatal("failed to compute projection",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(*result)
	case constants.OutputFormatCSV:
		output.CsvFormat(*result)
	}
}
