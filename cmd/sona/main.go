package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sona/internal/object"
	"sona/internal/typespec"
	"sona/internal/util"
)

var (
	// Version is stamped at build time.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// logging
	logLevel string
	logFile  string
	// checker config
	specText  string
	valueJSON string
	typeCheck string
	projDir   string
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	// checker config
	flag.StringVar(&specText, "spec", "", "Type annotation to validate against")
	flag.StringVar(&valueJSON, "value", "", "Value to validate, encoded as JSON")
	flag.StringVar(&typeCheck, "type-check", "", "Enforcement mode: off, warn, on (overrides project file and environment)")
	flag.StringVar(&projDir, "dir", ".", "Project directory searched for sona.toml / sona.yaml")
	// log config
	flag.StringVar(&logLevel, "log-level", "error", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	flag.Parse()

	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(logLevel),
	}
	logWriter := configureLogWriter()
	defaultLogger := slog.New(slog.NewJSONHandler(logWriter, loggerOptions))
	slog.SetDefault(defaultLogger)

	if version {
		printVersion()
		return
	}

	if help {
		printHelp()
		return
	}

	os.Exit(run())
}

// run resolves configuration, builds an engine and validates the given
// value against the given annotation. Exit status: 0 on success or in
// WARN mode, 1 on usage or configuration failure, 2 on an aborting
// contract violation in ON mode.
func run() int {
	if specText == "" || valueJSON == "" {
		fmt.Fprintln(os.Stderr, "both -spec and -value are required; see -help")
		return 1
	}

	config, err := util.Load(projDir, typeCheck)
	if err != nil {
		slog.Error("configuration load failed", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}

	engine := typespec.New()
	mode := typespec.ParseMode(config.TypeCheck)
	if mode == typespec.ModeOff {
		// A bare check invocation always validates; OFF would make the
		// tool a no-op.
		mode = typespec.ModeOn
	}
	engine.SetMode(mode)
	for name, target := range config.Aliases {
		engine.RegisterAlias(name, target)
	}

	value, err := object.FromJSON([]byte(valueJSON))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -value JSON: %v\n", err)
		return 1
	}

	_, checkErr := engine.CheckParameter("check", "value", value, specText)
	for _, warning := range engine.Warnings() {
		fmt.Fprintln(os.Stderr, warning.String())
	}
	if checkErr != nil {
		fmt.Fprintln(os.Stderr, checkErr.Inspect())
		return 2
	}

	fmt.Printf("%s matches %s\n", object.TypeName(value), specText)
	return 0
}

func configureLogWriter() *os.File {
	var logWriter *os.File
	var err error
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
			return os.Stderr
		}
		logWriter, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
			logWriter = os.Stderr
		}
	} else {
		logWriter = os.Stderr
	}
	return logWriter
}

func printVersion() {
	fmt.Printf("sona version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: sona [options]

Options:
  -spec <annotation>   Type annotation to validate against, e.g. 'List[int]'.
  -value <json>        Value to validate, encoded as JSON.
  -type-check <mode>   Enforcement mode: off, warn, on. Overrides sona.toml and SONA_TYPE_CHECK.
  -dir <path>          Project directory searched for sona.toml / sona.yaml. Default is '.'
  -help                Display this help information and exit.
  -version             Display version information and exit.
  -log-level <level>   Set the log level: debug, info, warn, error. Default is 'error'.
  -log-file <path>     Specify a log file to write logs. Default is stderr.

Details:
This is the Sona runtime's annotation checker. It resolves the
enforcement mode the same way the interpreter does (flag, then
SONA_TYPE_CHECK, then the project file) and validates one value
against one annotation.

Examples:
  sona -spec 'int|str' -value '42'
  sona -spec 'List[int]' -value '[1, 2, "three"]'
  sona -type-check=warn -spec 'Dict[str, int]' -value '{"a": 1}'

Exit status:
  0  value matches, or mismatches reported as warnings
  2  aborting contract violation

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
