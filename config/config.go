// Package config binds command line flags, GLSTRESS_ environment variables and
// an optional config file into a Config.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stewi1014/glstress/programs"
	"github.com/stewi1014/glstress/stress"
)

const EnvPrefix = "GLSTRESS"

const (
	KeyCPUWorkers     = "cpu-workers"
	KeyMemory         = "memory"
	KeyIterations     = "iterations"
	KeyDuration       = "duration"
	KeyVSync          = "vsync"
	KeyKeepOpen       = "keep-open"
	KeyReportInterval = "report-interval"
	KeyMetricsAddr    = "metrics-addr"
	KeyNoDialog       = "no-dialog"
	KeyDebug          = "debug"
)

type Config struct {
	CPUWorkers     int
	Memory         uint64
	Iterations     int32
	Duration       time.Duration
	VSync          bool
	KeepOpen       bool
	ReportInterval time.Duration
	MetricsAddr    string
	NoDialog       bool
	Debug          bool
}

func (c Config) StressOptions() stress.Options {
	return stress.Options{
		CPUWorkers: c.CPUWorkers,
		MemorySize: c.Memory,
	}
}

// AddFlags registers every setting on flags with its default.
func AddFlags(flags *pflag.FlagSet) {
	flags.Int(KeyCPUWorkers, 0, "CPU stress workers, 0 for one per logical core")
	flags.String(KeyMemory, humanize.IBytes(stress.DefaultMemorySize), "size of the memory stress buffer")
	flags.Int32(KeyIterations, programs.DefaultIterations, "fractal iterations per pixel")
	flags.Duration(KeyDuration, 0, "stop stressing after this long, 0 to wait for 'q'")
	flags.Bool(KeyVSync, false, "sync frames to the display refresh rate")
	flags.Bool(KeyKeepOpen, false, "return to idle instead of exiting when stressing stops")
	flags.Duration(KeyReportInterval, 5*time.Second, "interval between load reports, 0 to disable")
	flags.String(KeyMetricsAddr, "", "serve prometheus metrics on this address")
	flags.Bool(KeyNoDialog, false, "don't show a dialog on fatal errors")
	flags.Bool(KeyDebug, false, "debug logging and OpenGL debug output")
}

// New returns a viper instance bound to flags and the environment.
// If file is not empty it is read as a config file.
func New(flags *pflag.FlagSet, file string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("binding flags failed: %w", err)
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %v failed: %w", file, err)
		}
	}

	return v, nil
}

// Load reads and validates a Config.
func Load(v *viper.Viper) (Config, error) {
	c := Config{
		CPUWorkers:     v.GetInt(KeyCPUWorkers),
		Iterations:     v.GetInt32(KeyIterations),
		Duration:       v.GetDuration(KeyDuration),
		VSync:          v.GetBool(KeyVSync),
		KeepOpen:       v.GetBool(KeyKeepOpen),
		ReportInterval: v.GetDuration(KeyReportInterval),
		MetricsAddr:    v.GetString(KeyMetricsAddr),
		NoDialog:       v.GetBool(KeyNoDialog),
		Debug:          v.GetBool(KeyDebug),
	}

	var err error
	c.Memory, err = humanize.ParseBytes(v.GetString(KeyMemory))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %v: %w", KeyMemory, err)
	}

	return c, c.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.CPUWorkers < 0:
		return fmt.Errorf("%v must not be negative, got %v", KeyCPUWorkers, c.CPUWorkers)
	case c.Memory < stress.MinMemorySize:
		return fmt.Errorf("%v must be at least %v, got %v",
			KeyMemory, humanize.IBytes(stress.MinMemorySize), humanize.IBytes(c.Memory))
	case c.Iterations < 1:
		return fmt.Errorf("%v must be at least 1, got %v", KeyIterations, c.Iterations)
	case c.Duration < 0:
		return fmt.Errorf("%v must not be negative, got %v", KeyDuration, c.Duration)
	case c.ReportInterval < 0:
		return fmt.Errorf("%v must not be negative, got %v", KeyReportInterval, c.ReportInterval)
	}
	return nil
}
