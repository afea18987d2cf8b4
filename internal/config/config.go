package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/catalog"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all settings of the dataset build, populated from environment
// variables.
type Config struct {
	DataDir        string
	SourceEncoding string

	StepsPerDay        int
	SelectedFeatures   []int
	Normalize          bool
	TrainSplitFraction float64

	// SampleSeed makes class balancing reproducible when set.
	SampleSeed    uint64
	HasSampleSeed bool

	KafkaBrokers         []string
	KafkaSinkTopic       string
	PublishBatchSize     int
	PublishFlushInterval time.Duration

	HTTPAddr        string
	ExitAfterBuild  bool
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// KafkaEnabled reports whether balanced samples should be published.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	steps, err := parseIntRange("STEPS_PER_DAY", "144", 1, 24*60*60)
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	selected, err := catalog.ParseSelection(sharedcfg.EnvOrDefault("SELECTED_FEATURES", "0,1,5,7,8,10,11,14,15,16,20"))
	if err != nil {
		return nil, fmt.Errorf("invalid SELECTED_FEATURES: %w", err)
	}
	if err := catalog.Default.Validate(selected); err != nil {
		return nil, fmt.Errorf("invalid SELECTED_FEATURES: %w", err)
	}

	split, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("TRAIN_SPLIT_FRACTION", "0.715"), 64)
	if err != nil || math.IsNaN(split) || split <= 0 || split > 1 {
		return nil, errors.New("invalid TRAIN_SPLIT_FRACTION: must be in (0, 1]")
	}

	normalize, err := parseBool("NORMALIZE", false)
	if err != nil {
		return nil, err
	}

	exitAfterBuild, err := parseBool("EXIT_AFTER_BUILD", true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:              sharedcfg.EnvOrDefault("DATA_DIR", "data"),
		SourceEncoding:       strings.ToLower(sharedcfg.EnvOrDefault("SOURCE_ENCODING", "iso-8859-1")),
		StepsPerDay:          steps,
		SelectedFeatures:     selected,
		Normalize:            normalize,
		TrainSplitFraction:   split,
		KafkaBrokers:         sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaSinkTopic:       sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "rain-day-samples"),
		PublishBatchSize:     batchSize,
		PublishFlushInterval: flushInterval,
		HTTPAddr:             os.Getenv("HTTP_ADDR"),
		ExitAfterBuild:       exitAfterBuild,
		LogLevel:             sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:      shutdownTimeout,
	}
	if _, ok := os.LookupEnv("HTTP_ADDR"); !ok {
		cfg.HTTPAddr = ":8080"
	}

	if s := os.Getenv("SAMPLE_SEED"); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, errors.New("invalid SAMPLE_SEED: must be an unsigned integer")
		}
		cfg.SampleSeed = seed
		cfg.HasSampleSeed = true
	}

	switch cfg.SourceEncoding {
	case "iso-8859-1", "latin1", "utf-8", "utf8":
	default:
		return nil, fmt.Errorf("invalid SOURCE_ENCODING %q: want iso-8859-1 or utf-8", cfg.SourceEncoding)
	}
	if !cfg.ExitAfterBuild && cfg.HTTPAddr == "" {
		return nil, errors.New("EXIT_AFTER_BUILD=false requires HTTP_ADDR")
	}

	return cfg, nil
}

// parseIntRange reads an integer variable and checks it lies in [lo, hi].
func parseIntRange(key, fallback string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be an integer in [%d, %d]", key, lo, hi)
	}
	return n, nil
}

func parseBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q is not a boolean", key, v)
	}
	return b, nil
}
