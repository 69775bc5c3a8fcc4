// Package config holds process-wide tunables. Each can be overridden by a
// HALO_CONFIG_* environment variable, read once at start-up.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const UseUnixSock = true

const (
	EnableMonitoringEnvKey     = `HALO_CONFIG_ENABLE_MONITORING`
	EnableStallDetectionEnvKey = `HALO_CONFIG_ENABLE_STALL_DETECTION`
	LogLevelEnvKey             = `HALO_CONFIG_LOG_LEVEL`
	MonitoringPeriodEnvKey     = `HALO_CONFIG_MONITORING_PERIOD`
	WaitTimeoutEnvKey          = `HALO_CONFIG_WAIT_TIMEOUT`
	ConnRetryCountEnvKey       = `HALO_CONFIG_CONN_RETRY`
)

var (
	EnableMonitoring     = false
	EnableStallDetection = false
	LogLevel             = `INFO`
	MonitoringPeriod     = 1 * time.Second
	StallReportPeriod    = 3 * time.Second

	// WaitTimeout bounds every blocking wait of the iteration loop, 0 means wait forever.
	WaitTimeout time.Duration

	ConnRetryCount  = 500
	ConnRetryPeriod = 200 * time.Millisecond
	WaitPeerTimeout = 2 * time.Minute
)

type override struct {
	key   string
	apply func(string) error
}

func boolVar(p *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		*p = b
		return err
	}
}

func durationVar(p *time.Duration) func(string) error {
	return func(v string) (err error) {
		*p, err = time.ParseDuration(v)
		return err
	}
}

var overrides = []override{
	{EnableMonitoringEnvKey, boolVar(&EnableMonitoring)},
	{EnableStallDetectionEnvKey, boolVar(&EnableStallDetection)},
	{LogLevelEnvKey, func(v string) error { LogLevel = strings.ToUpper(v); return nil }},
	{MonitoringPeriodEnvKey, durationVar(&MonitoringPeriod)},
	{WaitTimeoutEnvKey, durationVar(&WaitTimeout)},
	{ConnRetryCountEnvKey, func(v string) (err error) {
		ConnRetryCount, err = strconv.Atoi(v)
		return err
	}},
}

// ConfigEnvKeys are forwarded by halo-run to every worker it launches.
var ConfigEnvKeys = func() []string {
	keys := make([]string, len(overrides))
	for i, o := range overrides {
		keys[i] = o.key
	}
	return keys
}()

// Load applies every override that lookup finds.
func Load(lookup func(string) (string, bool)) error {
	for _, o := range overrides {
		v, ok := lookup(o.key)
		if !ok || v == "" {
			continue
		}
		if err := o.apply(v); err != nil {
			return fmt.Errorf("%s=%q: %w", o.key, v, err)
		}
	}
	return nil
}

func init() {
	if err := Load(os.LookupEnv); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(2)
	}
}
