package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/JaimeStill/tariff/workflow"
)

const (
	EnvWorkflowMaxRounds      = "TARIFF_WORKFLOW_MAX_ROUNDS"
	EnvWorkflowMaxStepsPerRun = "TARIFF_WORKFLOW_MAX_STEPS_PER_RUN"
	EnvWorkflowRunTimeout     = "TARIFF_WORKFLOW_RUN_TIMEOUT"
)

// WorkflowConfig bounds how far a classification conversation may run.
type WorkflowConfig struct {
	MaxRounds      int    `toml:"max_rounds"`
	MaxStepsPerRun int    `toml:"max_steps_per_run"`
	RunTimeout     string `toml:"run_timeout"`
}

// RunTimeoutDuration returns RunTimeout as a time.Duration.
func (c *WorkflowConfig) RunTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RunTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *WorkflowConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *WorkflowConfig) Merge(overlay *WorkflowConfig) {
	if overlay.MaxRounds != 0 {
		c.MaxRounds = overlay.MaxRounds
	}
	if overlay.MaxStepsPerRun != 0 {
		c.MaxStepsPerRun = overlay.MaxStepsPerRun
	}
	if overlay.RunTimeout != "" {
		c.RunTimeout = overlay.RunTimeout
	}
}

func (c *WorkflowConfig) loadDefaults() {
	if c.MaxRounds == 0 {
		c.MaxRounds = workflow.DefaultMaxRounds
	}
	if c.MaxStepsPerRun == 0 {
		c.MaxStepsPerRun = c.MaxRounds
	}
	if c.RunTimeout == "" {
		c.RunTimeout = "15m"
	}
}

func (c *WorkflowConfig) loadEnv() {
	if v := os.Getenv(EnvWorkflowMaxRounds); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRounds = n
		}
	}
	if v := os.Getenv(EnvWorkflowMaxStepsPerRun); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxStepsPerRun = n
		}
	}
	if v := os.Getenv(EnvWorkflowRunTimeout); v != "" {
		c.RunTimeout = v
	}
}

func (c *WorkflowConfig) validate() error {
	if c.MaxRounds < 1 {
		return fmt.Errorf("max_rounds must be positive")
	}
	if c.MaxStepsPerRun < 1 {
		return fmt.Errorf("max_steps_per_run must be positive")
	}
	if _, err := time.ParseDuration(c.RunTimeout); err != nil {
		return fmt.Errorf("invalid run_timeout: %w", err)
	}
	return nil
}
