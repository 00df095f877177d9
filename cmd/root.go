// cmd/root.go
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fogsim/offload-sim/sim"
	"github.com/fogsim/offload-sim/sim/policy"
	"github.com/fogsim/offload-sim/sim/report"
)

// runtimeError marks an error encountered after a simulation was
// successfully constructed (determinism-check mismatch, report I/O) as
// opposed to a configuration error, so Execute can distinguish spec.md
// §6's exit code 1 (invalid configuration) from exit code 2 (runtime
// error).
type runtimeError struct {
	err error
}

func (e *runtimeError) Error() string { return e.err.Error() }
func (e *runtimeError) Unwrap() error { return e.err }

func asRuntimeError(err error) error {
	if err == nil {
		return nil
	}
	return &runtimeError{err: err}
}

var (
	numFog           int
	numIoT           int
	numCells         int
	ticks            int64
	seed             int64
	pGen             float64
	refreshTicks     int
	policyFlag       string
	logLevel         string
	csvPath          string
	policyConfigPath string
	verifyDeterminism bool
)

var rootCmd = &cobra.Command{
	Use:   "offload-sim",
	Short: "Discrete-step simulator for fog/IoT task offloading policies",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a fog-offloading simulation",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		logrus.SetLevel(level)

		names, err := resolvePolicyNames()
		if err != nil {
			return err
		}

		cfg := sim.Config{
			NumFog:       numFog,
			NumIoT:       numIoT,
			Cells:        numCells,
			Ticks:        ticks,
			Seed:         seed,
			PGen:         pGen,
			RefreshTicks: refreshTicks,
		}
		if policyConfigPath != "" {
			bundle, err := policy.LoadBundle(policyConfigPath)
			if err != nil {
				return fmt.Errorf("loading policy config: %w", err)
			}
			if err := bundle.Validate(); err != nil {
				return fmt.Errorf("invalid policy config: %w", err)
			}
			cfg.RefreshTicks = bundle.RefreshTicks
			cfg.Seed = bundle.Seed
			if len(names) == 0 || !cmd.Flags().Changed("policy") {
				names = []policy.Name{policy.Name(bundle.Policy)}
			}
		}

		logrus.Infof("Starting simulation: fog=%d iot=%d cells=%d ticks=%d seed=%d p_gen=%.2f",
			cfg.NumFog, cfg.NumIoT, cfg.Cells, cfg.Ticks, cfg.Seed, cfg.PGen)

		summaries := make([]sim.Summary, 0, len(names))
		for _, name := range names {
			cfg.PolicyName = name
			summary, err := runOnce(cfg)
			if err != nil {
				return err
			}
			summaries = append(summaries, summary)
			if verifyDeterminism {
				repeat, err := runOnce(cfg)
				if err != nil {
					return err
				}
				if repeat != summary {
					return asRuntimeError(fmt.Errorf("determinism check failed for policy %q: repeat run diverged", name))
				}
				logrus.Infof("determinism verified for policy %q", name)
			}
		}

		if csvPath != "" {
			f, err := os.Create(csvPath)
			if err != nil {
				return asRuntimeError(fmt.Errorf("creating csv output: %w", err))
			}
			defer f.Close()
			if err := report.WriteCSV(f, summaries); err != nil {
				return asRuntimeError(err)
			}
			logrus.Infof("wrote report to %s", csvPath)
		} else if err := report.WriteCSV(os.Stdout, summaries); err != nil {
			return asRuntimeError(err)
		}

		logrus.Info("Simulation complete.")
		return nil
	},
}

func resolvePolicyNames() ([]policy.Name, error) {
	if policyFlag == "all" {
		return []policy.Name{policy.NameStatic, policy.NameDynamic, policy.NameHybrid}, nil
	}
	if policyFlag == "" {
		return nil, nil
	}
	if !policy.IsValidName(policyFlag) {
		return nil, fmt.Errorf("unknown policy %q (want static, dynamic, hybrid, or all)", policyFlag)
	}
	return []policy.Name{policy.Name(policyFlag)}, nil
}

func runOnce(cfg sim.Config) (sim.Summary, error) {
	s, err := sim.NewSimulation(cfg)
	if err != nil {
		return sim.Summary{}, fmt.Errorf("building simulation: %w", err)
	}
	s.Run()
	return s.Report(fmt.Sprintf("fog=%d,iot=%d,cells=%d,ticks=%d,seed=%d", cfg.NumFog, cfg.NumIoT, cfg.Cells, cfg.Ticks, cfg.Seed)), nil
}

// Execute runs the root command, exiting 1 on a configuration error
// (flag parsing, policy bundle, simulation construction) and 2 on a
// runtime error encountered after a simulation was built (determinism
// mismatch, report I/O), per spec.md §6's exit code contract.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		var rerr *runtimeError
		if errors.As(err, &rerr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().IntVar(&numFog, "fog", 12, "Number of fog devices")
	runCmd.Flags().IntVar(&numIoT, "iot", 30, "Number of IoT devices")
	runCmd.Flags().IntVar(&numCells, "cells", 3, "Number of spatial cells (k-means clusters)")
	runCmd.Flags().Int64Var(&ticks, "ticks", 200, "Number of discrete simulation ticks")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Master RNG seed")
	runCmd.Flags().Float64Var(&pGen, "p-gen", 0.2, "Per-tick, per-IoT-device task generation probability")
	runCmd.Flags().IntVar(&refreshTicks, "refresh-ticks", 10, "Ticks between controller policy refreshes")
	runCmd.Flags().StringVar(&policyFlag, "policy", "hybrid", "Offloading policy: static, dynamic, hybrid, or all")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&csvPath, "csv", "", "Write the CSV report to this path instead of stdout")
	runCmd.Flags().StringVar(&policyConfigPath, "policy-config", "", "YAML policy bundle path (overrides --policy defaults)")
	runCmd.Flags().BoolVar(&verifyDeterminism, "verify-determinism", false, "Run each policy twice and fail if results diverge")

	rootCmd.AddCommand(runCmd)
}
