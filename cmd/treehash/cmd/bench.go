// Copyright 2026 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ethersphere/treehash"
	"github.com/ethersphere/treehash/pkg/backend/cpu"
	"github.com/ethersphere/treehash/pkg/columntree"
	"github.com/ethersphere/treehash/pkg/field"
	"github.com/ethersphere/treehash/pkg/logging"
	"github.com/ethersphere/treehash/pkg/metrics"
	"github.com/ethersphere/treehash/pkg/metrics/registry"
	"github.com/ethersphere/treehash/pkg/pool"
	"github.com/ethersphere/treehash/pkg/poseidon"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v2"
)

const (
	optionNameLeaves          = "leaves"
	optionNameColumnBatchSize = "column-batch-size"
	optionNameTreeBatchSize   = "tree-batch-size"
	optionNameRuns            = "runs"
	optionNamePrintMetrics    = "print-metrics"
	optionNameMetricsPushURL  = "metrics-push-url"
	optionNameReportFile      = "report-file"
)

type benchConfig struct {
	leaves          int
	columnBatchSize int
	treeBatchSize   int
	options         columntree.PooledOptions
}

type benchReport struct {
	Session  string `yaml:"session"`
	Version  string `yaml:"version"`
	Leaves   int    `yaml:"leaves"`
	TreeSize int    `yaml:"tree_size"`
	Strength string `yaml:"strength"`
	Contexts int    `yaml:"contexts"`
	// Kernels maps each arity to the hex fingerprint of its constants.
	Kernels map[int]string `yaml:"kernels"`
	Runs    []runReport    `yaml:"runs"`
}

type runReport struct {
	Run      int    `yaml:"run"`
	Root     string `yaml:"root"`
	Duration string `yaml:"duration"`
}

func (c *command) initBenchCmd() error {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Build trees over constant columns and verify their roots",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if len(args) > 0 {
				return cmd.Help()
			}

			v := strings.ToLower(c.config.GetString(optionNameVerbosity))
			logger, err := newLogger(cmd, v)
			if err != nil {
				return fmt.Errorf("new logger: %w", err)
			}

			strength, err := poseidon.ParseStrength(c.config.GetString(optionNameStrength))
			if err != nil {
				return err
			}

			p, err := pool.New(pool.Options{
				Devices:          c.config.GetInt(optionNameDevices),
				KernelsPerDevice: c.config.GetInt(optionNameKernelsPerDevice),
				Cap:              c.config.GetInt(optionNamePoolCap),
				Selector:         cpu.NewSelector(cpu.Options{Workers: c.config.GetInt(optionNameCPUWorkers)}),
				Logger:           logger,
			})
			if err != nil {
				return fmt.Errorf("pool: %w", err)
			}
			defer func() {
				if cerr := p.Close(); cerr != nil && err == nil {
					err = fmt.Errorf("close pool: %w", cerr)
				}
			}()

			bc := benchConfig{
				leaves:          c.config.GetInt(optionNameLeaves),
				columnBatchSize: c.config.GetInt(optionNameColumnBatchSize),
				treeBatchSize:   c.config.GetInt(optionNameTreeBatchSize),
			}
			bc.options = columntree.PooledOptions{
				Strength:        strength,
				ColumnBatchSize: bc.columnBatchSize,
				TreeBatchSize:   bc.treeBatchSize,
				Retries:         c.config.GetInt(optionNameHashRetries),
				Backoff:         c.config.GetDuration(optionNameRetryBackoff),
				Logger:          logger,
			}

			session := uuid.New().String()
			logger.Infof("bench session %s", session)

			reg := registry.New("cpu")
			reg.MustRegister(p.Metrics()...)
			reg.MustRegister(logger.Metrics()...)
			if url := c.config.GetString(optionNameMetricsPushURL); url != "" {
				stopPush := reg.PushWorker(context.Background(), url, "treehash_bench", session, time.Minute, logger)
				defer func() {
					if perr := stopPush(); perr != nil {
						logger.Warningf("push metrics: %v", perr)
					}
				}()
			}

			logger.Infof("leaves: %d", bc.leaves)
			logger.Infof("max column batch size: %d", bc.columnBatchSize)
			logger.Infof("max tree batch size: %d", bc.treeBatchSize)
			logger.Infof("contexts: %d, strength: %s", p.Size(), strength)

			runs := make([]runReport, c.config.GetInt(optionNameRuns))
			var g errgroup.Group
			for i := range runs {
				i := i
				g.Go(func() error {
					logger.Infof("--> run %d", i)
					start := time.Now()
					root, err := benchRun(i, p, bc, logger)
					if err != nil {
						return fmt.Errorf("run %d: %w", i, err)
					}
					runs[i] = runReport{
						Run:      i,
						Root:     field.Format(root),
						Duration: time.Since(start).String(),
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			for _, r := range runs {
				cmd.Printf("run %d root %s\n", r.Run, r.Root)
			}

			if path := c.config.GetString(optionNameReportFile); path != "" {
				size, err := columntree.TreeSize(bc.leaves)
				if err != nil {
					return err
				}
				report := benchReport{
					Session:  session,
					Version:  treehash.Version,
					Leaves:   bc.leaves,
					TreeSize: size,
					Strength: strength.String(),
					Contexts: p.Size(),
					Kernels:  make(map[int]string),
					Runs:     runs,
				}
				for _, arity := range []int{columntree.ColumnArity, columntree.TreeArity, columntree.TopArity} {
					k, err := poseidon.NewConstants(arity, strength)
					if err != nil {
						return err
					}
					fp := k.Fingerprint()
					report.Kernels[arity] = hex.EncodeToString(fp[:])
				}
				if err := c.writeReport(path, report); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
			}

			if c.config.GetBool(optionNamePrintMetrics) {
				if err := reg.SampleSystem(); err != nil {
					logger.Debugf("sample system: %v", err)
				}
				if err := metrics.WriteText(cmd.OutOrStdout(), reg.MetricsRegistry()); err != nil {
					return fmt.Errorf("write metrics: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().Int(optionNameLeaves, 1<<16, "number of columns of every tree")
	cmd.Flags().Int(optionNameColumnBatchSize, 400000, "max column batch size")
	cmd.Flags().Int(optionNameTreeBatchSize, 700000, "max tree batch size")
	cmd.Flags().Int(optionNameRuns, 2, "number of trees built in parallel")
	cmd.Flags().Bool(optionNamePrintMetrics, false, "print metrics after the runs")
	cmd.Flags().String(optionNameMetricsPushURL, "", "prometheus push gateway to send metrics to")
	cmd.Flags().String(optionNameReportFile, "", "write a yaml report of the runs to this file")
	c.setPoolFlags(cmd)

	if err := c.config.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	c.root.AddCommand(cmd)
	return nil
}

func (c *command) writeReport(path string, report benchReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return err
	}
	return afero.WriteFile(c.fs, path, data, 0o644)
}

// benchRun builds one tree over constant zero columns, checks its size and
// root, and returns the root.
func benchRun(i int, p *pool.Pool, bc benchConfig, logger logging.Logger) (field.Element, error) {
	logger.Infof("[%d] creating column tree builder", i)
	b, err := columntree.NewPooled(p, bc.leaves, bc.options)
	if err != nil {
		return field.Element{}, err
	}
	defer b.Close()

	batchSize := bc.leaves
	if bc.columnBatchSize > 0 && bc.columnBatchSize < batchSize {
		batchSize = bc.columnBatchSize
	}
	logger.Infof("[%d] using effective batch size %d to build columns", i, batchSize)

	var column columntree.Column
	columns := make([]columntree.Column, batchSize)

	logger.Infof("[%d] start commitment", i)
	start := time.Now()
	progress := rate.NewLimiter(rate.Every(time.Second), 1)
	var total int
	for total+batchSize < bc.leaves {
		if progress.Allow() {
			logger.Infof("[%d] %d%%", i, 100*total/bc.leaves)
		}
		if _, err := b.AddColumns(columns); err != nil {
			return field.Element{}, err
		}
		total += batchSize
	}

	logger.Infof("[%d] adding final column batch and building tree", i)
	_, tree, err := b.AddFinalColumns(columns[:bc.leaves-total])
	if err != nil {
		return field.Element{}, err
	}
	logger.Infof("[%d] commitment time: %s", i, time.Since(start))

	if len(tree) != b.TreeSize() {
		return field.Element{}, fmt.Errorf("got tree of %d nodes, want %d", len(tree), b.TreeSize())
	}
	root := tree[len(tree)-1]
	want, err := b.ComputeUniformTreeRoot(column)
	if err != nil {
		return field.Element{}, err
	}
	if !root.Equal(&want) {
		return field.Element{}, fmt.Errorf("computed root %s, want %s", field.Format(root), field.Format(want))
	}
	return root, nil
}
