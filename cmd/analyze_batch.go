package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/csvlens/internal/analysis"
	"github.com/KaramelBytes/csvlens/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	abOutputDir  string
	abFormat     string
	abSampleRows int
	abCorr       bool
	abWorkers    int
	abQuiet      bool
)

type batchResult struct {
	path string
	out  string
	err  error
}

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple CSV files concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := utils.ExpandInputs(args)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}

		c := settings()
		opt := analysis.DefaultOptions()
		opt.SampleRows = c.SampleRows
		if cmd.Flags().Changed("sample-rows") {
			opt.SampleRows = abSampleRows
		}
		opt.Correlations = abCorr
		format := c.ReportFormat
		if abFormat != "" {
			format = abFormat
		}
		workers := c.BatchWorkers
		if abWorkers > 0 {
			workers = abWorkers
		}
		if workers < 1 {
			workers = 1
		}

		dests := batchDestinations(files, abOutputDir, reportExt(format))
		results := make([]batchResult, len(files))
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(workers)
		for i, path := range files {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				r := batchResult{path: path}
				rep, err := analyzeFile(path, opt)
				if err == nil {
					r.out, err = renderReport(rep, format)
				}
				if err == nil && dests != nil {
					if err = utils.SafeWriteFile(dests[i], []byte(r.out)); err == nil {
						r.out = dests[i]
					}
				}
				r.err = err
				results[i] = r
				logger.Debug("analyzed file", zap.String("path", path), zap.Error(err))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		failed := 0
		for i, r := range results {
			if r.err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %v\n", r.err)
				continue
			}
			switch {
			case abOutputDir != "":
				if !abQuiet {
					fmt.Fprintf(out, "✓ [%d/%d] Wrote %s\n", i+1, len(results), r.out)
				}
			case !abQuiet:
				fmt.Fprintf(out, "[%d/%d] %s\n%s\n", i+1, len(results), filepath.Base(r.path), r.out)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(results))
		}
		return nil
	},
}

// batchDestinations names one summary file per input. Inputs sharing a base
// name get a numeric suffix so nothing is overwritten.
func batchDestinations(files []string, dir, ext string) []string {
	if dir == "" {
		return nil
	}
	dests := make([]string, len(files))
	used := map[string]int{}
	for i, path := range files {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		used[base]++
		if n := used[base]; n > 1 {
			base = fmt.Sprintf("%s__%d", base, n)
		}
		dests[i] = filepath.Join(dir, base+".summary"+ext)
	}
	return dests
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVarP(&abOutputDir, "output-dir", "o", "", "write one summary per file into this directory")
	analyzeBatchCmd.Flags().StringVarP(&abFormat, "format", "f", "", "output format: markdown|json|yaml (default from config)")
	analyzeBatchCmd.Flags().IntVar(&abSampleRows, "sample-rows", 5, "number of sample rows to include (default from config)")
	analyzeBatchCmd.Flags().BoolVar(&abCorr, "correlations", false, "compute Pearson correlations among numeric columns")
	analyzeBatchCmd.Flags().IntVarP(&abWorkers, "workers", "w", 0, "number of files analyzed in parallel (default from config)")
	analyzeBatchCmd.Flags().BoolVarP(&abQuiet, "quiet", "q", false, "suppress per-file output")
}
