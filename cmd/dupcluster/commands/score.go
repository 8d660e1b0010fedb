package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/dupcluster/internal/config"
	"github.com/Sumatoshi-tech/dupcluster/internal/report"
	"github.com/Sumatoshi-tech/dupcluster/pkg/cluster"
)

// NewScoreCommand builds the "score" subcommand: cluster JSON-Lines
// records carrying a ground-truth "positive" flag, then report both the
// partition and its Area-Under-Lift quality score.
func NewScoreCommand() *cobra.Command {
	var (
		inputPath  string
		configPath string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Cluster records and score the partition against ground truth",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			logger := cfg.Logging.NewLogger()

			input := os.Stdin
			if inputPath != "" {
				f, openErr := os.Open(inputPath)
				if openErr != nil {
					return fmt.Errorf("opening input: %w", openErr)
				}
				defer f.Close()

				input = f
			}

			clusterCfg := cfg.Clustering.ToClusterConfig()

			records, err := ReadRecords(input, clusterCfg.HashFamily, clusterCfg.HashSeed)
			if err != nil {
				return fmt.Errorf("reading records: %w", err)
			}

			positives := make(map[string]bool, len(records))

			opts := []cluster.Option[string]{cluster.WithLogger[string](logger)}

			if reg := maybeServeMetrics(cfg.Metrics, logger); reg != nil {
				opts = append(opts, cluster.WithMetrics[string](cluster.NewMetrics(reg)))
			}

			c, err := cluster.New[string](clusterCfg, opts...)
			if err != nil {
				return fmt.Errorf("building clusterer: %w", err)
			}

			for _, rec := range records {
				positives[rec.Label] = rec.Positive

				if addErr := c.AddItem(rec.Text, rec.Label); addErr != nil {
					return fmt.Errorf("adding record %q: %w", rec.Label, addErr)
				}
			}

			scoreResult, err := c.AULScore(func(label string) bool { return positives[label] })
			if err != nil {
				return fmt.Errorf("scoring: %w", err)
			}

			result := report.FromClusters(c.GetClusters())
			aul := scoreResult.AUL
			result.AUL = &aul

			if scoreResult.Warning != nil {
				result.Warning = scoreResult.Warning.Error()
			}

			return report.Render(os.Stdout, result, format)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input file (default: stdin)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file path")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json, yaml")

	return cmd
}
