package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/dupcluster/internal/config"
	"github.com/Sumatoshi-tech/dupcluster/internal/report"
	"github.com/Sumatoshi-tech/dupcluster/pkg/cluster"
)

// NewClusterCommand builds the "cluster" subcommand: read JSON-Lines
// records from stdin or a file, cluster them, and print the resulting
// partition.
func NewClusterCommand() *cobra.Command {
	var (
		inputPath  string
		configPath string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Cluster near-duplicate text records",
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

			opts := []cluster.Option[string]{cluster.WithLogger[string](logger)}

			if reg := maybeServeMetrics(cfg.Metrics, logger); reg != nil {
				opts = append(opts, cluster.WithMetrics[string](cluster.NewMetrics(reg)))
			}

			c, err := cluster.New[string](clusterCfg, opts...)
			if err != nil {
				return fmt.Errorf("building clusterer: %w", err)
			}

			for _, rec := range records {
				if addErr := c.AddItem(rec.Text, rec.Label); addErr != nil {
					return fmt.Errorf("adding record %q: %w", rec.Label, addErr)
				}
			}

			clusters := c.GetClusters()
			cacheStats := c.SignatureCacheStats()

			logger.Debug("cluster: run complete",
				"clusters", len(clusters),
				"mean_cluster_size", c.MeanClusterSize(),
				"estimated_vocabulary_size", c.EstimatedVocabularySize(),
				"signature_cache_hit_rate", cacheStats.HitRate(),
				"signature_cache_entries", cacheStats.Entries,
			)

			result := report.FromClusters(clusters)

			return report.Render(os.Stdout, result, format)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input file (default: stdin)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file path")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json, yaml")

	return cmd
}
