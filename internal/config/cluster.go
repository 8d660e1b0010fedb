package config

import (
	"github.com/Sumatoshi-tech/dupcluster/pkg/alg/hashkit"
	"github.com/Sumatoshi-tech/dupcluster/pkg/cluster"
)

// ToClusterConfig translates ClusteringConfig into a pkg/cluster.Config.
// Validate should be called first; ToClusterConfig does not repeat family
// validation and defaults to hashkit.FamilyFNVSplitmix for any value other
// than "xxhash".
func (c ClusteringConfig) ToClusterConfig() cluster.Config {
	family := hashkit.FamilyFNVSplitmix
	if c.HashFamily == "xxhash" {
		family = hashkit.FamilyXXHash
	}

	return cluster.Config{
		Width:       c.Width,
		Threshold:   c.Threshold,
		ShingleSpan: c.ShingleSpan,
		HashSeed:    c.HashSeed,
		HashFamily:  family,
	}
}
