// Package similarity finds near-duplicate trade records and retrieves
// similar historical cases.
//
// Duplicate detection clusters records inside a partition (normally an
// account) over a small numeric feature vector; case retrieval ranks a text
// corpus against a query by TF-IDF cosine similarity. Both are stateless
// per call apart from the retriever's prebuilt corpus index.
package similarity

import (
	"hash/fnv"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"report-reconciliation-engine/internal/models"
	"report-reconciliation-engine/pkg/logger"
)

// Clustering parameters in standardized feature space. eps of half a
// standard deviation with a pair minimum flags only records that are nearly
// identical across all features.
const (
	duplicateEps       = 0.5
	duplicateMinPoints = 2
	securityHashBucket = 10000
)

// TradeRecord is one settlement instruction considered for duplicate
// detection.
type TradeRecord struct {
	ID             string
	Account        string
	Security       string
	Amount         decimal.Decimal
	SettlementDate time.Time
}

// GroupKey selects the partition a record belongs to. Records are only ever
// compared within one partition.
type GroupKey func(TradeRecord) string

// ByAccount partitions records by their account identifier.
func ByAccount(r TradeRecord) string {
	return r.Account
}

// DuplicateDetector clusters trade records into suspected duplicate groups.
type DuplicateDetector struct {
	log logger.Logger
}

// NewDuplicateDetector creates a detector. A nil logger falls back to the
// global logger.
func NewDuplicateDetector(log logger.Logger) *DuplicateDetector {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &DuplicateDetector{log: log.WithComponent("duplicates")}
}

// Detect partitions the records by key and clusters each partition of two
// or more records over [amount, settlement-date ordinal, security hash],
// standardized per partition. Every non-noise cluster of at least two
// records is reported; singleton partitions are skipped outright, so a
// lone record can never be flagged.
func (d *DuplicateDetector) Detect(records []TradeRecord, key GroupKey) []models.DuplicateGroup {
	if key == nil {
		key = ByAccount
	}

	partitions := make(map[string][]int)
	for i, record := range records {
		k := key(record)
		partitions[k] = append(partitions[k], i)
	}

	keys := make([]string, 0, len(partitions))
	for k := range partitions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var groups []models.DuplicateGroup
	for _, k := range keys {
		indices := partitions[k]
		if len(indices) < 2 {
			continue
		}

		features := make([][]float64, len(indices))
		for i, idx := range indices {
			features[i] = featureVector(records[idx])
		}

		labels := dbscan(standardize(features), duplicateEps, duplicateMinPoints)

		byCluster := make(map[int][]int)
		for i, label := range labels {
			if label == noiseLabel {
				continue
			}
			byCluster[label] = append(byCluster[label], indices[i])
		}

		clusterIDs := make([]int, 0, len(byCluster))
		for id := range byCluster {
			clusterIDs = append(clusterIDs, id)
		}
		sort.Ints(clusterIDs)

		for _, id := range clusterIDs {
			members := byCluster[id]
			if len(members) < 2 {
				continue
			}
			groups = append(groups, models.DuplicateGroup{
				PartitionKey:  k,
				MemberIndices: members,
				Size:          len(members),
			})
			d.log.WithFields(logger.Fields{
				"partition": k,
				"size":      len(members),
			}).Info("suspected duplicate group")
		}
	}
	return groups
}

// featureVector maps a record to [amount, date ordinal, security hash].
// The hash bucket keeps the security dimension numeric without an encoder
// table; collisions only ever cause extra candidates, which clustering on
// the other features then separates.
func featureVector(r TradeRecord) []float64 {
	amount, _ := r.Amount.Float64()

	var dateOrdinal float64
	if !r.SettlementDate.IsZero() {
		dateOrdinal = float64(r.SettlementDate.Unix() / (24 * 60 * 60))
	}

	h := fnv.New32a()
	h.Write([]byte(r.Security))
	securityHash := float64(h.Sum32() % securityHashBucket)

	return []float64{amount, dateOrdinal, securityHash}
}
