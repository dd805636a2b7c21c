package core

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/huangsam/churnlab/schema"
)

// Split partitions a dataset into stratified train/test sets. Within each
// label class, fraction of the records (rounded) go to train and the rest
// to test, so class proportions in both partitions stay within tolerance
// of the source. The shuffle is driven entirely by the explicit seed.
func Split(d *schema.EncodedDataset, fraction float64, seed int64) (schema.Partition, error) {
	if fraction <= 0 || fraction >= 1 {
		return schema.Partition{}, fmt.Errorf("split fraction must be in (0,1), got %g", fraction)
	}

	byClass := [2][]int{}
	for i, r := range d.Records {
		label := clampLabel(r.Label)
		byClass[label] = append(byClass[label], i)
	}

	rnd := rand.New(rand.NewSource(seed))

	var trainIdx, testIdx []int
	for _, indices := range byClass {
		if len(indices) == 0 {
			continue
		}
		shuffled := append([]int(nil), indices...)
		rnd.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		nTrain := int(math.Round(fraction * float64(len(shuffled))))
		trainIdx = append(trainIdx, shuffled[:nTrain]...)
		testIdx = append(testIdx, shuffled[nTrain:]...)
	}

	return schema.Partition{
		Train: d.WithRecords(recordsAt(d, trainIdx)),
		Test:  d.WithRecords(recordsAt(d, testIdx)),
	}, nil
}

func recordsAt(d *schema.EncodedDataset, indices []int) []schema.EncodedRecord {
	out := make([]schema.EncodedRecord, 0, len(indices))
	for _, i := range indices {
		out = append(out, d.Records[i])
	}
	return out
}
