package ml

import (
	"fmt"
	"math"
	"math/rand"
)

// shuffleSplit mirrors a seeded single shuffle split: the first
// ceil(testSize*n) permuted indexes are the test part, the rest train
func shuffleSplit(indexes []int, testSize float64, seed int64) (train, test []int) {
	n := len(indexes)
	// the epsilon keeps float noise like 0.1/0.8*80 from rounding up
	nTest := int(math.Ceil(testSize*float64(n) - 1e-9))
	if nTest > n {
		nTest = n
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	for i, p := range perm {
		if i < nTest {
			test = append(test, indexes[p])
		} else {
			train = append(train, indexes[p])
		}
	}
	return train, test
}

// TrainValTestSplit partitions n row indexes in two seeded stages: test
// first, then validation out of the remainder so that valSize is a
// fraction of the whole
func TrainValTestSplit(n int, testSize, valSize float64, seed int64) (train, val, test []int, err error) {
	if n < 3 {
		return nil, nil, nil, fmt.Errorf("need at least 3 rows to split, got %d", n)
	}
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}

	trainVal, test := shuffleSplit(all, testSize, seed)
	valFraction := valSize / (1 - testSize)
	train, val = shuffleSplit(trainVal, valFraction, seed)
	if len(train) == 0 {
		return nil, nil, nil, fmt.Errorf("split of %d rows left no training rows", n)
	}
	return train, val, test, nil
}

func Take(rows [][]float64, indexes []int) [][]float64 {
	out := make([][]float64, len(indexes))
	for i, idx := range indexes {
		out[i] = rows[idx]
	}
	return out
}
