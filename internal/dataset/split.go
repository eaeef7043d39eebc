package dataset

import "math/rand"

// View is a read-only index indirection over a shared Dataset.
type View struct {
	data    *Dataset
	indices []int
}

func (v *View) Len() int { return len(v.indices) }

// At returns the sample at view position i. Panics when i is out of range,
// like a slice index.
func (v *View) At(i int) (features, targets []float64) {
	return v.data.Row(v.indices[i])
}

// Index returns the dataset row backing view position i.
func (v *View) Index(i int) int { return v.indices[i] }

// Split partitions the dataset into train/validation views using a
// permutation seeded by seed. The same length, fraction and seed always
// produce the same split.
func Split(d *Dataset, valFraction float64, seed int64) (train, validation *View) {
	var rnd = rand.New(rand.NewSource(seed))
	var perm = rnd.Perm(d.Len())
	var split = int(float64(d.Len()) * (1 - valFraction))
	return &View{data: d, indices: perm[:split]},
		&View{data: d, indices: perm[split:]}
}

func LoadAndSplit(path string, valFraction float64, seed int64) (train, validation *View, err error) {
	d, err := Load(path)
	if err != nil {
		return nil, nil, err
	}
	train, validation = Split(d, valFraction, seed)
	return train, validation, nil
}
