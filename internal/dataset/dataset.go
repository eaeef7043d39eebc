package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// Dataset holds every recorded sample of one CSV file as dense row-major
// feature and target matrices. Immutable after Load.
type Dataset struct {
	features []float64 // n * InputDim
	targets  []float64 // n * OutputDim
	n        int
}

func (d *Dataset) Len() int { return d.n }

// Row returns the feature and target vectors of dataset row i. The slices
// alias the dataset storage and must not be modified.
func (d *Dataset) Row(i int) (features, targets []float64) {
	return d.features[i*InputDim : (i+1)*InputDim],
		d.targets[i*OutputDim : (i+1)*OutputDim]
}

type columnIndex struct {
	features [InputDim]int
	targets  [OutputDim]int
}

func Load(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var reader = csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %v: %v", path, err)
	}
	columns, err := resolveColumns(header)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %v: %v", path, err)
	}

	var d = &Dataset{
		features: make([]float64, len(records)*InputDim),
		targets:  make([]float64, len(records)*OutputDim),
		n:        len(records),
	}

	// Conversion runs on contiguous chunks so every worker writes a disjoint
	// region and row order is preserved.
	var g errgroup.Group
	var chunkSize = (len(records) + runtime.NumCPU() - 1) / runtime.NumCPU()
	for lo := 0; lo < len(records); lo += chunkSize {
		var lo, hi = lo, min(lo+chunkSize, len(records))
		g.Go(func() error {
			return d.convertRows(records[lo:hi], lo, &columns)
		})
	}
	if err = g.Wait(); err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	return d, nil
}

// resolveColumns maps the canonical column order onto the file's header.
// Extra columns are ignored, missing ones are fatal.
func resolveColumns(header []string) (columnIndex, error) {
	var byName = make(map[string]int, len(header))
	for i, name := range header {
		byName[name] = i
	}
	var columns columnIndex
	for i, name := range FeatureColumns {
		var col, ok = byName[name]
		if !ok {
			return columnIndex{}, fmt.Errorf("missing required column %q", name)
		}
		columns.features[i] = col
	}
	for i, name := range TargetColumns {
		var col, ok = byName[name]
		if !ok {
			return columnIndex{}, fmt.Errorf("missing required column %q", name)
		}
		columns.targets[i] = col
	}
	return columns, nil
}

func (d *Dataset) convertRows(records [][]string, offset int, columns *columnIndex) error {
	for i, record := range records {
		var row = offset + i
		for j, col := range columns.features {
			var v, err = parseValue(record[col])
			if err != nil {
				return fmt.Errorf("row %v, column %q: %v", row+2, FeatureColumns[j], err)
			}
			d.features[row*InputDim+j] = v
		}
		for j, col := range columns.targets {
			var v, err = parseValue(record[col])
			if err != nil {
				return fmt.Errorf("row %v, column %q: %v", row+2, TargetColumns[j], err)
			}
			d.targets[row*OutputDim+j] = v
		}
	}
	return nil
}

func parseValue(s string) (float64, error) {
	var v, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("value %q is not finite", s)
	}
	return v, nil
}
