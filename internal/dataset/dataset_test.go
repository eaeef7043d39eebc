package dataset

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeCSV stores a file with the full schema plus one extra column, using
// value(row, column name) to fill every cell.
func writeCSV(t *testing.T, rows int, header []string, value func(row int, name string) string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	b.WriteByte('\n')
	for row := 0; row < rows; row++ {
		var cells = make([]string, len(header))
		for i, name := range header {
			cells[i] = value(row, name)
		}
		b.WriteString(strings.Join(cells, ","))
		b.WriteByte('\n')
	}
	var path = filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func fullHeader() []string {
	var header = []string{"extra"}
	header = append(header, TargetColumns...)
	header = append(header, FeatureColumns...)
	return header
}

// cellValue gives every (row, column) pair a distinct value so canonical
// reordering is observable.
func cellValue(row int, name string) string {
	if name == "extra" {
		return "999"
	}
	for i, col := range FeatureColumns {
		if col == name {
			return fmt.Sprintf("%v.%02d", row, i)
		}
	}
	for i, col := range TargetColumns {
		if col == name {
			return fmt.Sprintf("-%v.%02d", row+1, i)
		}
	}
	return "0"
}

func TestSchemaDims(t *testing.T) {
	if len(FeatureColumns) != InputDim {
		t.Errorf("FeatureColumns has %v names, InputDim is %v", len(FeatureColumns), InputDim)
	}
	if len(TargetColumns) != OutputDim {
		t.Errorf("TargetColumns has %v names, OutputDim is %v", len(TargetColumns), OutputDim)
	}
}

func TestLoadCanonicalOrder(t *testing.T) {
	// header stores targets first and an extra column; tensors must still
	// follow the canonical order
	var path = writeCSV(t, 5, fullHeader(), cellValue)
	d, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 5 {
		t.Fatalf("Len() = %v, want 5", d.Len())
	}
	features, targets := d.Row(3)
	if len(features) != InputDim || len(targets) != OutputDim {
		t.Fatalf("row dims = (%v,%v), want (%v,%v)", len(features), len(targets), InputDim, OutputDim)
	}
	if features[7] != 3.07 {
		t.Errorf("features[7] = %v, want 3.07", features[7])
	}
	if targets[1] != -4.01 {
		t.Errorf("targets[1] = %v, want -4.01", targets[1])
	}
}

func TestLoadMissingColumn(t *testing.T) {
	var header = fullHeader()
	for i, name := range header {
		if name == "windSpeed" {
			header = append(header[:i], header[i+1:]...)
			break
		}
	}
	var path = writeCSV(t, 2, header, cellValue)
	var _, err = Load(path)
	if err == nil {
		t.Fatal("Load succeeded with a missing column")
	}
	if !strings.Contains(err.Error(), "windSpeed") {
		t.Errorf("error %q does not name the missing column", err)
	}
}

func TestLoadBadValues(t *testing.T) {
	tests := []struct {
		name string
		cell string
	}{
		{"text", "north"},
		{"nan", "NaN"},
		{"inf", "+Inf"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var path = writeCSV(t, 3, fullHeader(), func(row int, name string) string {
				if row == 1 && name == "boatSpeed" {
					return tt.cell
				}
				return cellValue(row, name)
			})
			if _, err := Load(path); err == nil {
				t.Errorf("Load accepted %q", tt.cell)
			}
		})
	}
}

func loadTestDataset(t *testing.T, rows int) *Dataset {
	t.Helper()
	d, err := Load(writeCSV(t, rows, fullHeader(), cellValue))
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestSplitPartition(t *testing.T) {
	var d = loadTestDataset(t, 1000)
	train, validation := Split(d, 0.2, 42)
	if train.Len() != 800 || validation.Len() != 200 {
		t.Fatalf("split sizes = (%v,%v), want (800,200)", train.Len(), validation.Len())
	}
	var seen = make(map[int]bool)
	for i := 0; i < train.Len(); i++ {
		seen[train.Index(i)] = true
	}
	for i := 0; i < validation.Len(); i++ {
		var index = validation.Index(i)
		if seen[index] {
			t.Fatalf("row %v is in both views", index)
		}
		seen[index] = true
	}
	if len(seen) != d.Len() {
		t.Errorf("views cover %v rows, want %v", len(seen), d.Len())
	}
}

func TestSplitDeterminism(t *testing.T) {
	var d = loadTestDataset(t, 100)
	a1, b1 := Split(d, 0.2, 42)
	a2, b2 := Split(d, 0.2, 42)
	for i := 0; i < a1.Len(); i++ {
		if a1.Index(i) != a2.Index(i) {
			t.Fatalf("train views differ at %v for equal seeds", i)
		}
	}
	for i := 0; i < b1.Len(); i++ {
		if b1.Index(i) != b2.Index(i) {
			t.Fatalf("validation views differ at %v for equal seeds", i)
		}
	}

	a3, _ := Split(d, 0.2, 43)
	var same = true
	for i := 0; i < a1.Len(); i++ {
		if a1.Index(i) != a3.Index(i) {
			same = false
			break
		}
	}
	if same {
		t.Error("changing the seed left the permutation identical")
	}
}

func TestViewAtOutOfRange(t *testing.T) {
	var d = loadTestDataset(t, 10)
	train, _ := Split(d, 0.2, 42)
	defer func() {
		if recover() == nil {
			t.Error("At past the end did not panic")
		}
	}()
	train.At(train.Len())
}

func TestViewAtValues(t *testing.T) {
	var d = loadTestDataset(t, 50)
	train, _ := Split(d, 0.2, 42)
	for i := 0; i < train.Len(); i++ {
		var features, _ = train.At(i)
		wantFeatures, _ := d.Row(train.Index(i))
		if math.Abs(features[0]-wantFeatures[0]) != 0 {
			t.Fatalf("view position %v does not alias dataset row %v", i, train.Index(i))
		}
	}
}
