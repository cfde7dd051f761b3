package ai

import "fmt"

// Dataset is the training matrix: X holds one feature vector per example and
// Y the matching one-hot label row.
type Dataset struct {
	X [][]float64
	Y [][]float64
}

// OneHot returns a row of size width with a single 1 at index.
func OneHot(index, width int) []float64 {
	row := make([]float64, width)
	row[index] = 1
	return row
}

// Append adds one example.
func (d *Dataset) Append(features []float64, label []float64) {
	d.X = append(d.X, features)
	d.Y = append(d.Y, label)
}

// Len is the number of examples.
func (d *Dataset) Len() int {
	return len(d.X)
}

// Validate checks that every row has the expected widths and that labels are one-hot.
func (d *Dataset) Validate(inputs, outputs int) error {
	if len(d.X) != len(d.Y) {
		return fmt.Errorf("dataset has %d feature rows but %d label rows", len(d.X), len(d.Y))
	}
	for i := range d.X {
		if len(d.X[i]) != inputs {
			return fmt.Errorf("row %d has %d features, expected %d", i, len(d.X[i]), inputs)
		}
		if len(d.Y[i]) != outputs {
			return fmt.Errorf("row %d has %d labels, expected %d", i, len(d.Y[i]), outputs)
		}
		ones := 0
		for _, v := range d.Y[i] {
			switch v {
			case 1:
				ones++
			case 0:
			default:
				return fmt.Errorf("row %d label holds %v", i, v)
			}
		}
		if ones != 1 {
			return fmt.Errorf("row %d label has %d hot positions", i, ones)
		}
	}
	return nil
}
