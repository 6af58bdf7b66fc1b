package features

import (
	"fmt"

	"Cephu/internal/domain/models"
)

// ComputeBasis aligns future and index on timestamp and derives the basis
// (future minus index) with its trailing moving average.
func ComputeBasis(future, index models.Series, window int) ([]models.BasisRow, error) {
	if window < 1 {
		return nil, fmt.Errorf("basis window %d: %w", window, models.ErrInvalidInput)
	}
	aligned := AlignCloses(future, index)
	basis := make([]float64, len(aligned))
	for i, a := range aligned {
		basis[i] = a.Left - a.Right
	}
	ma := RollingMean(basis, window)

	rows := make([]models.BasisRow, len(aligned))
	for i, a := range aligned {
		rows[i] = models.BasisRow{
			Time:    a.Time,
			Future:  a.Left,
			Index:   a.Right,
			Basis:   basis[i],
			BasisMA: ma[i],
		}
	}
	return rows, nil
}
