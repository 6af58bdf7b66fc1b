package service

import (
	"context"

	"Cephu/internal/domain/models"
)

// ChartRenderer turns computed reports into chart documents.
type ChartRenderer interface {
	RenderBasis(ctx context.Context, r *models.BasisReport, f models.Format) ([]byte, error)
	RenderAnalysis(ctx context.Context, r *models.AnalysisReport, f models.Format) ([]byte, error)
}
