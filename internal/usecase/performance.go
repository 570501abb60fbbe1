package usecase

import "GridCast/internal/domain/models"

// PerformanceUseCase exposes offline evaluation scores of the deployed
// model bundle. The figures come from the held-out test split at
// training time and change only when a new bundle ships.
type PerformanceUseCase struct {
	scores []models.ModelPerformance
}

func NewPerformanceUseCase() *PerformanceUseCase {
	return &PerformanceUseCase{
		scores: []models.ModelPerformance{
			{Model: "gbt", MAPE: 40.5542},
			{Model: "lstm", MAPE: 49.3340},
			{Model: "fusion", MAPE: 30.3778},
		},
	}
}

// Scores returns the per-model evaluation figures, fusion last.
func (uc *PerformanceUseCase) Scores() []models.ModelPerformance {
	out := make([]models.ModelPerformance, len(uc.scores))
	copy(out, uc.scores)
	return out
}
