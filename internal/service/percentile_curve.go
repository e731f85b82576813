package service

// PercentileCurve convierte un score normalizado [0,100] en un percentil.
// Permite reemplazar la curva aproximada por normas poblacionales reales sin
// tocar el TraitScorer.
type PercentileCurve interface {
	Percentile(score float64) float64
}

// PiecewiseLinearCurve es la aproximacion lineal por tramos usada en produccion.
// No es una CDF normal ajustada; los breakpoints (25/50/75 -> 20/50/80) son
// parte del contrato con los consumidores de los percentiles.
type PiecewiseLinearCurve struct{}

func (PiecewiseLinearCurve) Percentile(score float64) float64 {
	var p float64
	switch {
	case score <= 25:
		p = score * 0.8
	case score <= 50:
		p = 20 + (score-25)*1.2
	case score <= 75:
		p = 50 + (score-50)*1.2
	default:
		p = 80 + (score-75)*0.8
	}
	return clamp(p, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
