package sentiment

import (
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// Rates is the classifier's confusion profile: for each true class, the
// probability of each predicted class. Quantify inverts it to correct the
// observed histogram for classifier bias.
type Rates struct {
	Negative ClassRates `yaml:"negative"`
	Neutral  ClassRates `yaml:"neutral"`
	Positive ClassRates `yaml:"positive"`
}

// ClassRates is one row of the profile: where documents of a true class end
// up after classification.
type ClassRates struct {
	Negative float64 `yaml:"negative"`
	Neutral  float64 `yaml:"neutral"`
	Positive float64 `yaml:"positive"`
}

// IdentityRates is the profile of a classifier trusted as-is: correction
// reduces to normalizing the observed histogram.
func IdentityRates() *Rates {
	return &Rates{
		Negative: ClassRates{Negative: 1},
		Neutral:  ClassRates{Neutral: 1},
		Positive: ClassRates{Positive: 1},
	}
}

// LoadRates reads a confusion profile from a YAML file. An empty path means
// no profile is configured and correction is disabled.
func LoadRates(path string) (*Rates, error) {
	if path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rates file: %w", err)
	}

	var r Rates
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("parse rates file: %w", err)
	}
	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("invalid rates file %s: %w", path, err)
	}
	return &r, nil
}

func (r Rates) validate() error {
	rows := map[string]ClassRates{
		"negative": r.Negative,
		"neutral":  r.Neutral,
		"positive": r.Positive,
	}
	for name, row := range rows {
		for _, v := range []float64{row.Negative, row.Neutral, row.Positive} {
			if v < 0 || v > 1 {
				return fmt.Errorf("row %s has a rate outside [0, 1]", name)
			}
		}
		sum := row.Negative + row.Neutral + row.Positive
		if math.Abs(sum-1) > 1e-6 {
			return fmt.Errorf("row %s sums to %v, want 1", name, sum)
		}
	}
	return nil
}

// matrix renders the profile as the linear system's coefficient matrix:
// column j holds where true class j lands, so rates · true = observed.
func (r Rates) matrix() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		r.Negative.Negative, r.Neutral.Negative, r.Positive.Negative,
		r.Negative.Neutral, r.Neutral.Neutral, r.Positive.Neutral,
		r.Negative.Positive, r.Neutral.Positive, r.Positive.Positive,
	})
}
