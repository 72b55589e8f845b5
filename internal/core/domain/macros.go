package domain

import "math"

// Macros holds the four tracked nutritional quantities.
// Calories are kcal, the rest are grams.
type Macros struct {
	Calories float64 `json:"calories" db:"calories"`
	Carbs    float64 `json:"carbs" db:"carbs"`
	Fat      float64 `json:"fat" db:"fat"`
	Protein  float64 `json:"protein" db:"protein"`
}

func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		Carbs:    m.Carbs + o.Carbs,
		Fat:      m.Fat + o.Fat,
		Protein:  m.Protein + o.Protein,
	}
}

// Mul multiplies every component by factor without rounding.
func (m Macros) Mul(factor float64) Macros {
	return Macros{
		Calories: m.Calories * factor,
		Carbs:    m.Carbs * factor,
		Fat:      m.Fat * factor,
		Protein:  m.Protein * factor,
	}
}

// Rounded rounds every component to the nearest whole unit. This is the
// precision at which food entries are stored.
func (m Macros) Rounded() Macros {
	return Macros{
		Calories: math.Round(m.Calories),
		Carbs:    math.Round(m.Carbs),
		Fat:      math.Round(m.Fat),
		Protein:  math.Round(m.Protein),
	}
}

func (m Macros) IsZero() bool {
	return m.Calories == 0 && m.Carbs == 0 && m.Fat == 0 && m.Protein == 0
}
