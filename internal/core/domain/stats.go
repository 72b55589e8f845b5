package domain

import "time"

type NutritionStats struct {
	StartDate    string      `json:"start_date"`
	EndDate      string      `json:"end_date"`
	DaysLogged   int         `json:"days_logged"`
	Total        Macros      `json:"total"`
	DailyAverage Macros      `json:"daily_average"`
	Days         []DayTotals `json:"days"`
}

type DayTotals struct {
	Date   string `json:"date"`
	Meals  int    `json:"meals"`
	Totals Macros `json:"totals"`
}

type StatsInput struct {
	UserID    string
	StartDate time.Time
	EndDate   time.Time
}
