package models

// CardStats summarizes a card collection for progress display.
type CardStats struct {
	Total           int     `json:"total"`
	DueToday        int     `json:"due_today"`
	New             int     `json:"new"`
	Review          int     `json:"review"`
	Mastered        int     `json:"mastered"`
	AvgEaseFactor   float64 `json:"avg_ease_factor"`
	AvgIntervalDays float64 `json:"avg_interval_days"`
}
