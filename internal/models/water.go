package models

type WaterIntake struct {
	UserID   string `json:"user_id"`
	Date     string `json:"date"`
	AmountML int    `json:"amount_ml"`
	GoalML   int    `json:"goal_ml,omitempty"`
}

type WaterHistoryEntry struct {
	Date     string `json:"date"`
	AmountML int    `json:"amount_ml"`
}
