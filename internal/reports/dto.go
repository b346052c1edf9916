package reports

// Overview aggregates the headline library numbers the admin dashboard shows.
type Overview struct {
	TotalUsers          int64            `json:"total_users"`
	TotalContent        int64            `json:"total_content"`
	TotalBorrows        int64            `json:"total_borrows"`
	ActiveBorrows       int64            `json:"active_borrows"`
	OverdueBorrows      int64            `json:"overdue_borrows"`
	PendingReservations int64            `json:"pending_reservations"`
	WaitingEntries      int64            `json:"waiting_entries"`
	UsersByRole         map[string]int64 `json:"users_by_role"`
	ContentByStatus     map[string]int64 `json:"content_by_status"`
	ContentByGenre      map[string]int64 `json:"content_by_genre"`
	BorrowsByMonth      []MonthlyCount   `json:"borrows_by_month"`
	AvgBorrowDays       float64          `json:"avg_borrow_days"`
}

// MonthlyCount is one bucket of the current-year borrow histogram.
type MonthlyCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}
