package models

// User is the account record used for login only.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}

// DashboardStats aggregates admin counters.
type DashboardStats struct {
	TotalStops              int `json:"totalStops"`
	TotalRoutes             int `json:"totalRoutes"`
	ActiveBuses             int `json:"activeBuses"`
	TotalBookings           int `json:"totalBookings"`
	ConfirmedBookings       int `json:"confirmedBookings"`
	CancelledBookings       int `json:"cancelledBookings"`
	PendingPassApplications int `json:"pendingPassApplications"`
}
