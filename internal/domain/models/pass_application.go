package models

import "time"

const (
	PassPending      = "pending"
	PassVerification = "verification"
	PassApproved     = "approved"
	PassRejected     = "rejected"
	PassCancelled    = "cancelled"
)

// PassApplication is a request for a discounted travel pass on one route.
type PassApplication struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"userId"`
	RouteID        int64      `json:"routeId"`
	Category       string     `json:"category"`
	ValidityMonths int        `json:"validityMonths"`
	AadhaarNumber  string     `json:"aadhaarNumber"`
	AadhaarOK      bool       `json:"aadhaarVerified"`
	Mobile         string     `json:"mobile"`
	MobileVerified bool       `json:"mobileVerified"`
	Status         string     `json:"status"`
	Amount         float64    `json:"amount"`
	PassCode       string     `json:"passCode,omitempty"`
	ValidFrom      *time.Time `json:"validFrom,omitempty"`
	ValidUntil     *time.Time `json:"validUntil,omitempty"`
	AdminRemarks   string     `json:"adminRemarks,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Masked hides all but the last four Aadhaar digits.
func (p PassApplication) Masked() PassApplication {
	if n := len(p.AadhaarNumber); n > 4 {
		masked := make([]byte, n)
		for i := 0; i < n-4; i++ {
			masked[i] = 'X'
		}
		copy(masked[n-4:], p.AadhaarNumber[n-4:])
		p.AadhaarNumber = string(masked)
	}
	return p
}

// PassApplicationInput carries the create payload.
type PassApplicationInput struct {
	RouteID        int64  `json:"routeId" binding:"required"`
	Category       string `json:"category" binding:"required,oneof=student senior regular disabled"`
	ValidityMonths int    `json:"validityMonths" binding:"required,oneof=1 3 6 12"`
	AadhaarNumber  string `json:"aadhaarNumber" binding:"required"`
	Mobile         string `json:"mobile" binding:"required"`
}

// PassStatusUpdate is the admin decision payload.
type PassStatusUpdate struct {
	Status  string `json:"status" binding:"required,oneof=pending verification approved rejected"`
	Remarks string `json:"remarks"`
}

// PassCheck is the public answer for a pass code lookup.
type PassCheck struct {
	PassCode   string    `json:"passCode"`
	Category   string    `json:"category"`
	RouteID    int64     `json:"routeId"`
	ValidFrom  time.Time `json:"validFrom"`
	ValidUntil time.Time `json:"validUntil"`
	Valid      bool      `json:"valid"`
}
