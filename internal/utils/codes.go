package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// codeSuffix returns n uppercase hex characters taken from a random UUID.
func codeSuffix(n int) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:n])
}

// BookingCode formats BK-YYYYMMDD-XXXX.
func BookingCode(now time.Time) string {
	return fmt.Sprintf("BK-%s-%s", now.Format("20060102"), codeSuffix(4))
}

// PassCode formats PASS-YYYYMM-XXXX.
func PassCode(now time.Time) string {
	return fmt.Sprintf("PASS-%s-%s", now.Format("200601"), codeSuffix(4))
}
