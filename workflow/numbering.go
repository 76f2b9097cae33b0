package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FormatOrderNumber renders <prefix>-YYMM-NNNN
func FormatOrderNumber(prefix string, now time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, now.Format("0601"), seq)
}

// NewClaimNumber renders <prefix>-YYMM-XXXXXXXX with eight random hex digits
func NewClaimNumber(prefix string, now time.Time) string {
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("0601"), random[:8])
}
