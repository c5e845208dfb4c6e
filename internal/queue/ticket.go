package queue

import (
	"fmt"

	"backend-medcall/internal/models"
)

// FormatTicket - Format: PREFIX-NOMOR (misal: N-001, P-002).
// seq comes from the current queue length, so numbers repeat over time
// and across priorities.
func FormatTicket(p models.Priority, seq int) string {
	return fmt.Sprintf("%s-%03d", p.TicketPrefix(), seq)
}
