package alert

import (
	"fmt"
	"strings"
	"time"

	"github.com/caretaker-api/internal/domain"
)

// NoContactsAlert is raised when a high-risk entry fires with an empty
// verified roster. It is an operational failure of the safety net, not of the
// classification.
const NoContactsAlert = "CRITICAL: No emergency contacts available for alert! Please add emergency contacts immediately."

// Dispatch decides whether the verdict warrants raising alerts and builds one
// notification request per verified contact. Pending contacts are never
// addressed. Delivery of the returned notifications is the caller's concern.
func Dispatch(verdict domain.RiskVerdict, entry *domain.EmotionEntry, verified []domain.Contact) (alerts []string, notifications []domain.Notification) {
	if !verdict.AlertTriggered {
		return nil, nil
	}
	if len(verified) == 0 {
		return []string{NoContactsAlert}, nil
	}

	msg := formatAlert(verdict, entry)
	alerts = append(alerts, msg)
	for _, c := range verified {
		notifications = append(notifications, domain.Notification{
			ContactID: c.ContactID,
			Target:    c.Phone,
			Message:   msg,
		})
	}
	return alerts, notifications
}

func formatAlert(verdict domain.RiskVerdict, entry *domain.EmotionEntry) string {
	var b strings.Builder
	b.WriteString("EMERGENCY ALERT\n")
	b.WriteString("User: High-risk emotional state detected\n")
	fmt.Fprintf(&b, "Time: %s\n", entry.CreatedAt.Format(time.RFC1123))
	fmt.Fprintf(&b, "Mood: %s\n", entry.Mood)
	fmt.Fprintf(&b, "Detected Issues: %s\n", strings.Join(verdict.Categories, ", "))
	fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(entry.Keywords, ", "))
	if entry.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", entry.Notes)
	}
	b.WriteString("\nIMMEDIATE ACTION REQUIRED - Contact user immediately.")
	return b.String()
}
