package mail

import (
	"encoding/json"
	"strconv"
	"strings"
)

// readResponse is the JSON envelope for a successful mailbox listing.
type readResponse struct {
	Status     string           `json:"status"`
	TotalCount int              `json:"totalCount"`
	Emails     []MessageSummary `json:"emails"`
}

// errorResponse is the JSON envelope for a failed mailbox listing.
type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// isCSVFormat reports whether the requested output format is CSV.
func isCSVFormat(format string) bool {
	return strings.EqualFold(format, "csv")
}

// FormatSummariesJSON serializes message summaries as a JSON envelope.
func FormatSummariesJSON(summaries []MessageSummary) string {
	if summaries == nil {
		summaries = []MessageSummary{}
	}
	out, err := json.Marshal(readResponse{
		Status:     StatusSuccess,
		TotalCount: len(summaries),
		Emails:     summaries,
	})
	if err != nil {
		return FormatError("Error formatting response")
	}
	return string(out)
}

// FormatSummariesCSV serializes message summaries as CSV rows. The separator
// value "comma" is accepted as an alias for ",". Values containing the
// separator, quotes or newlines are quoted with doubled inner quotes.
func FormatSummariesCSV(summaries []MessageSummary, separator string, includeHeaders bool) string {
	sep := separator
	if sep == "" {
		sep = ","
	} else if sep == "comma" {
		sep = ","
	}

	var b strings.Builder

	if includeHeaders {
		b.WriteString(strings.Join([]string{
			"MessageId", "Subject", "From", "ReceivedDateTime", "IsRead", "HasAttachments",
		}, sep))
		b.WriteString("\n")
	}

	for _, m := range summaries {
		fields := []string{
			escapeCSV(m.MessageID, sep),
			escapeCSV(m.Subject, sep),
			escapeCSV(m.From, sep),
			escapeCSV(m.ReceivedDateTime, sep),
			strconv.FormatBool(m.IsRead),
			strconv.FormatBool(m.HasAttachments),
		}
		b.WriteString(strings.Join(fields, sep))
		b.WriteString("\n")
	}

	return b.String()
}

// FormatError serializes an ERROR-status envelope for read failures.
func FormatError(message string) string {
	out, err := json.Marshal(errorResponse{Status: "ERROR", Message: message})
	if err != nil {
		return `{"status":"ERROR","message":"Error formatting response"}`
	}
	return string(out)
}

// escapeCSV quotes a value when it contains the separator, a quote or a
// newline, doubling any inner quotes.
func escapeCSV(value, sep string) string {
	if strings.Contains(value, sep) || strings.Contains(value, `"`) || strings.Contains(value, "\n") {
		return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
	}
	return value
}
