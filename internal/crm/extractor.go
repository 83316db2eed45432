package crm

import "regexp"

// ExtractorFunc pulls an existing contact id out of a conflict response
// body. Returning "" means no id could be found; the resolver then falls
// through to the search path, so a format drift upstream degrades to one
// extra remote call rather than a failure.
type ExtractorFunc func(conflictBody string) string

var conflictIDPattern = regexp.MustCompile(`ID:\s*(\d+)`)

// ExtractConflictID scans a free-text conflict body for the remote's
// "ID: <digits>" token. The first match wins.
func ExtractConflictID(conflictBody string) string {
	m := conflictIDPattern.FindStringSubmatch(conflictBody)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
