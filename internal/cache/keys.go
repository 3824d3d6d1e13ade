package cache

import "strings"

// KeyPrefix namespaces every key written by this service.
const KeyPrefix = "studykit"

// Key joins parts under KeyPrefix with ":". Empty parts are skipped.
func Key(parts ...string) string {
	out := make([]string, 0, len(parts)+1)
	out = append(out, KeyPrefix)
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ":")
}

// JobRecordKey is where the job board keeps the latest record of a job.
func JobRecordKey(jobID string) string {
	return Key("jobs", "record", jobID)
}
