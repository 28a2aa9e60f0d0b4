package domain

// TranscriptTimeLayout is the local time-of-day stamped on each line.
const TranscriptTimeLayout = "15:04:05"

type TranscriptEntry struct {
	Username  string `json:"username"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}
