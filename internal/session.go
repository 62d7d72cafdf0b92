package internal

// ProcessingStatus is the backend's processing state for a session
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusUploaded   ProcessingStatus = "uploaded"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusError      ProcessingStatus = "error"
)

// IsTerminal reports whether no further processing will happen
func (s ProcessingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Session is one recorded or imported play session
type Session struct {
	ID             int              `json:"id"`
	CampaignID     int              `json:"campaign_id"`
	Name           string           `json:"name"`
	CreatedAt      Timestamp        `json:"created_at"`
	Status         ProcessingStatus `json:"status"`
	Summary        *string          `json:"summary,omitempty"`
	ErrorMessage   *string          `json:"error_message,omitempty"`
	AudioFilePaths *string          `json:"audio_file_paths,omitempty"`

	Highlights      ArtifactField[Highlight] `json:"highlights"`
	LowPoints       *string                  `json:"low_points,omitempty"`
	MemorableQuotes *string                  `json:"memorable_quotes,omitempty"`
	Quotes          []Quote                  `json:"quotes,omitempty"`
}
