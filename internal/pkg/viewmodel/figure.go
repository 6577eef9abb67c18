package viewmodel

// Figure contains all information needed for displaying a generated figure
type Figure struct {
	// Website domain (e.g. https://paperfig.app)
	Domain string

	// Figure UUID for status tracking
	UUID string

	// Caption and title as submitted by the user
	Title   string
	Caption string

	// Diagram type that was generated
	DiagramType string

	// Preview path (WebP thumbnail) when available
	PreviewPath string
	HasPreview  bool

	// Complete path to the original PNG for display
	FilePath string

	// Tokenized download URL for the original PNG
	DownloadURL string

	// Processing status flags
	IsProcessing bool
	IsFailed     bool

	// User-facing failure message, empty unless IsFailed
	ErrorMessage string
}
