package export

// Request asks for the timeline to be written as a CMX 3600 EDL.
type Request struct {
	ProjectName string `json:"project_name" validate:"max=200"`
	Format      string `json:"format" validate:"omitempty,oneof=edl EDL"`
	OutputDir   string `json:"output_dir" validate:"required"`
	TrackID     int    `json:"track_id" validate:"min=0"`
}

// Event is one EDL line. Frames are timeline frames.
type Event struct {
	Number           int
	Reel             string
	Channel          string
	EditType         string
	TransitionFrames int
	ClipName         string
	MediaPath        string
	SourceIn         int
	SourceOut        int
	RecordIn         int
	RecordOut        int
}

type Response struct {
	Status      string `json:"status"`
	Format      string `json:"format"`
	OutputPath  string `json:"output_path"`
	EventCount  int    `json:"event_count"`
	Transitions int    `json:"transitions"`
}
