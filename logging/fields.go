package logging

// Canonical field names for structured logging.
const (
	FieldComponent = "component"
	FieldSource    = "source"
	FieldChannel   = "channel"
	FieldURL       = "url"
	FieldPath      = "path"
	FieldBuildID   = "build_id"
	FieldPrograms  = "programs"
	FieldChannels  = "channels"
)
