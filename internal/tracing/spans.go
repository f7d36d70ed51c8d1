package tracing

// Span names.
const (
	SpanCopy  = "gridclip.copy"
	SpanPaste = "gridclip.paste"
	SpanUndo  = "gridclip.undo"
)

// Attribute keys.
const (
	AttrSheet       = "sheet.name"
	AttrRanges      = "copy.ranges"
	AttrBytes       = "clipboard.bytes"
	AttrRows        = "paste.rows"
	AttrCols        = "paste.cols"
	AttrRowsAdded   = "paste.rows_added"
	AttrColsAdded   = "paste.cols_added"
	AttrBroadcast   = "paste.broadcast"
	AttrCommandID   = "command.id"
	AttrErrorType   = "error.type"
	AttrDestination = "paste.destination"
)

// Events.
const (
	EventCancelled = "gesture.cancelled"
	EventDeclined  = "command.declined"
)
