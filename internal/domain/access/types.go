package access

type AccessState string

const (
	AccessTrial   AccessState = "trial"
	AccessFull    AccessState = "full"
	AccessLimited AccessState = "limited"
	AccessLocked  AccessState = "locked"
)

// Capabilities exposed to clients and checked by middleware.
const (
	CapUpload  = "upload"
	CapEdit    = "edit"
	CapReact   = "react"
	CapComment = "comment"
	CapAITags  = "ai_tags"
	CapArtBook = "art_book"
)
