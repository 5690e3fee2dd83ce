package types

// Request bodies accepted by the workflow API.

// DragStartRequest selects a bullet as the drag payload.
type DragStartRequest struct {
	BulletID string `json:"bullet_id" validate:"required"`
}

// DragEndRequest drops the payload; an empty BinID means the drop landed outside any bin.
type DragEndRequest struct {
	BinID string `json:"bin_id"`
}

// MoveRequest categorizes a bullet without a drag gesture.
type MoveRequest struct {
	BulletID string `json:"bullet_id" validate:"required"`
}

// EditBulletRequest replaces a bullet's text during preview.
// When HTML is set the text and formatting are recovered from the markup instead.
type EditBulletRequest struct {
	Text string `json:"text"`
	HTML string `json:"html,omitempty"`
}

// ActionResponse reports whether a categorization action changed anything.
// Misses are reported with Applied=false rather than as errors.
type ActionResponse struct {
	Applied bool `json:"applied"`
	State   any  `json:"state"`
}

// SessionResponse is returned when a new workflow session is created.
type SessionResponse struct {
	Token string `json:"token"`
	State any    `json:"state"`
}
