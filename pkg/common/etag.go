package common

import "fmt"

// ETag is the quoted cache-validation token for a group feed. Its wire form
// is `"{groupID}-{changeMarkerMillis}"`, including the quotes, echoed back
// verbatim by clients via If-None-Match. Both sides compare for equality
// only and never parse the contents.
type ETag string

// NewETag derives the canonical token for a group from its change marker.
func NewETag(groupID string, markerMillis int64) ETag {
	return ETag(fmt.Sprintf("%q", fmt.Sprintf("%s-%d", groupID, markerMillis)))
}

// Matches reports whether a presented If-None-Match value equals the
// canonical token.
func (e ETag) Matches(presented string) bool {
	return presented != "" && presented == string(e)
}

func (e ETag) String() string {
	return string(e)
}
