// Package dynamodb implements the repository ports on a single DynamoDB
// table. Canonical records and pointer records share the table; three
// global secondary indexes serve the user-to-group lookup and the two
// chronological feed orderings.
package dynamodb

import "fmt"

// Index names. GSI2 orders a group's dated hangout pointers by start time,
// GSI3 by end time.
const (
	UserGroupIndex     = "UserGroupIndex"
	EntityTimeIndex    = "EntityTimeIndex"
	EndTimestampIndex  = "EndTimestampIndex"
	metadataSK         = "METADATA"
	hangoutPtrSKPrefix = "HANGOUT#"
	seriesPtrSKPrefix  = "SERIES#"
	memberSKPrefix     = "USER#"

	// BatchWriteItem caps each call at 25 write requests.
	maxBatchWriteItems = 25
)

func groupPK(groupID string) string     { return "GROUP#" + groupID }
func hangoutPK(hangoutID string) string { return "HANGOUT#" + hangoutID }
func seriesPK(seriesID string) string   { return "SERIES#" + seriesID }
func userGSI1PK(userID string) string   { return "USER#" + userID }

func memberSK(userID string) string      { return memberSKPrefix + userID }
func hangoutPtrSK(hangoutID string) string { return hangoutPtrSKPrefix + hangoutID }
func seriesPtrSK(seriesID string) string   { return seriesPtrSKPrefix + seriesID }
func offerSK(offerID string) string        { return "OFFER#" + offerID }

func claimSK(offerID, userID string) string {
	return fmt.Sprintf("CLAIM#%s#%s", offerID, userID)
}

// timeSortKey encodes (timestamp, id) into a lexicographically ordered sort
// key. The timestamp is zero-padded to 13 digits, enough for millisecond
// epochs until the year 2286, so string order equals numeric order.
func timeSortKey(millis int64, id string) string {
	return fmt.Sprintf("T#%013d#%s", millis, id)
}
