package cache

import "fmt"

// Key layout:
//   - roomKey(docID):  online members of a document (ZSet<userID, expireAtUnix>, score=expireAt)
//   - namesKey(docID): userID -> username for that room (Hash)
//   - docsKey():       "presence:docs"; no function in this package reads or
//     writes it (GetDocuments scans room keys instead)
const (
	keyRoomFmt  = "presence:room:{docID:%s}"
	keyNamesFmt = "presence:room:names:{docID:%s}"
	keyDocsSet  = "presence:docs"
)

func roomKey(docID string) string  { return fmt.Sprintf(keyRoomFmt, docID) }
func namesKey(docID string) string { return fmt.Sprintf(keyNamesFmt, docID) }
func docsKey() string              { return keyDocsSet }
