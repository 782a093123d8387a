package base

// Capability names consulted by the managers.
const (
	CapMove  = "MOVE"
	CapSort  = "SORT"
	CapQuota = "QUOTA"
)

// Session is the only surface the managers use to talk to a server. Plain and
// TLS transports both satisfy it, so callers never branch on the connection
// kind. Calls block until the server's tagged response is read.
type Session interface {
	HasCapability(name string) bool
	Select(mailbox string) (*MailboxStatus, error)
	UIDSearch(query string) ([]uint32, error)
	RawCommand(command string) ([]byte, error)
	FetchDetails(uidSet string, headerFields []string) ([]DetailRecord, error)
	FetchRaw(uidSet string) ([]RawMessage, error)
	UIDMove(uidSet, destination string) error
	UIDCopy(uidSet, destination string) error
	UIDStore(uidSet, flagExpr string) error
	Expunge() error
	ListMailboxes(reference, pattern string) ([]string, error)
}

// SessionProvider hands out the live session, or nil when disconnected.
type SessionProvider interface {
	IMAPSession() Session
}

type MailboxStatus struct {
	Name        string
	Messages    uint32
	Recent      uint32
	Unseen      uint32
	UIDNext     uint32
	UIDValidity uint32
}

// DetailRecord is one FETCH response. UID 0 means the server omitted it.
type DetailRecord struct {
	UID    uint32
	Flags  []string
	Size   uint32
	Header []byte
}

type RawMessage struct {
	UID  uint32
	Body []byte
}

// MessageKey identifies a message across mailboxes. UIDs alone are only
// unique within one mailbox.
type MessageKey struct {
	Mailbox string
	UID     uint32
}

// MessageRow is the display-ready summary of a hit.
type MessageRow struct {
	UID uint32
	// Mailbox is empty for single-mailbox searches.
	Mailbox   string
	From      string
	Subject   string
	Date      string
	Timestamp int64
	Size      uint32
	Flags     []string
}

func (r MessageRow) Key() MessageKey {
	return MessageKey{Mailbox: r.Mailbox, UID: r.UID}
}
