package friends

import (
	"encoding/json"
	"strings"
	"time"
)

// State is the derived relationship between the viewer and a target user.
type State string

const (
	StateNone     State = "none"
	StateSent     State = "sent"
	StateReceived State = "received"
	StateFriends  State = "friends"
)

// RequestStatus is the lifecycle status of a friend request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusRejected RequestStatus = "rejected"
)

// Relationship is the resolved view for one (viewer, target) pair.
// RequestID is set only for sent/received, where a request record exists.
type Relationship struct {
	State     State
	RequestID string
}

// UserRef identifies a user across the API boundary. The API encodes user
// references inconsistently: a bare ID string, an object keyed by "id" or
// "_id", or an object nesting the user under "userId"/"user". All forms are
// normalized here, once, at the JSON edge. A row no ID can be extracted from
// decodes to a zero UserRef instead of failing, since partial rows are a
// known transient server state.
type UserRef struct {
	ID           string
	Name         string
	ProfileImage string
}

func (u *UserRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		u.ID = strings.TrimSpace(s)
		return nil
	}

	var obj struct {
		ID           string          `json:"id"`
		MongoID      string          `json:"_id"`
		UserID       json.RawMessage `json:"userId"`
		User         json.RawMessage `json:"user"`
		Name         string          `json:"name"`
		ProfileImage string          `json:"profileImage"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		*u = UserRef{}
		return nil
	}

	u.Name = obj.Name
	u.ProfileImage = obj.ProfileImage
	u.ID = strings.TrimSpace(obj.ID)
	if u.ID == "" {
		u.ID = strings.TrimSpace(obj.MongoID)
	}

	// Nested forms carry the ID (and sometimes the profile) one level down.
	for _, nested := range [][]byte{obj.UserID, obj.User} {
		if u.ID != "" {
			break
		}
		if len(nested) == 0 {
			continue
		}
		var inner UserRef
		if err := inner.UnmarshalJSON(nested); err == nil && inner.ID != "" {
			u.ID = inner.ID
			if u.Name == "" {
				u.Name = inner.Name
			}
			if u.ProfileImage == "" {
				u.ProfileImage = inner.ProfileImage
			}
		}
	}
	return nil
}

func (u UserRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID           string `json:"id"`
		Name         string `json:"name,omitempty"`
		ProfileImage string `json:"profileImage,omitempty"`
	}{u.ID, u.Name, u.ProfileImage})
}

// Request is a friend request record. Depending on the route, the server
// names the counterpart "toUserId"/"fromUserId" or just "userId"; both sides
// are kept so the resolver can fall back.
type Request struct {
	ID        string
	From      UserRef
	To        UserRef
	User      UserRef // counterpart when the row carries only one side
	Status    RequestStatus
	CreatedAt time.Time
}

func (r *Request) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        string        `json:"id"`
		MongoID   string        `json:"_id"`
		From      UserRef       `json:"fromUserId"`
		To        UserRef       `json:"toUserId"`
		User      UserRef       `json:"userId"`
		Status    RequestStatus `json:"status"`
		CreatedAt time.Time     `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		*r = Request{}
		return nil
	}
	r.ID = strings.TrimSpace(raw.ID)
	if r.ID == "" {
		r.ID = strings.TrimSpace(raw.MongoID)
	}
	r.From = raw.From
	r.To = raw.To
	r.User = raw.User
	r.Status = raw.Status
	r.CreatedAt = raw.CreatedAt
	return nil
}

// Lists holds the viewer's three relationship lists as fetched together from
// GET /api/friends.
type Lists struct {
	Friends  []UserRef `json:"friends"`
	Sent     []Request `json:"sent"`
	Received []Request `json:"received"`
}

func normalizeID(id string) string {
	return strings.TrimSpace(id)
}
