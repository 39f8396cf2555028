package domain

import "encoding/json"

// User is a sub-account record as returned by the shipping platform.
// The typed fields are a read-only view: a decoded record is encoded back
// byte for byte, including fields the view does not declare.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Verified  bool   `json:"verified"`
	CreatedAt string `json:"created_at"`
	Balance   string `json:"balance,omitempty"`
	Email     string `json:"email,omitempty"`
	Children  []User `json:"children"`

	raw json.RawMessage
}

type userFields User

func (u *User) UnmarshalJSON(data []byte) error {
	var f userFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*u = User(f)
	u.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	if len(u.raw) > 0 {
		return u.raw, nil
	}
	f := userFields(u)
	if f.Children == nil {
		f.Children = []User{}
	}
	return json.Marshal(f)
}

// Raw is the record as received upstream, or nil for locally built users.
func (u User) Raw() json.RawMessage {
	return u.raw
}

// ChildSummary is the projection of a child user exposed by the child-users endpoint.
type ChildSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	Verified  bool   `json:"verified"`
}

// Summary projects the user onto the fields listed for child accounts.
func (u User) Summary() ChildSummary {
	return ChildSummary{
		ID:        u.ID,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		Verified:  u.Verified,
	}
}

// Label renders the user the way the operator console lists it.
func (u User) Label() string {
	if u.Name == "" {
		return u.ID
	}
	return u.Name + " — " + u.ID
}

// Page is one slice of a cursor-paginated listing.
type Page struct {
	Users   []User
	HasMore bool
}
