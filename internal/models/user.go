package models

// User is the identity handed to us by the authenticating proxy, usually an
// email address.
type User struct {
	ID string `json:"id"`
}

func (u *User) String() string {
	if u == nil {
		return ""
	}
	return u.ID
}
