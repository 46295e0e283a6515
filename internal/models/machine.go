package models

import "time"

// Machine is a registered benchmarking host. PrivateKey holds the PEM text
// issued at registration and is never rendered back to anyone but the owner
// at registration time. Digest is the HMAC digest its upload script was
// issued with.
type Machine struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	PrivateKey  string    `db:"private_key" json:"-"`
	PublicKey   string    `db:"public_key" json:"public_key"`
	Digest      string    `db:"digest" json:"digest"`
	Hardware    Hardware  `db:"hardware" json:"hardware,omitempty"`
	Owner       string    `db:"owner" json:"owner"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
