// Package commands implements the palletforge CLI verbs. Every verb talks
// to a running palletforge server over its HTTP API as an admin actor; the
// server remains the single writer.
package commands

import (
	"github.com/madan-prog/palletforge/lifecycle"
	"github.com/madan-prog/palletforge/syncer"
)

// Options carries the connection settings shared by all verbs, bound to
// persistent flags on the root command.
type Options struct {
	// ServerURL is the base URL of the palletforge HTTP API.
	ServerURL string
	// NATSURL is the broker address, used only by verbs that subscribe
	// to the event stream.
	NATSURL string
	// UserID identifies the operator in audit trails.
	UserID string
}

func (o *Options) client() *syncer.Client {
	return syncer.NewClient(o.ServerURL, lifecycle.RoleAdmin, o.UserID)
}

// adminScope selects the whole collection, or one user's slice of it.
func adminScope(user string) syncer.Scope {
	if user == "" {
		return syncer.Scope{Admin: true}
	}
	return syncer.Scope{UserID: user}
}
