package ws

import "fmt"

// Topic identifies a delivery room on the hub. Subscriptions and publishes
// are keyed by Topic value, so two topics are the same room exactly when
// their kind and id match.
type Topic struct {
	kind string
	id   uint
}

// UserTopic returns the per-user topic that carries chat events addressed
// to the given user.
func UserTopic(userID uint) Topic {
	return Topic{kind: "user", id: userID}
}

// UserID returns the user id for a user topic.
func (t Topic) UserID() uint {
	return t.id
}

func (t Topic) String() string {
	return fmt.Sprintf("%s_%d", t.kind, t.id)
}
