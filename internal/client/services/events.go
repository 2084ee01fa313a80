package services

import (
	"context"
	"encoding/json"

	"github.com/ryliegao/ricebook-client/internal/pubsub"
)

// TopicFolloweeRemoved carries FolloweeRemoved events. View components
// subscribe to it to re-render the user list after an unfollow.
const TopicFolloweeRemoved = "followee.removed"

// FolloweeRemoved announces a successful unfollow together with the
// authoritative following set the server returned.
type FolloweeRemoved struct {
	Username  string   `json:"username"`
	Following []string `json:"following"`
}

func publishFolloweeRemoved(ctx context.Context, pub pubsub.Publisher, ev FolloweeRemoved) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return pub.Publish(ctx, pubsub.Message{Topic: TopicFolloweeRemoved, Payload: payload})
}

// DecodeFolloweeRemoved unmarshals a bus message published on
// TopicFolloweeRemoved.
func DecodeFolloweeRemoved(msg pubsub.Message) (FolloweeRemoved, error) {
	var ev FolloweeRemoved
	err := json.Unmarshal(msg.Payload, &ev)
	return ev, err
}
