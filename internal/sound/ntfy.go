package sound

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/oshokin/proximity-alarm/internal/config"
)

const (
	// defaultNtfyTitle is used when the config leaves the title empty.
	defaultNtfyTitle = "Proximity alarm"
	// ntfyMessage is the notification body.
	ntfyMessage = "some one took ur phone"
	// ntfyTags renders an emoji next to the notification on the phone.
	ntfyTags = "rotating_light"
)

// errNtfyStatus is returned for non-2xx ntfy responses.
var errNtfyStatus = errors.New("unexpected ntfy status")

// Ntfy publishes a notification so a subscribed phone plays its default
// notification sound.
type Ntfy struct {
	// client is the HTTP client bound to the server URL.
	client *resty.Client
	// topic is the ntfy topic.
	topic string
	// title is the notification title.
	title string
	// priority is the ntfy priority header value, empty for the default.
	priority string
}

// NewNtfy creates a player for the configured server and topic.
func NewNtfy(cfg config.NtfyConfig, timeout time.Duration) *Ntfy {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")).
		SetTimeout(timeout)

	title := cfg.Title
	if title == "" {
		title = defaultNtfyTitle
	}

	return &Ntfy{
		client:   client,
		topic:    cfg.Topic,
		title:    title,
		priority: cfg.Priority,
	}
}

// Play posts the notification.
func (n *Ntfy) Play(ctx context.Context) error {
	request := n.client.R().
		SetContext(ctx).
		SetHeader("Title", n.title).
		SetHeader("Tags", ntfyTags).
		SetBody(ntfyMessage)

	if n.priority != "" {
		request.SetHeader("Priority", n.priority)
	}

	response, err := request.Post("/" + n.topic)
	if err != nil {
		return fmt.Errorf("publish ntfy notification: %w", err)
	}

	if response.IsError() {
		return fmt.Errorf("%w: %s", errNtfyStatus, response.Status())
	}

	return nil
}
