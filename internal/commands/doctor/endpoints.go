package doctor

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/hay-kot/parley/internal/core/launch"
)

// Pinger is the part of the dictionary client the endpoint check needs.
type Pinger interface {
	Ping(ctx context.Context) error
	CredentialsIncluded() bool
}

// DictionaryCheck probes the word API and reports whether session cookies
// will be sent with requests.
type DictionaryCheck struct {
	client  Pinger
	baseURL string
	userID  string
}

func NewDictionaryCheck(client Pinger, baseURL, userID string) *DictionaryCheck {
	return &DictionaryCheck{client: client, baseURL: baseURL, userID: userID}
}

func (c *DictionaryCheck) Name() string {
	return "Dictionary API"
}

func (c *DictionaryCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if c.client == nil {
		result.add("Client", StatusFail, "dictionary client not configured")
		return result
	}

	host := c.baseURL
	if u, err := url.Parse(c.baseURL); err == nil && u.Host != "" {
		host = u.Host
	}

	if err := c.client.Ping(ctx); err != nil {
		detail := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			detail = fmt.Sprintf("%s did not answer in time", host)
		}
		result.add("Reachable", StatusFail, detail)
	} else {
		result.add("Reachable", StatusPass, host)
	}

	if c.client.CredentialsIncluded() {
		result.add("Cookies", StatusPass, "sent with every request")
	} else {
		result.add("Cookies", StatusWarn, "app origin differs from the API; requests go without credentials")
	}

	if c.userID == "" {
		result.add("User", StatusWarn, "no user id; pass --user-id or --launch-url")
	} else {
		result.add("User", StatusPass, c.userID)
	}

	return result
}

// ChatCheck reports which push endpoint a room link resolves to.
type ChatCheck struct {
	endpoint string
	roomURL  string
}

// NewChatCheck checks the configured endpoint, or the one derived from
// roomURL when no endpoint is configured.
func NewChatCheck(endpoint, roomURL string) *ChatCheck {
	return &ChatCheck{endpoint: endpoint, roomURL: roomURL}
}

func (c *ChatCheck) Name() string {
	return "Chat"
}

func (c *ChatCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if c.endpoint != "" {
		result.add("Endpoint", StatusPass, c.endpoint)
		return result
	}

	if c.roomURL == "" {
		result.add("Endpoint", StatusPass, "derived from each room link")
		return result
	}

	endpoint := launch.EndpointFor(c.roomURL)
	if endpoint == "" {
		result.add("Endpoint", StatusFail, fmt.Sprintf("cannot derive an endpoint from %q", c.roomURL))
		return result
	}
	result.add("Endpoint", StatusPass, endpoint)
	return result
}
