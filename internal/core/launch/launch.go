// Package launch extracts room and user identity from the URLs the web
// front-ends were opened with.
package launch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

var ErrNoRoom = errors.New("room id is not set")

// Room identifies a chat room and the token that grants access to it.
type Room struct {
	ID    string
	Token string
}

// ParseRoomURL reads a room link: the last path segment is the room id and
// the token query parameter authorizes the connection.
func ParseRoomURL(raw string) (Room, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Room{}, fmt.Errorf("parse room url: %w", err)
	}

	id := path.Base(strings.TrimRight(u.Path, "/"))
	if id == "." || id == "/" {
		id = ""
	}

	room := Room{ID: id, Token: u.Query().Get("token")}
	if room.ID == "" {
		return Room{}, fmt.Errorf("parse room url %q: %w", raw, ErrNoRoom)
	}
	return room, nil
}

// EndpointFor derives the push endpoint from a room link: the same host
// over ws or wss, path /ws. It returns "" when the link has no host.
func EndpointFor(roomURL string) string {
	u, err := url.Parse(strings.TrimSpace(roomURL))
	if err != nil || u.Host == "" {
		return ""
	}

	scheme := "ws"
	if u.Scheme == "https" || u.Scheme == "wss" {
		scheme = "wss"
	}
	return (&url.URL{Scheme: scheme, Host: u.Host, Path: "/ws"}).String()
}

// Source names where a user id came from.
type Source string

const (
	SourceNone      Source = ""
	SourceFlag      Source = "flag"
	SourceConfig    Source = "config"
	SourceLaunchURL Source = "launch-url"
)

// ResolveUserID picks the first non-empty user id from the flag (or its
// environment variable), the config file and finally the launch URL.
func ResolveUserID(flag, configured, launchURL string) (string, Source, error) {
	if v := strings.TrimSpace(flag); v != "" {
		return v, SourceFlag, nil
	}
	if v := strings.TrimSpace(configured); v != "" {
		return v, SourceConfig, nil
	}
	if strings.TrimSpace(launchURL) == "" {
		return "", SourceNone, nil
	}

	id, err := UserIDFromLaunchURL(launchURL)
	if err != nil {
		return "", SourceNone, err
	}
	if id == "" {
		return "", SourceNone, nil
	}
	return id, SourceLaunchURL, nil
}

// UserIDFromLaunchURL reads the user id of a mini-app launch link. The id of
// the user JSON object inside the tgWebAppData hash payload wins; the user_id
// query parameter is the fallback, also when the payload cannot be decoded.
// An empty id with a nil error means the URL carries no identity.
func UserIDFromLaunchURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse launch url: %w", err)
	}

	id, webAppErr := webAppUserID(u)
	if id != "" {
		return id, nil
	}
	if id := u.Query().Get("user_id"); id != "" {
		return id, nil
	}
	return "", webAppErr
}

func webAppUserID(u *url.URL) (string, error) {
	hash, err := url.ParseQuery(u.EscapedFragment())
	if err != nil {
		return "", fmt.Errorf("parse launch url fragment: %w", err)
	}

	data := hash.Get("tgWebAppData")
	if data == "" {
		return "", nil
	}

	payload, err := url.ParseQuery(data)
	if err != nil {
		return "", fmt.Errorf("parse tgWebAppData: %w", err)
	}

	userJSON := payload.Get("user")
	if userJSON == "" {
		return "", nil
	}

	var user struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return "", fmt.Errorf("decode launch user: %w", err)
	}

	return rawID(user.ID), nil
}

// rawID accepts a JSON number or string.
func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
