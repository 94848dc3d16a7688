// Package sync keeps the local scene and the remote store converged.
//
// Local mutations mark the client dirty and restart a single-shot
// debounce timer; on expiry one delta patch goes out over the
// persistent channel, or a full snapshot over the request/response
// fallback when the channel is down. Inbound snapshots are applied
// last-writer-wins with no merge. Sends are fire-and-forget: dirty is
// cleared once a send is dispatched, not once acknowledged.
package sync

import "encoding/json"

// Persistent channel event names. Outbound events carry the scene as
// an embedded JSON config document.
const (
	EventSceneUpdate      = "scene_update"
	EventSceneLoad        = "scene_load"
	EventSceneSaveDefault = "scene_save_default"

	EventSceneUpdateOK      = "scene_update_ok"
	EventSceneChanged       = "scene_changed"
	EventSceneLoadResponse  = "scene_load_response"
	EventSceneSaveDefaultOK = "scene_save_default_ok"
)

// UpdateMessage is the scene_update payload. Config carries a full or
// delta snapshot document. Sender identifies the originating client
// instance so the server can skip echoing the update back to it.
type UpdateMessage struct {
	Config     json.RawMessage `json:"config"`
	ConfigName string          `json:"config_name"`
	Sender     string          `json:"sender,omitempty"`
}

// LoadMessage is the scene_load payload.
type LoadMessage struct {
	ConfigName string `json:"config_name"`
}

// SaveDefaultMessage is the scene_save_default payload.
type SaveDefaultMessage struct {
	AdminKey string          `json:"admin_key"`
	Config   json.RawMessage `json:"config"`
}

// ChangedMessage is the scene_changed payload pushed when another
// session edits the same scene.
type ChangedMessage struct {
	Config json.RawMessage `json:"config"`
}

// LoadResponse is the scene_load_response payload.
type LoadResponse struct {
	Config    json.RawMessage `json:"config"`
	IsDefault bool            `json:"is_default"`
}
