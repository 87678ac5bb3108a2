package activity

import (
	"strings"
	"time"
)

// Verbs emitted by a preferences engine.
const (
	VerbSettingChanged      = "setting.changed"
	VerbSettingFailed       = "setting.failed"
	VerbSettingExecuted     = "setting.executed"
	VerbSettingsInitialized = "settings.initialized"
)

const (
	objectSetting  = "setting"
	objectSettings = "settings"
)

// SettingEventInput describes the common fields for setting lifecycle events.
type SettingEventInput struct {
	ActorID string
	UserID  string
	// EngineID identifies the engine instance that produced the event.
	EngineID string
	Setting  string
	Choice   string
	OldValue string
	NewValue string
	Err      error
	Channel  string
	Metadata map[string]any

	OccurredAt time.Time
}

// BuildSettingChangedEvent describes a value committed by Set.
func BuildSettingChangedEvent(input SettingEventInput) Event {
	return buildSettingEvent(VerbSettingChanged, objectSetting, input)
}

// BuildSettingFailedEvent describes a rejected value or a failing callback.
func BuildSettingFailedEvent(input SettingEventInput) Event {
	return buildSettingEvent(VerbSettingFailed, objectSetting, input)
}

// BuildSettingExecutedEvent describes a callback run without persistence.
func BuildSettingExecutedEvent(input SettingEventInput) Event {
	return buildSettingEvent(VerbSettingExecuted, objectSetting, input)
}

// BuildSettingsInitializedEvent describes a completed engine initialization.
// The object is the engine itself.
func BuildSettingsInitializedEvent(input SettingEventInput) Event {
	if strings.TrimSpace(input.Setting) == "" {
		input.Setting = input.EngineID
	}
	return buildSettingEvent(VerbSettingsInitialized, objectSettings, input)
}

func buildSettingEvent(verb, objectType string, input SettingEventInput) Event {
	metadata := cloneMap(input.Metadata)
	set := func(key string, value any) {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[key] = value
	}
	if input.EngineID != "" {
		set("engine_id", input.EngineID)
	}
	if input.Choice != "" {
		set("choice", input.Choice)
	}
	if input.OldValue != "" {
		set("old_value", input.OldValue)
	}
	if input.NewValue != "" {
		set("new_value", input.NewValue)
	}
	if input.Err != nil {
		set("error", input.Err.Error())
	}

	objectID := strings.TrimSpace(input.Setting)
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
