package activity

import (
	"errors"
	"testing"
	"time"
)

func TestBuildSettingChangedEvent(t *testing.T) {
	at := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	event := BuildSettingChangedEvent(SettingEventInput{
		ActorID:    " actor ",
		EngineID:   "engine-1",
		Setting:    " theme ",
		Choice:     "dark",
		OldValue:   "light",
		NewValue:   "dark",
		Metadata:   map[string]any{"source": "panel"},
		OccurredAt: at,
	})

	if event.Verb != VerbSettingChanged || event.ObjectType != "setting" || event.ObjectID != "theme" {
		t.Fatalf("unexpected event identity: %+v", event)
	}
	if event.ActorID != "actor" {
		t.Fatalf("expected trimmed actor, got %q", event.ActorID)
	}
	want := map[string]any{
		"source":    "panel",
		"engine_id": "engine-1",
		"choice":    "dark",
		"old_value": "light",
		"new_value": "dark",
	}
	for key, value := range want {
		if event.Metadata[key] != value {
			t.Fatalf("expected metadata %s=%v, got %v", key, value, event.Metadata[key])
		}
	}
	if !event.OccurredAt.Equal(at) {
		t.Fatalf("expected occurred_at %v, got %v", at, event.OccurredAt)
	}
}

func TestBuildSettingFailedEventCarriesError(t *testing.T) {
	input := SettingEventInput{Setting: "theme", NewValue: "purple", Err: errors.New("not a choice")}
	event := BuildSettingFailedEvent(input)
	if event.Verb != VerbSettingFailed {
		t.Fatalf("expected failed verb, got %q", event.Verb)
	}
	if event.Metadata["error"] != "not a choice" {
		t.Fatalf("expected error metadata, got %v", event.Metadata)
	}
	if _, ok := event.Metadata["old_value"]; ok {
		t.Fatalf("expected empty old value omitted, got %v", event.Metadata)
	}
}

func TestBuildSettingsInitializedEventUsesEngineAsObject(t *testing.T) {
	event := BuildSettingsInitializedEvent(SettingEventInput{EngineID: "engine-1"})
	if event.ObjectType != "settings" || event.ObjectID != "engine-1" {
		t.Fatalf("unexpected initialized event: %+v", event)
	}
	if !NormalizeEvent(event).Valid() {
		t.Fatalf("expected initialized event to be deliverable")
	}

	anonymous := BuildSettingsInitializedEvent(SettingEventInput{})
	if anonymous.ObjectID != "settings" {
		t.Fatalf("expected object type fallback, got %q", anonymous.ObjectID)
	}
}

func TestBuildSettingExecutedEventWithoutMetadata(t *testing.T) {
	event := BuildSettingExecutedEvent(SettingEventInput{Setting: "theme"})
	if event.Verb != VerbSettingExecuted {
		t.Fatalf("expected executed verb, got %q", event.Verb)
	}
	if event.Metadata != nil {
		t.Fatalf("expected nil metadata, got %v", event.Metadata)
	}
}
