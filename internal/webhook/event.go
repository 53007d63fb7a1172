// Package webhook turns voice platform callbacks into session correlation
// and committed evaluation records.
package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	TypeAssistantRequest = "assistant-request"
	TypeEndOfCallReport  = "end-of-call-report"
)

// Event is the part of a platform callback this service reads. Everything
// else in the payload is ignored.
type Event struct {
	Type        string
	CallID      string
	AssistantID string
	StartedAt   string
	EndedAt     string
	// MetadataSessionID is a session id echoed back by the platform when the
	// caller passed one in the call metadata.
	MetadataSessionID string
	Transcript        *string
	StructuredOutputs json.RawMessage
	StructuredData    json.RawMessage
}

// ParseEvent decodes a raw callback. The event type comes from message.type,
// falling back to the root type. Only unparseable JSON is an error: fields
// with an unexpected shape read as absent, so callbacks this service does not
// handle are never rejected because of their content.
func ParseEvent(raw []byte) (*Event, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty payload")
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("decode payload: invalid JSON")
	}

	root := objectOf(raw)
	msg := objectOf(root["message"])
	call := objectOf(msg["call"])

	ev := &Event{
		Type:              stringOf(msg["type"]),
		CallID:            stringOf(call["id"]),
		AssistantID:       stringOf(msg["assistantId"]),
		StartedAt:         stringOf(call["startedAt"]),
		EndedAt:           stringOf(call["endedAt"]),
		Transcript:        stringPtrOf(msg["transcript"]),
		StructuredOutputs: lookup(msg, "artifact", "structuredOutputs"),
		StructuredData:    lookup(msg, "analysis", "structuredData"),
	}
	if ev.Type == "" {
		ev.Type = stringOf(root["type"])
	}
	if ev.AssistantID == "" {
		ev.AssistantID = stringOf(lookup(msg, "assistant", "id"))
	}
	ev.MetadataSessionID = stringOf(lookup(call, "metadata", "sessionId"))
	if ev.MetadataSessionID == "" {
		ev.MetadataSessionID = stringOf(lookup(call, "assistantOverrides", "metadata", "sessionId"))
	}
	return ev, nil
}

// objectOf returns the members of a JSON object, or nil for anything else.
func objectOf(raw json.RawMessage) map[string]json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func lookup(obj map[string]json.RawMessage, path ...string) json.RawMessage {
	for i, key := range path {
		raw, ok := obj[key]
		if !ok {
			return nil
		}
		if i == len(path)-1 {
			return raw
		}
		obj = objectOf(raw)
	}
	return nil
}

// stringPtrOf returns nil unless raw is a JSON string.
func stringPtrOf(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

func stringOf(raw json.RawMessage) string {
	if p := stringPtrOf(raw); p != nil {
		return strings.TrimSpace(*p)
	}
	return ""
}
