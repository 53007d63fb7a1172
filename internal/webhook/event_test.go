package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventReadsNestedMessage(t *testing.T) {
	ev, err := ParseEvent([]byte(`{
		"type": "root-type",
		"message": {
			"type": "end-of-call-report",
			"call": {
				"id": "call-1",
				"startedAt": "2024-01-01T10:00:00Z",
				"endedAt": "2024-01-01T10:07:30Z",
				"metadata": {"sessionId": "session_team_lead_1"}
			},
			"assistant": {"id": "asst-1"},
			"transcript": "AI: hi",
			"artifact": {"structuredOutputs": {"x": {"result": {"overall": 8}}}},
			"analysis": {"structuredData": {"overall": 2}}
		}
	}`))
	require.NoError(t, err)
	assert.Equal(t, TypeEndOfCallReport, ev.Type)
	assert.Equal(t, "call-1", ev.CallID)
	assert.Equal(t, "asst-1", ev.AssistantID)
	assert.Equal(t, "2024-01-01T10:00:00Z", ev.StartedAt)
	assert.Equal(t, "session_team_lead_1", ev.MetadataSessionID)
	require.NotNil(t, ev.Transcript)
	assert.Equal(t, "AI: hi", *ev.Transcript)
	assert.NotEmpty(t, ev.StructuredOutputs)
	assert.NotEmpty(t, ev.StructuredData)
}

func TestParseEventFallsBackToRootType(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"type":"status-update"}`))
	require.NoError(t, err)
	assert.Equal(t, "status-update", ev.Type)
	assert.Nil(t, ev.Transcript)
}

func TestParseEventPrefersAssistantIDField(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"message":{"type":"assistant-request","assistantId":"a-top","assistant":{"id":"a-nested"},"call":{"id":"c"}}}`))
	require.NoError(t, err)
	assert.Equal(t, "a-top", ev.AssistantID)
}

func TestParseEventOverrideMetadata(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"message":{"call":{"assistantOverrides":{"metadata":{"sessionId":"s-9"}}}}}`))
	require.NoError(t, err)
	assert.Equal(t, "s-9", ev.MetadataSessionID)
}

func TestParseEventRejectsGarbage(t *testing.T) {
	_, err := ParseEvent([]byte(`not json`))
	assert.Error(t, err)
	_, err = ParseEvent([]byte("  "))
	assert.Error(t, err)
}

func TestParseEventToleratesOffShapeFields(t *testing.T) {
	payloads := map[string]string{
		"array transcript": `{"message":{"type":"status-update","transcript":["a","b"]}}`,
		"string assistant": `{"message":{"type":"conversation-update","assistant":"asst-1"}}`,
		"string message":   `{"type":"ping","message":"hello"}`,
		"numeric call":     `{"message":{"type":"status-update","call":42}}`,
		"non-object root":  `[1,2,3]`,
		"null metadata":    `{"message":{"type":"assistant-request","call":{"id":"c","metadata":null}}}`,
	}
	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			_, err := ParseEvent([]byte(payload))
			require.NoError(t, err)
		})
	}

	ev, err := ParseEvent([]byte(payloads["string message"]))
	require.NoError(t, err)
	assert.Equal(t, "ping", ev.Type)

	ev, err = ParseEvent([]byte(payloads["string assistant"]))
	require.NoError(t, err)
	assert.Empty(t, ev.AssistantID)
}

func TestParseEventNonStringFieldsReadAsAbsent(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"message":{"type":"end-of-call-report",
		"call":{"id":"call-1","startedAt":1704103200000,"endedAt":{"t":1},"metadata":{"sessionId":7}},
		"transcript":{"text":"hi"}}}`))
	require.NoError(t, err)
	assert.Equal(t, TypeEndOfCallReport, ev.Type)
	assert.Equal(t, "call-1", ev.CallID)
	assert.Empty(t, ev.StartedAt)
	assert.Empty(t, ev.EndedAt)
	assert.Empty(t, ev.MetadataSessionID)
	assert.Nil(t, ev.Transcript)
}

func TestParseEventNullTranscriptIsAbsent(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"message":{"type":"end-of-call-report","transcript":null}}`))
	require.NoError(t, err)
	assert.Nil(t, ev.Transcript)
}
