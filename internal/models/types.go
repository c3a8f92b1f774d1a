package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Entry is a submitted lead or service request. Fields the analyzers do not
// read are kept so the record can be echoed back unchanged.
type Entry struct {
	ID           json.RawMessage
	Content      string
	Offer        string
	Reason       string
	FileName     string
	CreatedAt    string
	LastAccessed string

	fields map[string]json.RawMessage
}

type UsageLog struct {
	ResourceID string
	IPAddress  string
	Timestamp  string

	fields map[string]json.RawMessage
}

type Payload struct {
	Entries   []Entry    `json:"entries"`
	UsageLogs []UsageLog `json:"usage_logs"`
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to decode entry: %w", err)
	}

	*e = Entry{
		ID:           fields["id"],
		Content:      text(fields["content"]),
		Offer:        text(fields["offer"]),
		Reason:       text(fields["reason"]),
		FileName:     text(fields["fileName"]),
		CreatedAt:    text(fields["createdAt"]),
		LastAccessed: text(fields["lastAccessed"]),
		fields:       fields,
	}
	return nil
}

func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Fields())
}

// Fields returns a fresh copy of the record's top-level fields.
func (e Entry) Fields() map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(e.fields)+7)
	for k, v := range e.fields {
		out[k] = v
	}
	if e.fields != nil {
		return out
	}

	if e.ID != nil {
		out["id"] = e.ID
	}
	setText(out, "content", e.Content)
	setText(out, "offer", e.Offer)
	setText(out, "reason", e.Reason)
	setText(out, "fileName", e.FileName)
	setText(out, "createdAt", e.CreatedAt)
	setText(out, "lastAccessed", e.LastAccessed)
	return out
}

// IDValue returns the id as it appeared in the input, or JSON null.
func (e Entry) IDValue() json.RawMessage {
	if len(e.ID) == 0 {
		return json.RawMessage("null")
	}
	return e.ID
}

// Text joins content, offer and reason the way every analyzer reads an entry.
func (e Entry) Text() string {
	return e.Content + " " + e.Offer + " " + e.Reason
}

// FileType is the extension of FileName without the dot, or "" when there is no file.
func (e Entry) FileType() string {
	if e.FileName == "" {
		return ""
	}
	parts := strings.Split(e.FileName, ".")
	return parts[len(parts)-1]
}

func (l *UsageLog) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to decode usage log: %w", err)
	}

	*l = UsageLog{
		ResourceID: text(fields["resource_id"]),
		IPAddress:  text(fields["ip_address"]),
		Timestamp:  text(fields["timestamp"]),
		fields:     fields,
	}
	return nil
}

func (l UsageLog) MarshalJSON() ([]byte, error) {
	if l.fields != nil {
		return json.Marshal(l.fields)
	}
	return json.Marshal(map[string]string{
		"resource_id": l.ResourceID,
		"ip_address":  l.IPAddress,
		"timestamp":   l.Timestamp,
	})
}

// ResourceIDValue returns the resource id in a canonical JSON form: strings
// re-encoded, other values compacted, and null when the field is missing.
// Equal ids give byte-equal results.
func (l UsageLog) ResourceIDValue() json.RawMessage {
	if l.fields == nil {
		if l.ResourceID == "" {
			return json.RawMessage("null")
		}
		return StringID(l.ResourceID)
	}

	raw, ok := l.fields["resource_id"]
	if !ok || len(raw) == 0 {
		return json.RawMessage("null")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return StringID(s)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}

// text decodes a loosely typed JSON value. Strings are unquoted, null becomes
// "", and anything else keeps its literal JSON text.
func text(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "null" {
		return ""
	}
	return trimmed
}

func setText(out map[string]json.RawMessage, key, value string) {
	if value == "" {
		return
	}
	encoded, _ := json.Marshal(value)
	out[key] = encoded
}

// StringID encodes id as a JSON string for use as Entry.ID.
func StringID(id string) json.RawMessage {
	encoded, _ := json.Marshal(id)
	return encoded
}

// ParsePayload decodes the data-intelligence input document.
func ParsePayload(data []byte) (*Payload, error) {
	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse payload: %w", err)
	}
	return &payload, nil
}
