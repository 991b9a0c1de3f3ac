package core

import "strings"

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentPart is one element of a multimodal message body.
type ContentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// TextPart builds a text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

// ImagePart builds an image-reference content part.
func ImagePart(url string) ContentPart {
	return ContentPart{Type: "image_url", ImageURL: url}
}

// Message is a single vendor-neutral conversation turn. The body is either
// the plain Content string or a list of Parts; messages are value objects
// and are not mutated after construction.
type Message struct {
	Role    Role          `json:"role"`
	Content string        `json:"content,omitempty"`
	Parts   []ContentPart `json:"parts,omitempty"`
}

// NewMessage builds a plain-text message.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// NewPartsMessage builds a multimodal message from content parts.
func NewPartsMessage(role Role, parts ...ContentPart) Message {
	return Message{Role: role, Parts: parts}
}

// ContentText returns the textual body of the message: the Content string,
// or the concatenation of all text-typed parts. The boolean reports whether
// any text-bearing content exists.
func (m Message) ContentText() (string, bool) {
	if len(m.Parts) == 0 {
		return m.Content, m.Content != ""
	}
	var b strings.Builder
	found := false
	for _, p := range m.Parts {
		if p.Type == "text" {
			b.WriteString(p.Text)
			found = true
		}
	}
	return b.String(), found
}
