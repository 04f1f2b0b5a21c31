package commonModels

import (
	"fmt"
	"strings"
)

type Metadata map[string]any

// MetaDocId names the metadata key holding the id of the source document a
// chunk was cut from. Pages of one file share it.
const MetaDocId = "doc_id"

type Document struct {
	Id       string   `json:"id"`
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// Chunk is a contiguous substring of a Document starting at rune offset Start.
type Chunk struct {
	Id       string   `json:"chunk_id"`
	DocId    string   `json:"source_doc_id"`
	Start    int      `json:"start"`
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata,omitempty"`
}

type VectorRecord struct {
	Id       string    `json:"id"`
	Vector   []float32 `json:"vector"`
	Content  string    `json:"content"`
	Metadata Metadata  `json:"metadata,omitempty"`
}

type ScoredChunk struct {
	Content  string   `json:"content"`
	Score    float32  `json:"score"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// RetrievalResult is ordered by descending score.
type RetrievalResult []ScoredChunk

func (r RetrievalResult) Contents() []string {
	out := make([]string, 0, len(r))
	for _, c := range r {
		out = append(out, c.Content)
	}
	return out
}

// Sources lists the distinct "source" metadata values in result order.
func (r RetrievalResult) Sources() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range r {
		src := c.Metadata.String("source")
		if src == "" || seen[src] {
			continue
		}
		seen[src] = true
		out = append(out, src)
	}
	return out
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func SystemMessage(text string) Message    { return Message{Role: RoleSystem, Content: text} }
func UserMessage(text string) Message      { return Message{Role: RoleUser, Content: text} }
func AssistantMessage(text string) Message { return Message{Role: RoleAssistant, Content: text} }

// SplitSystem separates system messages from the conversation for
// providers that take the system prompt as its own field.
func SplitSystem(messages []Message) (system []string, rest []Message) {
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}

func (m Metadata) String(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Clone copies the map so chunks never share metadata with their document.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return Metadata{}
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Normalize keeps strings and numbers, joins lists into "a, b" and
// stringifies anything else.
func (m Metadata) Normalize() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case string, int, int32, int64, float32, float64, uint, uint32, uint64:
			out[k] = val
		case bool:
			out[k] = fmt.Sprint(val)
		case []string:
			out[k] = strings.Join(val, ", ")
		case []any:
			parts := make([]string, 0, len(val))
			for _, p := range val {
				parts = append(parts, fmt.Sprint(p))
			}
			out[k] = strings.Join(parts, ", ")
		case nil:
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}
