package commonModels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetadataNormalize(t *testing.T) {
	in := Metadata{
		"source":   "https://example.com",
		"keywords": []any{"judges", "age", 70},
		"authors":  []string{"a", "b"},
		"pages":    12,
		"draft":    true,
		"nothing":  nil,
	}

	out := in.Normalize()

	assert.Equal(t, "https://example.com", out["source"])
	assert.Equal(t, "judges, age, 70", out["keywords"])
	assert.Equal(t, "a, b", out["authors"])
	assert.Equal(t, 12, out["pages"])
	assert.Equal(t, "true", out["draft"])
	assert.NotContains(t, out, "nothing")
}

func TestMetadataCloneIsIndependent(t *testing.T) {
	m := Metadata{"source": "a.txt"}
	c := m.Clone()
	c["source"] = "b.txt"

	assert.Equal(t, "a.txt", m.String("source"))
	assert.NotNil(t, Metadata(nil).Clone())
}

func TestRetrievalResultSources(t *testing.T) {
	r := RetrievalResult{
		{Content: "one", Metadata: Metadata{"source": "odyssey.txt"}},
		{Content: "two", Metadata: Metadata{"source": "odyssey.txt"}},
		{Content: "three", Metadata: Metadata{"source": "iliad.txt"}},
		{Content: "four"},
	}

	assert.Equal(t, []string{"odyssey.txt", "iliad.txt"}, r.Sources())
	assert.Equal(t, []string{"one", "two", "three", "four"}, r.Contents())
}

func TestSplitSystem(t *testing.T) {
	sys, rest := SplitSystem([]Message{
		SystemMessage("be brief"),
		UserMessage("hi"),
		AssistantMessage("hello"),
		SystemMessage("context"),
	})
	assert.Equal(t, []string{"be brief", "context"}, sys)
	assert.Equal(t, []Message{UserMessage("hi"), AssistantMessage("hello")}, rest)
}
