package llm

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatHistoryKeepsLastTen(t *testing.T) {
	var history []string
	for i := 0; i < 15; i++ {
		history = append(history, fmt.Sprintf("line %d", i))
	}

	got := formatHistory(history)

	assert.Equal(t, 10, strings.Count(got, "- "))
	assert.NotContains(t, got, "line 4")
	assert.Contains(t, got, "- line 5")
	assert.Contains(t, got, "- line 14")
}

func TestSampleExamplesFallback(t *testing.T) {
	got := sampleExamples(rand.New(rand.NewSource(1)), nil)
	assert.Equal(t, `1) "hello"`, got)
}

func TestSampleExamplesCapsAtFive(t *testing.T) {
	ctx := []string{"a", "b", "c", "d", "e", "f", "g"}
	got := sampleExamples(rand.New(rand.NewSource(1)), ctx)

	lines := strings.Split(got, "\n")
	assert.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "1) "))
	assert.True(t, strings.HasPrefix(lines[4], "5) "))
}

func TestBuildPromptTogglesReplyGuideline(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	reply := buildPrompt(rng, GenerateRequest{
		CurrentMessage: "what broke the build?",
		IsReply:        true,
	})
	assert.Contains(t, reply, "helpful, relevant response")
	assert.Contains(t, reply, `"what broke the build?"`)

	ambient := buildPrompt(rng, GenerateRequest{IsReply: false})
	assert.Contains(t, ambient, "interesting observation")
	assert.NotContains(t, ambient, "helpful, relevant response")
}
