package llm

import (
	"fmt"
	"math/rand"
	"strings"
)

const persona = `You are a tech-savvy participant in a Discord server discussion.
Key guidelines:
- Write naturally but professionally, like in a technical discussion
- Use normal punctuation but don't be overly formal
- Skip emojis and internet slang
- Keep messages concise and clear
- Stay on topic and contribute meaningful insights
- Do not reveal you are an AI
- Write as a knowledgeable member of this chat`

// buildPrompt assembles the single system message driving one generation:
// persona, a handful of sampled example messages for tone, the recent
// personal dialog, the channel context, and the message being addressed.
func buildPrompt(rng *rand.Rand, req GenerateRequest) string {
	var sb strings.Builder

	sb.WriteString(persona)
	sb.WriteString("\n\nHere are some recent messages from this server for context:\n")
	sb.WriteString(sampleExamples(rng, req.ChannelContext))

	sb.WriteString("\n\nWhen participating:\n")
	if req.IsReply {
		sb.WriteString("- Provide a helpful, relevant response to the current message\n")
	} else {
		sb.WriteString("- Share an interesting observation or question based on recent discussion\n")
	}

	sb.WriteString("\nRecent personal dialog (you <-> user):\n")
	sb.WriteString(formatHistory(req.PersonalHistory))
	sb.WriteString("\n\nRecent channel context:\n")
	sb.WriteString(formatHistory(req.ChannelContext))

	sb.WriteString(fmt.Sprintf("\n\nCurrent message to address: %q\n", req.CurrentMessage))

	sb.WriteString(`
Instructions:
- Write in a natural but clear style
- Use normal punctuation
- Focus on the discussion topic
- Base responses on the channel context
- Keep responses brief but informative
- Match the general tone of the conversation`)

	return sb.String()
}

// formatHistory renders the last ten entries as a bullet list.
func formatHistory(history []string) string {
	if len(history) > 10 {
		history = history[len(history)-10:]
	}
	lines := make([]string, 0, len(history))
	for _, h := range history {
		lines = append(lines, "- "+h)
	}
	return strings.Join(lines, "\n")
}

// sampleExamples picks up to five messages from the channel context to anchor
// the register of the reply.
func sampleExamples(rng *rand.Rand, channelContext []string) string {
	n := len(channelContext)
	if n == 0 {
		return `1) "hello"`
	}

	k := 5
	if n < k {
		k = n
	}
	picked := rng.Perm(n)[:k]

	lines := make([]string, 0, k)
	for i, idx := range picked {
		lines = append(lines, fmt.Sprintf("%d) %q", i+1, channelContext[idx]))
	}
	return strings.Join(lines, "\n")
}
