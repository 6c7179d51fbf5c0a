package faqbot

import (
	"fmt"
	"strings"
)

// FallbackAnswer is the sentence the model is told to give when the context
// does not contain the answer.
const FallbackAnswer = "I don't have enough information to answer that question."

const promptTemplate = `
Use the following context to answer the question. If the answer cannot be found in the context, say "%s"

Context:
%s

Question: %s

Answer:`

// ComposePrompt embeds the chunks, in order, and the question into the
// fixed answering template.
func ComposePrompt(chunks []string, question string) string {
	context := strings.Join(chunks, "\n\n")
	return fmt.Sprintf(promptTemplate, FallbackAnswer, context, question)
}
