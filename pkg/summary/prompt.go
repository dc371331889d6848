package summary

import (
	"fmt"
	"strings"
)

// DefaultPromptTemplate is the fixed lecture-analysis prompt. It shapes the
// structure of the output (summary, key concepts, definitions, quiz
// questions); the content of each section comes from the model and is not
// verified here. The single %s placeholder receives the transcript.
const DefaultPromptTemplate = `You are an expert in your field be confident in your answers. Please analyze this lecture transcription and provide:

1. A concise summary of the main topics covered
2. Key concepts discussed
3. Important terms and their definitions
4. Generate 5 quiz questions based on the lecture transcription

Lecture Transcription:
%s

Please format your response clearly with sections for Summary, Key Concepts, and Terms & Definitions, and 5 questions from the summary that could be on a quiz.`

// BuildPrompt renders the prompt template with the transcript. An empty or
// malformed template falls back to the default.
func BuildPrompt(template, transcript string) string {
	if template == "" || strings.Count(template, "%s") != 1 {
		template = DefaultPromptTemplate
	}
	return fmt.Sprintf(template, transcript)
}
