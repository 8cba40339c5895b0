// Package prompts holds the prompt templates and the fixed response schemas
// sent with every structured-output request. The schemas are the contract:
// provider output that does not parse as the schema is an error, never
// silently accepted.
package prompts

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/creatorly/styletrain/internal/domain"
)

// TranscriptionSystemPrompt instructs the model to transcribe one video's
// audio into the fixed transcript schema.
const TranscriptionSystemPrompt = `You are a precise audio transcription engine. Transcribe the spoken content of the provided video audio. Return the full transcript text and timed segments. Do not summarize, translate, or editorialize. If a span is inaudible, skip it rather than guessing.`

// StyleAnalysisSystemPrompt instructs the model to derive a creator style
// profile from channel and video metadata.
const StyleAnalysisSystemPrompt = `You are a content strategy analyst. Given a creator's channel metadata and the metadata of several of their videos, derive their content style profile. Ground every attribute in the provided data; do not invent facts about the creator. Keep each string field under 300 characters.`

// TranscriptionSchema is the fixed JSON schema for transcription responses
// ({videoId, transcriptText, segments:[{start,end,text}]}).
func TranscriptionSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"videoId":        map[string]interface{}{"type": "string"},
			"transcriptText": map[string]interface{}{"type": "string"},
			"segments": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"start": map[string]interface{}{"type": "number"},
						"end":   map[string]interface{}{"type": "number"},
						"text":  map[string]interface{}{"type": "string"},
					},
					"required": []string{"start", "end", "text"},
				},
			},
		},
		"required": []string{"videoId", "transcriptText", "segments"},
	}
}

// StyleAnalysisSchema is the fixed JSON schema for style analysis responses.
func StyleAnalysisSchema() map[string]interface{} {
	stringArray := func() map[string]interface{} {
		return map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		}
	}
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"tone":               map[string]interface{}{"type": "string"},
			"vocabularyLevel":    map[string]interface{}{"type": "string"},
			"pacing":             map[string]interface{}{"type": "string"},
			"themes":             stringArray(),
			"humorStyle":         map[string]interface{}{"type": "string"},
			"narrativeStructure": map[string]interface{}{"type": "string"},
			"visualStyle":        map[string]interface{}{"type": "string"},
			"audienceEngagement": stringArray(),
			"recommendations": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"contentIdeas":     stringArray(),
					"titleFormulas":    stringArray(),
					"hookTechniques":   stringArray(),
					"uploadCadence":    map[string]interface{}{"type": "string"},
					"audienceGrowth":   stringArray(),
					"thumbnailAdvice":  map[string]interface{}{"type": "string"},
					"collaborationFit": stringArray(),
				},
				"required": []string{"contentIdeas", "titleFormulas", "hookTechniques", "uploadCadence", "audienceGrowth", "thumbnailAdvice", "collaborationFit"},
			},
		},
		"required": []string{"tone", "vocabularyLevel", "pacing", "themes", "humorStyle", "narrativeStructure", "visualStyle", "audienceEngagement", "recommendations"},
	}
}

// TranscriptionPrompt builds the user prompt for one video's transcription.
func TranscriptionPrompt(videoID, sourceURL, audioRef string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Transcribe the audio of video %s.\n", videoID)
	fmt.Fprintf(&b, "Source: %s\n", sourceURL)
	if audioRef != "" {
		fmt.Fprintf(&b, "Extracted audio reference: %s\n", audioRef)
	}
	b.WriteString("Set videoId to exactly the ID above.")
	return b.String()
}

// StyleAnalysisPrompt builds the single analysis prompt embedding the
// channel metadata and every video's metadata.
func StyleAnalysisPrompt(channelTitle string, videos []domain.VideoRecord, transcripts []domain.TranscriptAsset) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Channel: %s\n", channelTitle)
	fmt.Fprintf(&b, "Videos analyzed: %d\n\n", len(videos))

	transcriptByVideo := make(map[string]string, len(transcripts))
	for _, t := range transcripts {
		transcriptByVideo[t.VideoID] = t.TranscriptText
	}

	for i, v := range videos {
		fmt.Fprintf(&b, "--- Video %d ---\n", i+1)
		fmt.Fprintf(&b, "Title: %s\n", v.Title)
		fmt.Fprintf(&b, "Description: %s\n", truncate(v.Description, 1000))
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(v.Tags, ", "))
		fmt.Fprintf(&b, "Duration: %s\n", v.Duration)
		fmt.Fprintf(&b, "Views: %d, Likes: %d, Comments: %d\n", v.Stats.Views, v.Stats.Likes, v.Stats.Comments)
		if len(v.TopicCategories) > 0 {
			fmt.Fprintf(&b, "Topics: %s\n", strings.Join(v.TopicCategories, ", "))
		}
		if transcript, ok := transcriptByVideo[v.ID]; ok && transcript != "" {
			fmt.Fprintf(&b, "Transcript excerpt: %s\n", truncate(transcript, 2000))
		}
		b.WriteString("\n")
	}

	b.WriteString("Derive the creator's style profile from the data above.")
	return b.String()
}

// truncate cuts s to at most max bytes, backing up to a rune boundary so
// multi-byte characters are never split.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max] + "…"
}
