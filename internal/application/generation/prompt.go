package generation

import (
	"fmt"
	"strings"

	"worldbest-ai-api/internal/application/persona"
	"worldbest-ai-api/internal/domain/entity"
)

// intentDirectives 每种生成意图对应的任务指令
var intentDirectives = map[entity.GenerationIntent]string{
	entity.IntentGenerateScene:    "Write a new scene for this story.",
	entity.IntentContinueScene:    "Continue the scene from where it leaves off, keeping tone and pacing consistent.",
	entity.IntentImproveDialogue:  "Improve the dialogue in the given passage: sharpen voices, cut filler, keep subtext.",
	entity.IntentDescribeSetting:  "Write an evocative description of the setting, engaging multiple senses.",
	entity.IntentDevelopCharacter: "Develop the character further: motivations, contradictions, and how they change.",
	entity.IntentBrainstorm:       "Brainstorm ideas for this story. Offer several distinct directions with brief rationale.",
}

// lengthHints 目标长度档位对应的提示
var lengthHints = map[string]string{
	"short":  "Keep the response short, around 150-300 words.",
	"medium": "Aim for a medium-length response, around 400-700 words.",
	"long":   "Write a substantial response, around 900-1500 words.",
}

// styleHints 风格强度档位对应的提示
var styleHints = map[string]string{
	"subtle":     "Apply the project's style profile with a light touch.",
	"moderate":   "Apply the project's style profile consistently.",
	"pronounced": "Lean strongly into the project's style profile.",
}

// SerializeContext 将上下文条目按顺序序列化为提示词片段
func SerializeContext(items []entity.ContextItem) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "[%s] %s\n%s\n\n", item.Type, item.Title, item.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

// BuildSystemPrompt 组合最终系统提示词：
// 人设系统提示 + 特殊指令 + 序列化上下文
func BuildSystemPrompt(cfg *persona.Config, items []entity.ContextItem) string {
	var b strings.Builder
	b.WriteString(cfg.SystemPrompt)
	if len(cfg.SpecialInstructions) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(cfg.SpecialInstructions, "\n"))
	}
	if ctx := SerializeContext(items); ctx != "" {
		b.WriteString("\n\n## Story context\n\n")
		b.WriteString(ctx)
	}
	return b.String()
}

// BuildUserPrompt 从意图与参数组合用户提示词
func BuildUserPrompt(intent entity.GenerationIntent, params *entity.GenerationParams) string {
	parts := []string{intentDirectives[intent]}
	if params.Instruction != "" {
		parts = append(parts, params.Instruction)
	}
	if hint, ok := lengthHints[params.Length]; ok {
		parts = append(parts, hint)
	}
	if hint, ok := styleHints[params.StyleIntensity]; ok {
		parts = append(parts, hint)
	}
	return strings.Join(parts, "\n\n")
}
