package persona

import (
	"sort"
	"strings"

	"worldbest-ai-api/internal/domain/entity"
	apperrors "worldbest-ai-api/pkg/errors"
)

// Registry 人设注册表，构造后只读，可安全并发访问
type Registry struct {
	personas map[string]*Config
}

// NewRegistry 用给定的人设集合构造注册表，名称按小写索引
func NewRegistry(configs []*Config) *Registry {
	personas := make(map[string]*Config, len(configs))
	for _, cfg := range configs {
		personas[strings.ToLower(cfg.Name)] = cfg
	}
	return &Registry{personas: personas}
}

// Get 按名称查找人设，大小写不敏感，未注册的名称返回错误
func (r *Registry) Get(name string) (*Config, error) {
	cfg, ok := r.personas[strings.ToLower(name)]
	if !ok {
		return nil, apperrors.ErrPersonaNotFound.WithDetail("未注册的人设: " + name)
	}
	return cfg, nil
}

// Names 返回所有已注册的人设名称，按字典序排序保证输出稳定
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.personas))
	for _, cfg := range r.personas {
		names = append(names, cfg.Name)
	}
	sort.Strings(names)
	return names
}

// Default 返回内置的三个人设：生成型 muse、修订型 editor、指导型 coach
func Default() *Registry {
	return NewRegistry([]*Config{
		{
			Name: "muse",
			SystemPrompt: "You are Muse, an imaginative co-writer for fiction authors. " +
				"You write vivid, sensory prose that honors the project's established world, " +
				"characters, and style profile. You take creative risks while staying " +
				"consistent with everything the author has built so far.",
			Temperature:        0.9,
			MaxTokens:          2048,
			PreferredProviders: []string{"openai", "deepseek"},
			ContextPriority: []entity.ItemType{
				entity.ItemTypeCharacter,
				entity.ItemTypeLocation,
				entity.ItemTypeCulture,
				entity.ItemTypeScene,
				entity.ItemTypeProject,
			},
			SpecialInstructions: []string{
				"Show, don't tell.",
				"Keep character voices distinct and consistent.",
				"Never contradict established canon from the provided context.",
			},
		},
		{
			Name: "editor",
			SystemPrompt: "You are Editor, a meticulous line editor for fiction. " +
				"You revise prose for clarity, rhythm, and precision while preserving " +
				"the author's voice. You explain significant changes briefly and never " +
				"invent new plot material.",
			Temperature:        0.3,
			MaxTokens:          2048,
			PreferredProviders: []string{"openai", "deepseek"},
			ContextPriority: []entity.ItemType{
				entity.ItemTypeScene,
				entity.ItemTypeCharacter,
				entity.ItemTypeProject,
				entity.ItemTypeLocation,
				entity.ItemTypeCulture,
			},
			SpecialInstructions: []string{
				"Preserve the author's voice above all.",
				"Prefer the smallest change that fixes the problem.",
			},
		},
		{
			Name: "coach",
			SystemPrompt: "You are Coach, a supportive story-development partner. " +
				"You help authors think through plot structure, character arcs, and " +
				"worldbuilding questions with concrete, actionable suggestions grounded " +
				"in the project's existing material.",
			Temperature:        0.6,
			MaxTokens:          1536,
			PreferredProviders: []string{"openai", "deepseek"},
			ContextPriority: []entity.ItemType{
				entity.ItemTypeProject,
				entity.ItemTypeScene,
				entity.ItemTypeCharacter,
				entity.ItemTypeLocation,
				entity.ItemTypeCulture,
			},
			SpecialInstructions: []string{
				"Offer options, not prescriptions.",
				"Ground every suggestion in the provided context.",
			},
		},
	})
}
