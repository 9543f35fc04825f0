package assembly

import (
	"fmt"
	"strings"

	"worldbest-ai-api/internal/domain/entity"
)

// fieldFilter 字段过滤器，为空表示渲染全部语义段落
type fieldFilter map[string]struct{}

func newFieldFilter(fields []string) fieldFilter {
	if len(fields) == 0 {
		return nil
	}
	f := make(fieldFilter, len(fields))
	for _, name := range fields {
		f[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	return f
}

// wants 判断段落是否应该渲染，缺省全量渲染
func (f fieldFilter) wants(name string) bool {
	if f == nil {
		return true
	}
	_, ok := f[name]
	return ok
}

// sectionWriter 按固定顺序拼接段落，空值段落自动省略
type sectionWriter struct {
	b strings.Builder
}

func (w *sectionWriter) add(label, value string) {
	if value == "" {
		return
	}
	if w.b.Len() > 0 {
		w.b.WriteString("\n")
	}
	w.b.WriteString(label)
	w.b.WriteString(": ")
	w.b.WriteString(value)
}

func (w *sectionWriter) String() string {
	return w.b.String()
}

// FormatProject 渲染项目概要，始终全量渲染（种子条目不受字段过滤影响）
func FormatProject(p *entity.Project) string {
	var w sectionWriter
	w.add("Title", p.Title)
	w.add("Genre", p.Genre)
	w.add("Synopsis", p.Synopsis)
	w.add("Time period", p.TimePeriod)
	w.add("Target audience", p.TargetAudience)
	if sp := p.StyleProfile; sp != nil {
		w.add("Tone", sp.Tone)
		w.add("Point of view", sp.POV)
		w.add("Tense", sp.Tense)
		if len(sp.Influences) > 0 {
			w.add("Influences", strings.Join(sp.Influences, ", "))
		}
		if len(sp.AvoidedTropes) > 0 {
			w.add("Avoided tropes", strings.Join(sp.AvoidedTropes, ", "))
		}
	}
	return w.String()
}

// FormatCharacter 渲染角色，段落顺序固定：
// aliases → appearance → personality → backstory → relationships
func FormatCharacter(c *entity.Character, fields []string) string {
	f := newFieldFilter(fields)
	var w sectionWriter
	if f.wants("aliases") && len(c.Aliases) > 0 {
		w.add("Aliases", strings.Join(c.Aliases, ", "))
	}
	if f.wants("age") {
		w.add("Age", c.Age)
	}
	if f.wants("role") {
		w.add("Role", c.Role)
	}
	if f.wants("appearance") {
		w.add("Appearance", c.Appearance)
	}
	if f.wants("personality") {
		w.add("Personality", c.Personality)
	}
	if f.wants("backstory") {
		w.add("Backstory", c.Backstory)
	}
	if f.wants("relationships") && len(c.Relationships) > 0 {
		parts := make([]string, 0, len(c.Relationships))
		for _, r := range c.Relationships {
			name := r.Name
			if name == "" {
				name = r.CharacterID
			}
			if r.Description != "" {
				parts = append(parts, fmt.Sprintf("%s (%s): %s", name, r.Kind, r.Description))
			} else {
				parts = append(parts, fmt.Sprintf("%s (%s)", name, r.Kind))
			}
		}
		w.add("Relationships", strings.Join(parts, "; "))
	}
	return w.String()
}

// FormatLocation 渲染地点
func FormatLocation(l *entity.Location, fields []string) string {
	f := newFieldFilter(fields)
	var w sectionWriter
	if f.wants("kind") {
		w.add("Kind", l.Kind)
	}
	if f.wants("description") {
		w.add("Description", l.Description)
	}
	if f.wants("atmosphere") {
		w.add("Atmosphere", l.Atmosphere)
	}
	if f.wants("significance") {
		w.add("Significance", l.Significance)
	}
	return w.String()
}

// FormatScene 渲染场景
func FormatScene(s *entity.Scene, fields []string) string {
	f := newFieldFilter(fields)
	var w sectionWriter
	if f.wants("summary") {
		w.add("Summary", s.Summary)
	}
	if f.wants("content") {
		w.add("Content", s.Content)
	}
	return w.String()
}

// FormatCulture 渲染文化设定
func FormatCulture(c *entity.Culture, fields []string) string {
	f := newFieldFilter(fields)
	var w sectionWriter
	if f.wants("values") {
		w.add("Values", c.Values)
	}
	if f.wants("customs") {
		w.add("Customs", c.Customs)
	}
	if f.wants("language") {
		w.add("Language", c.Language)
	}
	if f.wants("social_norms") {
		w.add("Social norms", c.SocialNorms)
	}
	if f.wants("history") {
		w.add("History", c.History)
	}
	return w.String()
}
