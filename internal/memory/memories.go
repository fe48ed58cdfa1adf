package memory

import (
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/ppiankov/claimify/internal/linguistics"
	"github.com/ppiankov/claimify/internal/model"
)

// reobserveBoost is added to an entity's salience each time it is seen again.
const reobserveBoost = 0.1

// Memories holds one deque per speaker plus a global deque. A Memories value
// belongs to a single conversation and is not safe for concurrent use; the
// owning session serializes access.
type Memories struct {
	TopicID string

	size    int
	ling    linguistics.Linguistics
	global  *EntityDeque
	speaker map[string]*EntityDeque
}

// New creates empty memories. An empty topicID gets a random one.
func New(ling linguistics.Linguistics, size int, topicID string) *Memories {
	if topicID == "" {
		topicID = uuid.NewString()
	}
	if size <= 0 {
		size = DefaultDequeSize
	}
	return &Memories{
		TopicID: topicID,
		size:    size,
		ling:    ling,
		global:  NewEntityDeque(size),
		speaker: make(map[string]*EntityDeque),
	}
}

// Global returns the conversation-wide deque.
func (m *Memories) Global() *EntityDeque {
	return m.global
}

// Speaker returns the deque for a speaker tag, or nil if none exists.
func (m *Memories) Speaker(tag string) *EntityDeque {
	return m.speaker[tag]
}

// Speakers returns the tags that have memory.
func (m *Memories) Speakers() []string {
	out := make([]string, 0, len(m.speaker))
	for tag := range m.speaker {
		out = append(out, tag)
	}
	return out
}

// Observe extracts entities from text and pushes them to the global deque and,
// when speakerTag is set, to that speaker's deque.
func (m *Memories) Observe(text, speakerTag string, sentenceIdx int) []model.Entity {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	entities := m.ling.ExtractEntities(text, sentenceIdx)
	var dq *EntityDeque
	if speakerTag != "" {
		dq = m.speaker[speakerTag]
		if dq == nil {
			dq = NewEntityDeque(m.size)
			m.speaker[speakerTag] = dq
		}
	}
	for _, e := range entities {
		push(m.global, e)
		if dq != nil {
			push(dq, e)
		}
	}
	return entities
}

// ObserveAll observes several texts under the same speaker and index.
func (m *Memories) ObserveAll(speakerTag string, sentenceIdx int, texts ...string) {
	for _, t := range texts {
		m.Observe(t, speakerTag, sentenceIdx)
	}
}

// Reset clears every deque and keeps the topic.
func (m *Memories) Reset() {
	m.global = NewEntityDeque(m.size)
	m.speaker = make(map[string]*EntityDeque)
}

func push(d *EntityDeque, e model.Entity) {
	if prev, ok := d.Get(e.Canonical); ok {
		e.Salience = math.Min(1, math.Max(prev.Salience, e.Salience)+reobserveBoost)
		e.Aliases = mergeAliases(prev.Aliases, e.Aliases)
	}
	d.Push(e)
}

func mergeAliases(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
