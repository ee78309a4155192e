package model

import "sync"

// Abstract model classes. Callers may pass a class anywhere a model
// identifier is accepted; Resolve maps it to a concrete model.
const (
	ClassChatDefault      = "class:chat-default"
	ClassChatFast         = "class:chat-fast"
	ClassEmbeddingDefault = "class:embedding-default"
	ClassImageDefault     = "class:image-default"
)

var (
	classMu sync.RWMutex
	classes = map[string]string{
		ClassChatDefault:      ClaudeSonnet45.ID,
		ClassChatFast:         Gemini25Flash.ID,
		ClassEmbeddingDefault: TextEmbedding3Small.ID,
		ClassImageDefault:     GPTImage1.ID,
	}
)

// Resolve maps a model class to its concrete model identifier. Identifiers
// that are not classes resolve to themselves.
func Resolve(idOrClass string) string {
	classMu.RLock()
	defer classMu.RUnlock()
	if concrete, ok := classes[idOrClass]; ok {
		return concrete
	}
	return idOrClass
}

// SetClass rebinds a model class to a concrete model identifier.
func SetClass(class, modelID string) {
	classMu.Lock()
	classes[class] = modelID
	classMu.Unlock()
}
