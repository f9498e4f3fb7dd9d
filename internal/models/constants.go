// Package models contains data types and constants for the ragchat gateway.
package models

// Gateway paths, relative to the configured base URL
const (
	PathHealth         = "/health"
	PathChat           = "/chat"
	PathUploadDocument = "/upload-document"
	PathDocuments      = "/documents"
	PathRAGQuery       = "/rag-query"
)

// Model represents a chat model the gateway can forward to
type Model struct {
	Name  string
	Label string
}

// Available models
var (
	ModelGPT41Mini = Model{Name: "gpt-4.1-mini", Label: "GPT-4.1 Mini"}
	ModelGPT4      = Model{Name: "gpt-4", Label: "GPT-4"}
	ModelGPT35     = Model{Name: "gpt-3.5-turbo", Label: "GPT-3.5 Turbo"}

	// DefaultModel is used when nothing else is configured
	DefaultModel = ModelGPT41Mini
)

// DefaultDeveloperMessage is the system prompt sent with every chat request
const DefaultDeveloperMessage = "You are a helpful AI assistant. Answer questions clearly and concisely."

// ValidationDeveloperMessage and ValidationUserMessage form the minimal
// round-trip used to probe a candidate credential.
const (
	ValidationDeveloperMessage = "You are a helpful assistant."
	ValidationUserMessage      = "Hello"
)

// AllModels returns a list of all available models
func AllModels() []Model {
	return []Model{ModelGPT41Mini, ModelGPT4, ModelGPT35}
}

// ModelFromName returns a Model by its name. Unknown names are passed
// through unchanged so a gateway can serve models this list does not know.
func ModelFromName(name string) Model {
	for _, m := range AllModels() {
		if m.Name == name {
			return m
		}
	}
	if name == "" {
		return DefaultModel
	}
	return Model{Name: name, Label: name}
}

// NextModel returns the model after current in AllModels, wrapping around
func NextModel(current Model) Model {
	all := AllModels()
	for i, m := range all {
		if m.Name == current.Name {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}
