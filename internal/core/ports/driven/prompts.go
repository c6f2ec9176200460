package driven

// PromptStore serves the instruction templates sent to the generator.
type PromptStore interface {
	// Load returns the named template. Stores fall back to a built-in text
	// for well-known names and return an error for unknown ones.
	Load(name string) (string, error)

	// Reload drops cached templates.
	Reload()
}

// Well-known prompt names.
const (
	// PromptAskGuardrail instructs the generator to answer only from the
	// supplied context, reply with a fixed sentence when the answer is absent
	// and cite chunks as [#id]. The template has no format placeholders.
	PromptAskGuardrail = "ask_guardrail"
)

// PromptStoreAware is implemented by services whose prompts can be replaced
// after construction. Without a store they use domain defaults.
type PromptStoreAware interface {
	SetPromptStore(store PromptStore)
}
