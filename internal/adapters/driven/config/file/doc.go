// Package file keeps user-editable state under the data directory:
// config.toml (ConfigStore) and the prompts/ templates (PromptStore).
package file
