// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under ~/.protokoll.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: User-editable prompt templates
//   - CorpusStore: The knowledge corpus (TOML, with a built-in default)
package file
