// Package manager owns the lifecycle of the single model resource and
// coordinates access to it. It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, status reads.
//   - config.go: Config and package defaults.
//   - types.go: the Status enum.
//   - errors.go: error types and helpers (IsModelNotLoaded, IsTooBusy).
//   - chat.go: prompt construction and the Chat/ChatStream operations.
//   - admission.go: single in-flight generation slot.
//
// The engine handle is created at most once per process, during Load. Status
// moves Unloaded -> Loading -> Ready|Failed and never reverts; there is no
// reload path. External packages should use public methods only (New, Load,
// Status, ModelLoaded, Chat, ChatStream, Close).
package manager
