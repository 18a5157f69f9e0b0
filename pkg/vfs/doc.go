// Package vfs provides the in-memory virtual file system shared by the
// desktop's Explorer, Terminal and editor-style apps.
//
// The file system is a tree of folders and files rooted at a single folder.
// Trees are immutable values: every mutation returns a new *Tree that shares
// all untouched subtrees with the previous one, so a reader holding an older
// snapshot never observes a partially applied change.
//
// # Features
//
//   - Path resolution with `.`, `..` (clamped at the root) and both `/` and `\`
//     separators
//   - Copy-on-write create, write, delete, move and copy
//   - Multi-step transactions via Mutate
//   - Upload with collision renaming (`name(1).ext`)
//   - Explorer ordering and shell globbing
//   - JSON encoding compatible with persisted desktop snapshots
//
// # Usage
//
//	t := vfs.DefaultTree()
//	t, err := t.CreateFolder(vfs.ResolvePath("projects", nil))
//	if err != nil {
//		log.Fatal(err)
//	}
//	node, err := t.Lookup(vfs.ResolvePath("/projects", nil))
package vfs
