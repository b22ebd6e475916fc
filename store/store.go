// Package store 提供快照存储的基础设施实现。
//
// 注意：此包只包含实现，接口定义在 core 包（core.SnapshotStore）。
//
// 示例：
//
//	var s core.SnapshotStore = store.NewMemoryStore()
//	fs, err := store.NewFileStore("/var/lib/bookshare")
package store
