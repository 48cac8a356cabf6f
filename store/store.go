package store

// 注意：此包只包含实现，接口定义在 core 包。
// 使用 core.Store 与 core.EventStore 接口。
//
// 示例：
//   var events core.EventStore = NewMemoryStore()
//   var kv core.Store = NewMemoryStore()
