package main

import "sync"

type Config struct {
	AiDepth               int    `json:"ai_depth"`
	AiLogSearchStats      bool   `json:"ai_log_search_stats"`
	AiEnableTt            bool   `json:"ai_enable_tt"`
	AiTtSize              int    `json:"ai_tt_size"`
	AiTtBuckets           int    `json:"ai_tt_buckets"`
	AiEnableTtPersistence bool   `json:"ai_enable_tt_persistence"`
	AiTtPersistencePath   string `json:"ai_tt_persistence_path"`
	MoveTimeLimitMs       int    `json:"move_time_limit_ms"`
}

type ConfigStore struct {
	mu     sync.RWMutex
	config Config
}

func DefaultConfig() Config {
	return Config{
		AiDepth:          5,
		AiLogSearchStats: false, // turn ON temporarily to tune; disable later

		AiEnableTt:  true,
		AiTtSize:    1 << 16,
		AiTtBuckets: 2,

		AiEnableTtPersistence: false,
		AiTtPersistencePath:   "qirkat_tt.gob",

		MoveTimeLimitMs: 0, // 0 disables the per-move clock
	}
}

var configStore = &ConfigStore{config: DefaultConfig()}

func GetConfig() Config {
	return configStore.Get()
}

func (c *ConfigStore) Get() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *ConfigStore) Update(newConfig Config) {
	c.mu.Lock()
	c.config = newConfig
	c.mu.Unlock()
}
