package gallery

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// CacheEntry describes one fetched image on disk
type CacheEntry struct {
	Key          string    `json:"key"`
	URL          string    `json:"url"`
	FilePath     string    `json:"file_path"`
	ContentType  string    `json:"content_type"`
	CreatedAt    time.Time `json:"created_at"`
	LastAccessed time.Time `json:"last_accessed"`
	Hits         int       `json:"hits"`
	FileSize     int64     `json:"file_size"`
}

// CacheStats holds statistics about cache performance
type CacheStats struct {
	Hits         int64   `json:"hits"`
	Misses       int64   `json:"misses"`
	HitRate      float64 `json:"hit_rate"`
	TotalEntries int     `json:"total_entries"`
	TotalSize    int64   `json:"total_size"`
}

// Cache keeps remote images on disk so repeated downloads skip the network
type Cache struct {
	entries    map[string]*CacheEntry
	directory  string
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
	mu         sync.Mutex
	stats      CacheStats
}

func NewCache(directory string, maxEntries int, ttl time.Duration) *Cache {
	return &Cache{
		entries:    make(map[string]*CacheEntry),
		directory:  directory,
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// CacheKey hashes a URL into a file-safe key
func CacheKey(url string) string {
	hash := md5.Sum([]byte(url))
	return hex.EncodeToString(hash[:])
}

// Initialize creates the directory and loads surviving entries
func (c *Cache) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.directory, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	files, err := os.ReadDir(c.directory)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".meta") {
			continue
		}
		metaPath := filepath.Join(c.directory, file.Name())
		metaData, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}
		var entry CacheEntry
		if err := json.Unmarshal(metaData, &entry); err != nil {
			continue
		}
		if c.expired(&entry) {
			removeFiles(&entry)
			continue
		}
		info, err := os.Stat(entry.FilePath)
		if err != nil {
			_ = os.Remove(metaPath)
			continue
		}
		entry.FileSize = info.Size()
		c.entries[entry.Key] = &entry
		c.stats.TotalEntries++
		c.stats.TotalSize += entry.FileSize
	}

	return nil
}

// Get returns the cached bytes for url
func (c *Cache) Get(url string) ([]byte, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := CacheKey(url)
	entry, ok := c.entries[key]
	if !ok {
		c.miss()
		return nil, "", false
	}
	if c.expired(entry) {
		c.remove(key)
		c.miss()
		return nil, "", false
	}

	data, err := os.ReadFile(entry.FilePath)
	if err != nil {
		c.remove(key)
		c.miss()
		return nil, "", false
	}

	entry.LastAccessed = c.now()
	entry.Hits++
	c.stats.Hits++
	c.updateHitRate()
	return data, entry.ContentType, true
}

// Put stores data for url, evicting the least recently used entry when full
func (c *Cache) Put(url, contentType string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := CacheKey(url)
	if _, ok := c.entries[key]; ok {
		c.remove(key)
	}

	filePath := filepath.Join(c.directory, key+".img")
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}

	now := c.now()
	entry := &CacheEntry{
		Key:          key,
		URL:          url,
		FilePath:     filePath,
		ContentType:  contentType,
		CreatedAt:    now,
		LastAccessed: now,
		FileSize:     int64(len(data)),
	}

	metaData, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(filePath+".meta", metaData, 0644); err != nil {
		_ = os.Remove(filePath)
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	c.entries[key] = entry
	c.stats.TotalEntries++
	c.stats.TotalSize += entry.FileSize

	for c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		c.evictOldest()
	}
	return nil
}

// CleanExpired removes expired entries and returns how many were dropped
func (c *Cache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ttl == 0 {
		return 0
	}
	count := 0
	for key, entry := range c.entries {
		if c.expired(entry) {
			c.remove(key)
			count++
		}
	}
	return count
}

func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Cache) expired(entry *CacheEntry) bool {
	return c.ttl > 0 && c.now().Sub(entry.CreatedAt) > c.ttl
}

func (c *Cache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.LastAccessed.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.LastAccessed
		}
	}
	if oldestKey != "" {
		c.remove(oldestKey)
	}
}

// remove expects c.mu held
func (c *Cache) remove(key string) {
	entry, ok := c.entries[key]
	if !ok {
		return
	}
	removeFiles(entry)
	delete(c.entries, key)
	c.stats.TotalEntries--
	c.stats.TotalSize -= entry.FileSize
}

func (c *Cache) miss() {
	c.stats.Misses++
	c.updateHitRate()
}

func (c *Cache) updateHitRate() {
	total := c.stats.Hits + c.stats.Misses
	if total > 0 {
		c.stats.HitRate = float64(c.stats.Hits) / float64(total)
	}
}

func removeFiles(entry *CacheEntry) {
	if entry.FilePath != "" {
		_ = os.Remove(entry.FilePath)
		_ = os.Remove(entry.FilePath + ".meta")
	}
}
