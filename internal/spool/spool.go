// Package spool persists entries whose SIEM delivery exhausted its retries.
//
// Each pending delivery is one standalone JSON file so an external redelivery
// sweeper can pick items up, replay them, and delete them independently.
// Chronicle only writes and lists items; it never schedules redelivery.
package spool

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"chronicle/internal/entry"
)

// Item is the durable record written for one exhausted delivery.
type Item struct {
	Entry    *entry.Entry `json:"entry"`
	Attempts int          `json:"attempts"`
	QueuedAt time.Time    `json:"queued_at"`
}

// ItemInfo describes one spooled file without loading the whole entry.
type ItemInfo struct {
	Name     string
	Path     string
	Size     int64
	Modified time.Time
}

// Enqueue writes one durable item under dir, named
// <yyyyMMddHHmmss>_<8-char-id>.json, and returns the file path.
func Enqueue(dir string, e *entry.Entry, attempts int) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure spool directory: %w", err)
	}

	item := Item{
		Entry:    e,
		Attempts: attempts,
		QueuedAt: time.Now().UTC(),
	}
	data, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode spool item: %w", err)
	}

	name := item.QueuedAt.Format("20060102150405") + "_" + shortID() + ".json"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write spool item %s: %w", name, err)
	}
	return path, nil
}

// Load reads one spooled item back.
func Load(path string) (*Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spool item: %w", err)
	}
	var item Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("decode spool item %s: %w", filepath.Base(path), err)
	}
	return &item, nil
}

// List enumerates spooled items under dir, oldest first. A missing directory
// yields an empty list.
func List(dir string) ([]ItemInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read spool directory: %w", err)
	}

	items := make([]ItemInfo, 0, len(entries))
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), ".json") {
			continue
		}
		info, err := ent.Info()
		if err != nil {
			continue
		}
		items = append(items, ItemInfo{
			Name:     ent.Name(),
			Path:     filepath.Join(dir, ent.Name()),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func shortID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
