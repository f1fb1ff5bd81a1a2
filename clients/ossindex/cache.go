// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ossindex

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Cache stores component reports between runs. Keys are lower-cased
// coordinates.
type Cache interface {
	// Get returns the unexpired reports it holds for coordinates.
	Get(coordinates []string) (map[string]ComponentReport, error)
	Put(reports []ComponentReport) error
	Close() error
}

var reportsBucket = []byte("component-reports")

type cachedReport struct {
	FetchedAt time.Time       `json:"fetchedAt"`
	Report    ComponentReport `json:"report"`
}

// BoltCache is a Cache in a bbolt database file.
type BoltCache struct {
	db  *bolt.DB
	ttl time.Duration
}

var _ Cache = &BoltCache{}

// OpenBoltCache opens or creates the cache file at path. Reports older than
// ttl are ignored; a ttl of 0 keeps them forever.
func OpenBoltCache(path string, ttl time.Duration) (*BoltCache, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening cache %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(reportsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache %s: %w", path, err)
	}
	return &BoltCache{db: db, ttl: ttl}, nil
}

// Get implements Cache.
func (c *BoltCache) Get(coordinates []string) (map[string]ComponentReport, error) {
	found := make(map[string]ComponentReport)
	now := time.Now()
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(reportsBucket)
		for _, coord := range coordinates {
			key := strings.ToLower(coord)
			data := b.Get([]byte(key))
			if data == nil {
				continue
			}
			var entry cachedReport
			if err := json.Unmarshal(data, &entry); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			if c.ttl > 0 && now.Sub(entry.FetchedAt) > c.ttl {
				continue
			}
			found[key] = entry.Report
		}
		return nil
	})
	return found, err
}

// Put implements Cache.
func (c *BoltCache) Put(reports []ComponentReport) error {
	now := time.Now()
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(reportsBucket)
		for _, r := range reports {
			data, err := json.Marshal(cachedReport{FetchedAt: now, Report: r})
			if err != nil {
				return err
			}
			if err := b.Put([]byte(strings.ToLower(r.Coordinates)), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Purge deletes expired reports.
func (c *BoltCache) Purge() (int, error) {
	if c.ttl <= 0 {
		return 0, nil
	}
	now := time.Now()
	var expired [][]byte
	err := c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(reportsBucket)
		err := b.ForEach(func(k, v []byte) error {
			var entry cachedReport
			if err := json.Unmarshal(v, &entry); err != nil || now.Sub(entry.FetchedAt) > c.ttl {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range expired {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	return len(expired), err
}

// Close implements Cache.
func (c *BoltCache) Close() error {
	return c.db.Close()
}
