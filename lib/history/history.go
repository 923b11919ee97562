/*
 * Copyright 2022 Medicines Discovery Catapult
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package history

import (
	"context"
	"sync"

	"github.com/go-openapi/strfmt"
)

type Type string

const (
	None          Type = "none"
	Memory        Type = "memory"
	Redis         Type = "redis"
	Elasticsearch Type = "elasticsearch"
)

// Entry is a reply that has been posted.
type Entry struct {
	RunID     string          `json:"runId"`
	ThreadID  string          `json:"threadId"`
	CommentID string          `json:"commentId"`
	ReplyID   string          `json:"replyId"`
	Mistakes  int             `json:"mistakes"`
	Created   strfmt.DateTime `json:"created"`
}

// Client remembers which threads have been replied to.
type Client interface {
	Seen(ctx context.Context, threadID string) (bool, error)
	Record(ctx context.Context, entry Entry) error
}

// NewMemoryClient keeps history for the lifetime of the process.
func NewMemoryClient() Client {
	return &memoryClient{entries: map[string]Entry{}}
}

type memoryClient struct {
	sync.RWMutex
	entries map[string]Entry
}

func (m *memoryClient) Seen(_ context.Context, threadID string) (bool, error) {
	m.RLock()
	defer m.RUnlock()
	_, ok := m.entries[threadID]
	return ok, nil
}

func (m *memoryClient) Record(_ context.Context, entry Entry) error {
	m.Lock()
	defer m.Unlock()
	m.entries[entry.ThreadID] = entry
	return nil
}

// NewNoopClient never remembers anything.
func NewNoopClient() Client {
	return noopClient{}
}

type noopClient struct{}

func (noopClient) Seen(context.Context, string) (bool, error) { return false, nil }
func (noopClient) Record(context.Context, Entry) error        { return nil }
