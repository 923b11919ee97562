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

package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/sprakpolisen/dedem/lib"
	"github.com/sprakpolisen/dedem/lib/selector"
)

// Reply is the payload handed to the posting collaborator.
type Reply struct {
	RunID     string          `json:"runId"`
	CommentID string          `json:"commentId"`
	ThreadID  string          `json:"threadId"`
	Body      string          `json:"body"`
	Created   strfmt.DateTime `json:"created"`
}

// NewHttpPoster posts replies as JSON to url. 200 and 201 count as posted, 403 means the
// author has blocked the account.
func NewHttpPoster(url, runID string) selector.Poster {
	return &httpPoster{Url: url, runID: runID, httpClient: http.DefaultClient, now: time.Now}
}

type httpPoster struct {
	Url        string
	runID      string
	httpClient lib.HttpClient
	now        func() time.Time
}

type postResponse struct {
	ID string `json:"id"`
}

func (p *httpPoster) Post(ctx context.Context, candidate lib.ReplyCandidate, body string) selector.PostResult {
	b, err := json.Marshal(Reply{
		RunID:     p.runID,
		CommentID: candidate.ID,
		ThreadID:  candidate.ThreadID,
		Body:      body,
		Created:   strfmt.DateTime(p.now().UTC()),
	})
	if err != nil {
		return selector.PostResult{Status: selector.Failed, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Url, bytes.NewReader(b))
	if err != nil {
		return selector.PostResult{Status: selector.Failed, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return selector.PostResult{Status: selector.Failed, Err: err}
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return selector.PostResult{Status: selector.Failed, Err: err}
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var r postResponse
		_ = json.Unmarshal(respBody, &r)
		return selector.PostResult{Status: selector.Posted, ReplyID: r.ID}
	case http.StatusForbidden:
		return selector.PostResult{Status: selector.Blocked, Err: fmt.Errorf("forbidden: %s", respBody)}
	default:
		return selector.PostResult{Status: selector.Failed, Err: fmt.Errorf("poster responded with %d: %s", resp.StatusCode, respBody)}
	}
}

// NewOutboxPoster writes each reply to its own JSON file in dir. Comments listed in
// blocked are reported as blocked without writing anything.
func NewOutboxPoster(dir, runID string, blocked []string) selector.Poster {
	b := make(map[string]bool, len(blocked))
	for _, id := range blocked {
		b[id] = true
	}
	return &outboxPoster{dir: dir, runID: runID, blocked: b, now: time.Now}
}

type outboxPoster struct {
	mu      sync.Mutex
	dir     string
	runID   string
	blocked map[string]bool
	now     func() time.Time
}

func (p *outboxPoster) Post(_ context.Context, candidate lib.ReplyCandidate, body string) selector.PostResult {
	if p.blocked[candidate.ID] {
		return selector.PostResult{Status: selector.Blocked, Err: fmt.Errorf("author of %s has blocked replies", candidate.ID)}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return selector.PostResult{Status: selector.Failed, Err: err}
	}
	reply := Reply{
		RunID:     p.runID,
		CommentID: candidate.ID,
		ThreadID:  candidate.ThreadID,
		Body:      body,
		Created:   strfmt.DateTime(p.now().UTC()),
	}
	b, err := json.MarshalIndent(reply, "", "  ")
	if err != nil {
		return selector.PostResult{Status: selector.Failed, Err: err}
	}
	id := fmt.Sprintf("%s-%s", p.runID, candidate.ID)
	if err := os.WriteFile(filepath.Join(p.dir, id+".json"), b, 0o644); err != nil {
		return selector.PostResult{Status: selector.Failed, Err: err}
	}
	return selector.PostResult{Status: selector.Posted, ReplyID: id}
}
