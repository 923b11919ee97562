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
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-openapi/swag"
)

// Comment is a comment record as supplied by the content platform. Author is nil for
// deleted accounts.
type Comment struct {
	ID         string  `json:"id"`
	ThreadID   string  `json:"link_id"`
	Author     *string `json:"author"`
	Body       string  `json:"body"`
	BodyHTML   string  `json:"body_html,omitempty"`
	CreatedUTC float64 `json:"created_utc"`
	Locked     bool    `json:"locked"`
	Permalink  string  `json:"permalink,omitempty"`
}

// AuthorName returns the author, or an empty string for deleted accounts.
func (c Comment) AuthorName() string {
	return swag.StringValue(c.Author)
}

// Submission is the thread a comment was posted in.
type Submission struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	CreatedUTC  float64 `json:"created_utc"`
	Locked      bool    `json:"locked"`
	Flair       *string `json:"link_flair_text"`
	NumComments int     `json:"num_comments"`
	Permalink   string  `json:"permalink,omitempty"`
}

func (s Submission) FlairText() string {
	return swag.StringValue(s.Flair)
}

// Created returns the creation time of the thread.
func (s Submission) Created() time.Time {
	return time.Unix(0, int64(s.CreatedUTC*float64(time.Second))).UTC()
}

// AgeHours is the age of the thread at now.
func (s Submission) AgeHours(now time.Time) float64 {
	return now.Sub(s.Created()).Hours()
}

// ThreadKey strips the type prefix the platform puts on thread references.
func ThreadKey(id string) string {
	return strings.TrimPrefix(id, "t3_")
}

type Source interface {
	Comments(ctx context.Context) ([]Comment, error)
	Submission(ctx context.Context, id string) (*Submission, error)
}

// Snapshot is a dump of comments and the threads they belong to.
type Snapshot struct {
	Comments    []Comment    `json:"comments"`
	Submissions []Submission `json:"submissions"`
}

// NewFileSource reads a JSON snapshot.
func NewFileSource(path string) (Source, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snapshot Snapshot
	if err := json.Unmarshal(b, &snapshot); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return NewSnapshotSource(snapshot), nil
}

func NewSnapshotSource(snapshot Snapshot) Source {
	submissions := make(map[string]Submission, len(snapshot.Submissions))
	for _, s := range snapshot.Submissions {
		submissions[ThreadKey(s.ID)] = s
	}
	return &snapshotSource{comments: snapshot.Comments, submissions: submissions}
}

type snapshotSource struct {
	comments    []Comment
	submissions map[string]Submission
}

func (s *snapshotSource) Comments(_ context.Context) ([]Comment, error) {
	return s.comments, nil
}

func (s *snapshotSource) Submission(_ context.Context, id string) (*Submission, error) {
	submission, ok := s.submissions[ThreadKey(id)]
	if !ok {
		return nil, fmt.Errorf("submission %s not in snapshot", id)
	}
	return &submission, nil
}
