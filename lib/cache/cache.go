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

package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"io"

	"github.com/sprakpolisen/dedem/lib"
)

// Lookup is the value we will store in the cache.
type Lookup struct {
	ModelID     string           `json:"modelId"`
	Predictions []lib.Prediction `json:"predictions"`
}

type Type string

const (
	None  Type = "none"
	Local Type = "local"
	Redis Type = "redis"
)

// Client is implemented by the local and remote stores. A miss is a nil lookup and a
// nil error.
type Client interface {
	Get(key string) (*Lookup, error)
	Set(key string, lookup *Lookup) error
}

// Key derives the cache key for a sentence classified by the given model.
func Key(modelID, sentence string) string {
	h := sha1.New()
	_, _ = io.WriteString(h, modelID)
	_, _ = io.WriteString(h, "|")
	_, _ = io.WriteString(h, sentence)
	return hex.EncodeToString(h.Sum(nil))
}
