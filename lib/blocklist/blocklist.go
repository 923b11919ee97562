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

package blocklist

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

// Blocklist holds spellings that must never be corrected.
type Blocklist struct {
	CaseSensitive   map[string]bool
	CaseInsensitive map[string]bool
}

// Default blocks the colloquial "dom", which is neither de nor dem.
func Default() Blocklist {
	return Blocklist{
		CaseSensitive:   map[string]bool{},
		CaseInsensitive: map[string]bool{"dom": true},
	}
}

// Allowed returns true if word is not blocklisted.
func (blocklist Blocklist) Allowed(word string) bool {
	if _, ok := blocklist.CaseSensitive[word]; ok {
		return false
	}

	if _, ok := blocklist.CaseInsensitive[strings.ToLower(word)]; ok {
		return false
	}

	return true
}

// Load returns an unmarshalled blocklist from a YAML file at the given path.
func Load(path string) (*Blocklist, error) {

	bytes, err := os.ReadFile(path)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("could not find blocklist at %v", path))
		return nil, err
	}

	type yamlBlocklist struct {
		CaseSensitive   []string `yaml:"case_sensitive"`
		CaseInsensitive []string `yaml:"case_insensitive"`
	}

	yamlBl := yamlBlocklist{}
	if err := yaml.Unmarshal(bytes, &yamlBl); err != nil {
		log.Error().Msg(fmt.Sprintf("could not load blocklist from %v", path))
		return nil, err
	}

	res := Blocklist{
		CaseSensitive:   map[string]bool{},
		CaseInsensitive: map[string]bool{},
	}

	for _, v := range yamlBl.CaseSensitive {
		res.CaseSensitive[v] = true
	}
	for _, v := range yamlBl.CaseInsensitive {
		res.CaseInsensitive[strings.ToLower(v)] = true
	}

	log.Info().Msg(fmt.Sprintf("blocklist set from %v", path))

	return &res, nil
}

// LoadOrDefault loads the blocklist at path, or returns Default when path is empty.
func LoadOrDefault(path string) (Blocklist, error) {
	if path == "" {
		return Default(), nil
	}
	bl, err := Load(path)
	if err != nil {
		return Blocklist{}, err
	}
	return *bl, nil
}
