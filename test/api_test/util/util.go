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

package util

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	. "github.com/onsi/gomega"

	"github.com/sprakpolisen/dedem/lib"
)

// Corrections is the part of the inference API response the API tests look at.
type Corrections struct {
	Sentences     []lib.SentenceCandidate   `json:"sentences"`
	Annotations   [][]lib.MistakeAnnotation `json:"annotations"`
	MistakeCounts lib.MistakeCounts         `json:"mistakeCounts"`
	Correction    struct {
		Sentences []lib.AnnotatedSentence `json:"sentences"`
	} `json:"correction"`
}

func GetCorrections(host, port, source, contentType string) Corrections {
	res, err := http.Post(fmt.Sprintf("http://%s:%s/corrections", host, port), contentType, strings.NewReader(source))
	Expect(err).Should(BeNil())
	defer res.Body.Close()
	Expect(res.StatusCode).Should(Equal(200))

	body, err := io.ReadAll(res.Body)
	Expect(err).Should(BeNil())

	var corrections Corrections
	Expect(json.Unmarshal(body, &corrections)).Should(Succeed())
	return corrections
}
