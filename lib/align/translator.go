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

package align

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sprakpolisen/dedem/lib"
)

// Translation is the output of a sequence to sequence model for one sentence.
type Translation struct {
	// SourceTokens are the encoder tokens of the input, special tokens included.
	SourceTokens []string `json:"source_tokens"`
	// TargetTokens are the generated tokens, starting with the decoder start token.
	TargetTokens []string `json:"target_tokens"`
	Text         string   `json:"translation"`
	// CrossAttention is indexed [layer][head][source position][target position].
	CrossAttention [][][][]float64 `json:"cross_attentions"`
}

type Translator interface {
	Translate(ctx context.Context, sentence string) (*Translation, error)
}

// NewHttpTranslator returns a Translator backed by a translation service that returns
// its generated tokens along with the cross attention weights.
func NewHttpTranslator(url string) Translator {
	return &httpTranslator{
		Url:        url,
		httpClient: http.DefaultClient,
	}
}

type httpTranslator struct {
	Url        string
	httpClient lib.HttpClient
}

type translateRequest struct {
	Text             string `json:"text"`
	OutputAttentions bool   `json:"output_attentions"`
}

func (h *httpTranslator) Translate(ctx context.Context, sentence string) (*Translation, error) {
	b, err := json.Marshal(translateRequest{Text: sentence, OutputAttentions: true})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.Url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("translator responded with %d: %s", resp.StatusCode, string(body))
	}

	var translation Translation
	if err := json.Unmarshal(body, &translation); err != nil {
		return nil, err
	}
	return &translation, nil
}
