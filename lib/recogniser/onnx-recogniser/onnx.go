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

package onnx_recogniser

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/sprakpolisen/dedem/lib"
	"github.com/sprakpolisen/dedem/lib/recogniser"
	"github.com/sprakpolisen/dedem/lib/text"
)

const (
	OffsetRunes = "rune"
	OffsetBytes = "byte"
)

type Config struct {
	SharedLibraryPath string   `mapstructure:"shared_library_path"`
	ModelPath         string   `mapstructure:"model_path"`
	TokenizerPath     string   `mapstructure:"tokenizer_path"`
	Labels            []string `mapstructure:"labels"`
	InputNames        []string `mapstructure:"input_names"`
	OutputName        string   `mapstructure:"output_name"`
	MaxSeqLen         int      `mapstructure:"max_seq_len"`
	// OffsetUnit is the unit of the tokenizer's offsets, rune or byte.
	OffsetUnit string `mapstructure:"offset_unit"`
}

type onnxClassifier struct {
	session    *ort.DynamicAdvancedSession
	tk         *tokenizer.Tokenizer
	labels     []string
	inputNames []string
	maxSeqLen  int
	runeOffset bool
	mut        sync.Mutex
}

// New loads the tokenizer and the model. The onnxruntime environment is initialised on
// first use and shared by every classifier in the process.
func New(conf Config) (recogniser.Client, error) {
	if len(conf.Labels) == 0 {
		return nil, errors.New("onnx classifier needs its labels")
	}
	if len(conf.InputNames) == 0 {
		conf.InputNames = []string{"input_ids", "attention_mask"}
	}
	if conf.OutputName == "" {
		conf.OutputName = "logits"
	}

	tk, err := pretrained.FromFile(conf.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", conf.TokenizerPath, err)
	}

	if !ort.IsInitialized() {
		if conf.SharedLibraryPath != "" {
			ort.SetSharedLibraryPath(conf.SharedLibraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialise onnxruntime: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(conf.ModelPath, conf.InputNames, []string{conf.OutputName}, nil)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", conf.ModelPath, err)
	}
	log.Info().Str("model", conf.ModelPath).Strs("labels", conf.Labels).Msg("onnx classifier ready")

	return &onnxClassifier{
		session:    session,
		tk:         tk,
		labels:     conf.Labels,
		inputNames: conf.InputNames,
		maxSeqLen:  conf.MaxSeqLen,
		runeOffset: conf.OffsetUnit != OffsetBytes,
	}, nil
}

func (o *onnxClassifier) Classify(_ context.Context, sentence string) ([]lib.Prediction, error) {
	enc, err := o.tk.EncodeSingle(sentence, true)
	if err != nil {
		return nil, err
	}
	n := len(enc.Ids)
	if o.maxSeqLen > 0 && n > o.maxSeqLen {
		n = o.maxSeqLen
	}
	if n == 0 {
		return nil, nil
	}

	var inputs []ort.Value
	defer func() {
		for _, input := range inputs {
			_ = input.Destroy()
		}
	}()
	for _, name := range o.inputNames {
		var values []int
		switch name {
		case "input_ids":
			values = enc.Ids
		case "attention_mask":
			values = enc.AttentionMask
		case "token_type_ids":
			values = enc.TypeIds
		default:
			return nil, fmt.Errorf("unsupported model input %q", name)
		}
		tensor, err := ort.NewTensor(ort.NewShape(1, int64(n)), toInt64(values, n))
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, tensor)
	}

	logits, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(n), int64(len(o.labels))))
	if err != nil {
		return nil, err
	}
	defer logits.Destroy()

	o.mut.Lock()
	err = o.session.Run(inputs, []ort.Value{logits})
	o.mut.Unlock()
	if err != nil {
		return nil, err
	}

	toks := tokens{
		offsets: enc.Offsets[:n],
		special: prefix(enc.SpecialTokenMask, n),
		words:   prefix(enc.Words, n),
	}
	return decode(sentence, toks, logits.GetData(), o.labels, o.runeOffset), nil
}

type tokens struct {
	offsets [][]int
	special []int
	words   []int
}

// decode turns per-token logits into one prediction per word, labelled by the word's
// first sub-token.
func decode(sentence string, toks tokens, logits []float32, labels []string, runeOffsets bool) []lib.Prediction {
	var predictions []lib.Prediction
	lastWord := -1
	for i, offset := range toks.offsets {
		if i < len(toks.special) && toks.special[i] == 1 {
			continue
		}
		if len(offset) != 2 || offset[0] == offset[1] {
			continue
		}
		start, end := offset[0], offset[1]
		if runeOffsets {
			start, end = text.ByteOffset(sentence, start), text.ByteOffset(sentence, end)
		}
		if start < 0 || start > end || end > len(sentence) {
			log.Warn().Int("start", start).Int("end", end).Int("length", len(sentence)).Msg("skipping token with invalid offsets")
			continue
		}

		word := -1
		if i < len(toks.words) {
			word = toks.words[i]
		}
		if word >= 0 && word == lastWord && len(predictions) > 0 && end >= predictions[len(predictions)-1].Start {
			predictions[len(predictions)-1].End = end
			predictions[len(predictions)-1].Word = sentence[predictions[len(predictions)-1].Start:end]
			continue
		}
		lastWord = word

		row := logits[i*len(labels) : (i+1)*len(labels)]
		label, score := argmax(softmax(row))
		predictions = append(predictions, lib.Prediction{
			Start:  start,
			End:    end,
			Word:   sentence[start:end],
			Entity: labels[label],
			Score:  float64(score),
		})
	}
	return predictions
}

func softmax(row []float32) []float32 {
	top := float32(math.Inf(-1))
	for _, v := range row {
		if v > top {
			top = v
		}
	}
	out := make([]float32, len(row))
	var sum float32
	for i, v := range row {
		out[i] = float32(math.Exp(float64(v - top)))
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func argmax(row []float32) (int, float32) {
	best := 0
	for i, v := range row {
		if v > row[best] {
			best = i
		}
	}
	return best, row[best]
}

func toInt64(values []int, n int) []int64 {
	out := make([]int64, n)
	for i := 0; i < n && i < len(values); i++ {
		out[i] = int64(values[i])
	}
	return out
}

func prefix(values []int, n int) []int {
	if len(values) < n {
		return values
	}
	return values[:n]
}
