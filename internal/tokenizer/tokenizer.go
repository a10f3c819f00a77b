// Package tokenizer implements a WordPiece sub-word tokenizer loaded from a
// HuggingFace tokenizer.json descriptor.
package tokenizer

import (
	"encoding/json"
	"fmt"
	"os"
)

// Encoding is the result of tokenizing one text: parallel token id and
// attention mask sequences of the same length. The mask is 1 for real
// tokens; this tokenizer emits no padding, so every entry is 1.
type Encoding struct {
	IDs           []int64
	AttentionMask []uint8
}

// Tokenizer segments text into WordPiece token ids with [CLS]/[SEP]
// boundary tokens. It is immutable after Load and safe for concurrent use.
type Tokenizer struct {
	vocab         map[string]int64
	clsID         int64
	sepID         int64
	unkID         int64
	subwordPrefix string
	maxWordChars  int

	lowercase     bool
	cleanText     bool
	stripAccents  bool
	handleChinese bool
}

type tokenizerFile struct {
	AddedTokens []struct {
		ID      int64  `json:"id"`
		Content string `json:"content"`
		Special bool   `json:"special"`
	} `json:"added_tokens"`
	Normalizer *struct {
		Type               string `json:"type"`
		CleanText          *bool  `json:"clean_text"`
		Lowercase          *bool  `json:"lowercase"`
		StripAccents       *bool  `json:"strip_accents"`
		HandleChineseChars *bool  `json:"handle_chinese_chars"`
	} `json:"normalizer"`
	Model struct {
		Type                    string           `json:"type"`
		UnkToken                string           `json:"unk_token"`
		ContinuingSubwordPrefix string           `json:"continuing_subword_prefix"`
		MaxInputCharsPerWord    int              `json:"max_input_chars_per_word"`
		Vocab                   map[string]int64 `json:"vocab"`
	} `json:"model"`
}

// Load reads and parses the tokenizer descriptor at path.
func Load(path string) (*Tokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tokenizer: %w", err)
	}
	var file tokenizerFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse tokenizer: %w", err)
	}
	if file.Model.Type != "" && file.Model.Type != "WordPiece" {
		return nil, fmt.Errorf("unsupported tokenizer model %q", file.Model.Type)
	}
	if len(file.Model.Vocab) == 0 {
		return nil, fmt.Errorf("tokenizer has an empty vocabulary")
	}

	t := &Tokenizer{
		vocab:         file.Model.Vocab,
		subwordPrefix: file.Model.ContinuingSubwordPrefix,
		maxWordChars:  file.Model.MaxInputCharsPerWord,
		cleanText:     true,
		handleChinese: true,
	}
	if t.subwordPrefix == "" {
		t.subwordPrefix = "##"
	}
	if t.maxWordChars == 0 {
		t.maxWordChars = 100
	}
	if n := file.Normalizer; n != nil {
		if n.Lowercase != nil {
			t.lowercase = *n.Lowercase
		}
		if n.CleanText != nil {
			t.cleanText = *n.CleanText
		}
		if n.HandleChineseChars != nil {
			t.handleChinese = *n.HandleChineseChars
		}
		// BertNormalizer semantics: strip_accents follows lowercase when unset.
		t.stripAccents = t.lowercase
		if n.StripAccents != nil {
			t.stripAccents = *n.StripAccents
		}
	}

	unk := file.Model.UnkToken
	if unk == "" {
		unk = "[UNK]"
	}
	var ok bool
	if t.unkID, ok = t.lookupSpecial(&file, unk); !ok {
		return nil, fmt.Errorf("tokenizer vocab is missing the unknown token %q", unk)
	}
	if t.clsID, ok = t.lookupSpecial(&file, "[CLS]"); !ok {
		return nil, fmt.Errorf("tokenizer vocab is missing the [CLS] token")
	}
	if t.sepID, ok = t.lookupSpecial(&file, "[SEP]"); !ok {
		return nil, fmt.Errorf("tokenizer vocab is missing the [SEP] token")
	}
	return t, nil
}

func (t *Tokenizer) lookupSpecial(file *tokenizerFile, content string) (int64, bool) {
	if id, ok := t.vocab[content]; ok {
		return id, true
	}
	for _, tok := range file.AddedTokens {
		if tok.Content == content {
			return tok.ID, true
		}
	}
	return 0, false
}

// Encode tokenizes text with boundary tokens added: [CLS] tokens [SEP].
// An empty input yields just the two boundary tokens.
func (t *Tokenizer) Encode(text string) (Encoding, error) {
	words := t.preTokenize(t.normalize(text))

	ids := make([]int64, 0, len(words)+2)
	ids = append(ids, t.clsID)
	for _, word := range words {
		ids = append(ids, t.wordPiece(word)...)
	}
	ids = append(ids, t.sepID)

	mask := make([]uint8, len(ids))
	for i := range mask {
		mask[i] = 1
	}
	return Encoding{IDs: ids, AttentionMask: mask}, nil
}

// wordPiece splits one word into sub-word ids by greedy longest-match.
// A word with no matching prefix, or longer than maxWordChars, maps to [UNK].
func (t *Tokenizer) wordPiece(word string) []int64 {
	runes := []rune(word)
	if len(runes) > t.maxWordChars {
		return []int64{t.unkID}
	}
	var out []int64
	start := 0
	for start < len(runes) {
		end := len(runes)
		found := int64(-1)
		for end > start {
			sub := string(runes[start:end])
			if start > 0 {
				sub = t.subwordPrefix + sub
			}
			if id, ok := t.vocab[sub]; ok {
				found = id
				break
			}
			end--
		}
		if found < 0 {
			return []int64{t.unkID}
		}
		out = append(out, found)
		start = end
	}
	return out
}
