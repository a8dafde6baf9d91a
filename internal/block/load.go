package block

// #region imports
import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// #endregion imports

// #region load

// ParseSequence decodes a block program from JSON and validates it.
// Blocks are data, never code: nothing in the payload executes until
// the whole sequence has passed validation. Blocks without an ID are
// assigned one.
func ParseSequence(data []byte, reg *Registry, rules Rules) (Sequence, error) {
	var seq Sequence
	if err := json.Unmarshal(data, &seq); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	for _, b := range seq {
		assignIDs(b)
	}
	if err := ValidateSequence(seq, reg, rules); err != nil {
		return nil, err
	}
	return seq, nil
}

// LoadSequenceFile reads and validates a block program from a JSON file.
func LoadSequenceFile(path string, reg *Registry, rules Rules) (Sequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read program: %w", err)
	}
	return ParseSequence(data, reg, rules)
}

func assignIDs(b *Block) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	for _, c := range b.Children {
		assignIDs(c)
	}
}

// #endregion load

// #region encode

// EncodeSequence renders a sequence back to JSON (for fixtures and audit
// storage alongside attempt records).
func EncodeSequence(seq Sequence) (string, error) {
	data, err := json.Marshal(seq)
	if err != nil {
		return "", fmt.Errorf("encode program: %w", err)
	}
	return string(data), nil
}

// #endregion encode
