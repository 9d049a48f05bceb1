package tools

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/aretw0/blockedit/pkg/core"
)

// argsValidate checks the structural shape of tool arguments.
// Initialized in init() with custom validators.
var argsValidate *validator.Validate

func init() {
	argsValidate = validator.New()
	_ = argsValidate.RegisterValidation("blocktype", validateBlockType)
}

// validateBlockType accepts the empty string (defaults to paragraph) or a known block type.
func validateBlockType(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || core.BlockType(s).Valid()
}

// ReadArgs are the arguments of read_blocks.
type ReadArgs struct {
	IDs         []string `json:"ids" validate:"required,min=1,dive,required"`
	WithContext bool     `json:"withContext,omitempty"`
}

// Edit is one item of edit_blocks.
type Edit struct {
	BlockID string `json:"blockId" validate:"required"`
	Content string `json:"content"`
	Reason  string `json:"reason,omitempty"`
}

// EditArgs are the arguments of edit_blocks.
type EditArgs struct {
	Edits []Edit `json:"edits" validate:"required,min=1,dive"`
}

// Addition is one item of add_blocks. An empty AfterBlockID or
// core.StartOfDocument inserts at the start of the document.
type Addition struct {
	AfterBlockID string `json:"afterBlockId,omitempty"`
	Type         string `json:"type,omitempty" validate:"blocktype"`
	Content      string `json:"content"`
	Level        int    `json:"level,omitempty" validate:"gte=0,lte=6"`
	Reason       string `json:"reason,omitempty"`
}

// AddArgs are the arguments of add_blocks.
type AddArgs struct {
	Additions []Addition `json:"additions" validate:"required,min=1,dive"`
}

// Deletion is one item of delete_blocks.
type Deletion struct {
	BlockID string `json:"blockId" validate:"required"`
	Reason  string `json:"reason,omitempty"`
}

// DeleteArgs are the arguments of delete_blocks.
type DeleteArgs struct {
	Deletions []Deletion `json:"deletions" validate:"required,min=1,dive"`
}

// decodeArgs unmarshals raw into dst, applies trim to cap the batch and then
// validates the result. Items beyond the batch cap are never validated.
func decodeArgs[T any](raw json.RawMessage, dst *T, trim func(*T)) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidArguments, err)
	}
	trim(dst)
	if err := argsValidate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidArguments, err)
	}
	return nil
}
