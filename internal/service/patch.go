package service

import (
	"encoding/json"
	"fmt"
)

// patchSchema lists the fields a client may change on an entity. Everything
// else, including ids, owners and timestamps, is immutable through a patch.
type patchSchema map[string]struct{}

func newPatchSchema(fields ...string) patchSchema {
	s := make(patchSchema, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

var (
	userPatchSchema = newPatchSchema("name", "email", "password", "age")
	taskPatchSchema = newPatchSchema("description", "completed")
)

// decode rejects the whole patch if any key is outside the schema, then
// unmarshals it into dst.
func (s patchSchema) decode(patch map[string]json.RawMessage, dst any) error {
	for key := range patch {
		if _, ok := s[key]; !ok {
			return ErrInvalidUpdates
		}
	}
	raw, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: malformed update", ErrValidation)
	}
	return nil
}

// UserPatch holds the decoded fields of a profile update; nil means unchanged.
type UserPatch struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Age      *int    `json:"age"`
}

// TaskPatch holds the decoded fields of a task update.
type TaskPatch struct {
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}
