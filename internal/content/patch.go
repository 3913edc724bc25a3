package content

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// Content types accepted for partial updates.
const (
	MergePatchContentType = "application/merge-patch+json"
	JSONPatchContentType  = "application/json-patch+json"
)

// ApplyMergePatch applies an RFC 7386 merge patch to current.
func ApplyMergePatch[T any](current T, patch []byte) (T, error) {
	return applyPatch(current, func(doc []byte) ([]byte, error) {
		return jsonpatch.MergePatch(doc, patch)
	})
}

// ApplyJSONPatch applies an RFC 6902 operation list to current.
func ApplyJSONPatch[T any](current T, ops []byte) (T, error) {
	patch, err := jsonpatch.DecodePatch(ops)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w: decode patch: %w", ErrInvalid, err)
	}
	return applyPatch(current, patch.Apply)
}

// ApplyPatch picks the patch flavour from the request content type; anything
// other than a JSON Patch is treated as a merge patch.
func ApplyPatch[T any](current T, contentType string, body []byte) (T, error) {
	if contentType == JSONPatchContentType {
		return ApplyJSONPatch(current, body)
	}
	return ApplyMergePatch(current, body)
}

func applyPatch[T any](current T, apply func([]byte) ([]byte, error)) (T, error) {
	var zero T

	currentJSON, err := json.Marshal(current)
	if err != nil {
		return zero, fmt.Errorf("content: marshal current record: %w", err)
	}
	modified, err := apply(currentJSON)
	if err != nil {
		return zero, fmt.Errorf("%w: apply patch: %w", ErrInvalid, err)
	}

	var result T
	if err := json.Unmarshal(modified, &result); err != nil {
		return zero, fmt.Errorf("%w: patched record has wrong shape: %w", ErrInvalid, err)
	}
	return result, nil
}
