package models

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestMergeMetadata_KeyWise(t *testing.T) {
	orig := datatypes.JSONMap{"initialize_response": map[string]any{"status": "success"}}
	merged := MergeMetadata(orig, map[string]any{"verify_response": "v"})

	require.Len(t, merged, 2)
	require.Equal(t, "v", merged["verify_response"])
	require.Contains(t, merged, "initialize_response")
	// original is not mutated
	require.Len(t, orig, 1)
}

func TestMergeMetadata_NilBase(t *testing.T) {
	merged := MergeMetadata(nil, map[string]any{MetadataKeyFailedReason: "timeout"})
	require.Equal(t, datatypes.JSONMap{MetadataKeyFailedReason: "timeout"}, merged)
}
