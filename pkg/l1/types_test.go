package l1

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseControllerRef(t *testing.T) {
	ref, err := ParseControllerRef("bean/kitchen")
	require.NoError(t, err)
	require.Equal(t, ControllerRef{Type: "bean", ID: "kitchen"}, ref)
	require.Equal(t, "bean/kitchen", ref.Name())
	require.True(t, ref.IsValid())

	for _, s := range []string{"", "bean", "bean/", "/id"} {
		_, err := ParseControllerRef(s)
		require.Error(t, err, s)
	}
	require.False(t, ControllerRef{Type: "bean"}.IsValid())
}
